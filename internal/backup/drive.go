package backup

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"supaops/internal/config"
	"supaops/pkg/logx"
)

// DriveUploader uploads snapshots to Google Drive using a service account.
type DriveUploader struct {
	svc      *drive.Service
	folderID string
	log      logx.Logger
}

// NewDriveUploader decodes the base64 service-account JSON
// (GOOGLE_DRIVE_CREDENTIALS) and builds the Drive client. Raw JSON is also
// accepted for local runs.
func NewDriveUploader(ctx context.Context, cfg config.DriveTargetConfig, log logx.Logger) (*DriveUploader, error) {
	if cfg.Credentials == "" {
		return nil, fmt.Errorf("drive: %s must be set", config.EnvDriveCredentials)
	}
	raw, err := base64.StdEncoding.DecodeString(cfg.Credentials)
	if err != nil {
		if strings.HasPrefix(strings.TrimSpace(cfg.Credentials), "{") {
			raw = []byte(cfg.Credentials)
		} else {
			return nil, fmt.Errorf("drive: decode credentials: %w", err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("drive: parse credentials: %w", err)
	}
	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("drive: create service: %w", err)
	}
	return &DriveUploader{svc: svc, folderID: cfg.FolderID, log: log}, nil
}

func (u *DriveUploader) Name() string { return "drive" }

func (u *DriveUploader) Upload(ctx context.Context, filename string, data []byte) error {
	meta := &drive.File{Name: filename}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}
	f, err := u.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drive: upload %s: %w", filename, err)
	}
	u.log.Info("uploaded to drive",
		logx.String("file", filename),
		logx.String("drive_id", f.Id),
		logx.Int("bytes", len(data)))
	return nil
}
