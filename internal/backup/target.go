package backup

import (
	"context"
	"fmt"

	"supaops/internal/config"
	"supaops/pkg/logx"
)

// Uploader delivers one snapshot file to a backup destination.
type Uploader interface {
	// Name identifies the target in logs and errors, e.g. "drive" or "s3:backups".
	Name() string
	Upload(ctx context.Context, filename string, data []byte) error
}

// BuildUploaders constructs an uploader per configured target.
func BuildUploaders(ctx context.Context, targets []config.TargetConfig, log logx.Logger) ([]Uploader, error) {
	ups := make([]Uploader, 0, len(targets))
	for i, t := range targets {
		switch t.Kind {
		case "drive":
			if t.Drive == nil {
				return nil, fmt.Errorf("backup target %d: drive settings missing", i)
			}
			u, err := NewDriveUploader(ctx, *t.Drive, log)
			if err != nil {
				return nil, err
			}
			ups = append(ups, u)
		case "s3":
			if t.S3 == nil {
				return nil, fmt.Errorf("backup target %d: s3 settings missing", i)
			}
			u, err := NewS3Uploader(*t.S3, log)
			if err != nil {
				return nil, err
			}
			ups = append(ups, u)
		default:
			return nil, fmt.Errorf("backup target %d: unknown kind %q", i, t.Kind)
		}
	}
	return ups, nil
}
