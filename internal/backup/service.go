package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"supaops/pkg/logx"
)

// TableFetcher is the slice of the Supabase client the backup needs.
type TableFetcher interface {
	FetchAll(ctx context.Context, table string) ([]map[string]any, error)
}

// Service exports the configured tables and delivers each snapshot to every
// target. One failing table or target does not stop the others; all failures
// are reported together.
type Service struct {
	src     TableFetcher
	tables  []string
	targets []Uploader
	log     logx.Logger
}

func NewService(src TableFetcher, tables []string, targets []Uploader, log logx.Logger) *Service {
	return &Service{src: src, tables: tables, targets: targets, log: log}
}

func (s *Service) Run(ctx context.Context, now time.Time) error {
	if len(s.targets) == 0 {
		return fmt.Errorf("backup: no targets configured")
	}

	var errs []error
	for _, table := range s.tables {
		if err := s.backupTable(ctx, table, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) backupTable(ctx context.Context, table string, now time.Time) error {
	rows, err := s.src.FetchAll(ctx, table)
	if err != nil {
		return fmt.Errorf("backup %s: %w", table, err)
	}
	data, err := ExportCSV(rows)
	if err != nil {
		return fmt.Errorf("backup %s: %w", table, err)
	}
	name := Filename(table, now)
	s.log.Debug("table exported",
		logx.String("table", table),
		logx.String("file", name),
		logx.Int("rows", len(rows)),
		logx.Int("bytes", len(data)))

	var errs []error
	for _, t := range s.targets {
		if err := t.Upload(ctx, name, data); err != nil {
			s.log.Warn("backup upload failed",
				logx.String("table", table),
				logx.String("target", t.Name()),
				logx.Err(err))
			errs = append(errs, fmt.Errorf("backup %s to %s: %w", table, t.Name(), err))
		}
	}
	return errors.Join(errs...)
}
