package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// fileStore appends run entries to runs.jsonl under the configured directory.
// One JSON object per line; corrupt lines are skipped on read so a torn write
// never poisons the whole history.
type fileStore struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *json.Encoder
}

func openFileStore(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file storage: path is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	path := filepath.Join(dir, "runs.jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("file storage: %w", err)
	}
	return &fileStore{path: path, f: f, enc: json.NewEncoder(f)}, nil
}

func (s *fileStore) AppendRun(_ context.Context, e RunEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return fmt.Errorf("file storage: closed")
	}
	if err := s.enc.Encode(e); err != nil {
		return fmt.Errorf("file storage: append: %w", err)
	}
	return nil
}

func (s *fileStore) RecentRuns(_ context.Context, limit int) ([]RunEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("file storage: %w", err)
	}
	defer f.Close()

	var all []RunEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e RunEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		all = append(all, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("file storage: scan: %w", err)
	}

	// Newest first.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
