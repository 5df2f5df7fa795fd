// Package supabase wraps the Supabase REST client with the typed queries the
// report and backup jobs need: exact row counts, filtered counts, single-value
// reads, and full table dumps.
package supabase

import (
	"fmt"

	supa "github.com/supabase-community/supabase-go"

	"supaops/internal/config"
)

type Client struct {
	sb *supa.Client
}

// New builds a client from config. URL and key are required; they normally
// arrive via SUPABASE_URL and SUPABASE_KEY.
func New(cfg config.SupabaseConfig) (*Client, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("supabase: %s and %s must be set",
			config.EnvSupabaseURL, config.EnvSupabaseKey)
	}
	sb, err := supa.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase: create client: %w", err)
	}
	return &Client{sb: sb}, nil
}
