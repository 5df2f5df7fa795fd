package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"supaops/pkg/logx"
)

// Validator inspects a parsed config before it is committed. Returning an
// error rejects the update and keeps the previous config active.
type Validator func(Config) error

// Manager owns the active configuration: parsing, validation, atomic swap,
// change fan-out to subscribers, and optional file watching for hot reload.
type Manager struct {
	log logx.Logger

	mu        sync.RWMutex
	current   Config
	hash      string
	validator Validator

	subMu  sync.Mutex
	subs   map[int]chan Config
	nextID int
}

func NewManager(log logx.Logger) *Manager {
	return &Manager{
		log:  log,
		subs: make(map[int]chan Config),
	}
}

// SetValidator installs the validation hook. Call before Load/Watch.
func (m *Manager) SetValidator(v Validator) {
	m.mu.Lock()
	m.validator = v
	m.mu.Unlock()
}

// Parse decodes raw JSON or YAML into a Config, rejecting unknown fields,
// then applies defaults and environment overrides.
func Parse(raw []byte) (Config, error) {
	jsonBytes, err := coerceToJSONBytes(raw)
	if err != nil {
		return Config{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return ApplyEnv(cfg).WithDefaults(), nil
}

// Load reads, parses, validates and commits the config file at path.
func (m *Manager) Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, err
	}
	if err := m.commit(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Commit validates and installs cfg directly, bypassing the file. Used by
// one-shot runs that assemble their config from the environment alone.
func (m *Manager) Commit(cfg Config) error {
	return m.commit(cfg)
}

func (m *Manager) commit(cfg Config) error {
	m.mu.Lock()
	v := m.validator
	m.mu.Unlock()
	if v != nil {
		if err := v(cfg); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	h := hashConfig(cfg)
	m.mu.Lock()
	if h == m.hash {
		m.mu.Unlock()
		return nil
	}
	m.current = cfg
	m.hash = h
	m.mu.Unlock()

	m.publish(cfg)
	return nil
}

// Get returns the active config.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe returns a channel that receives each committed config. The
// channel is buffered; a slow subscriber misses intermediate updates, never
// blocks a commit.
func (m *Manager) Subscribe() (<-chan Config, func()) {
	ch := make(chan Config, 1)
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = ch
	m.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.subMu.Lock()
			delete(m.subs, id)
			m.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (m *Manager) publish(cfg Config) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- cfg:
		default:
			// Replace the stale pending update so the subscriber always
			// observes the latest config.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- cfg:
			default:
			}
		}
	}
}

const watchDebounce = 250 * time.Millisecond

// Watch reloads the config file when it changes on disk. Editors that
// rename-and-replace are handled by watching the parent directory. Invalid
// updates are logged and skipped; the previous config stays active.
func (m *Manager) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					timerC = timer.C
				} else {
					timer.Reset(watchDebounce)
				}
			case <-timerC:
				if _, err := m.Load(path); err != nil {
					m.log.Warn("config reload rejected",
						logx.String("path", path), logx.Err(err))
					continue
				}
				m.log.Info("config reloaded", logx.String("path", path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				m.log.Warn("config watcher error", logx.Err(err))
			}
		}
	}()
	return nil
}

func hashConfig(cfg Config) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
