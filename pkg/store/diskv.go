package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
)

// Disk is a KV backed by diskv. Each key lives in a directory named after the
// part of the key before the first underscore, so cache entries and dedup
// markers land in separate buckets.
type Disk struct {
	d        *diskv.Diskv
	basePath string
}

var _ KV = (*Disk)(nil)

// Open creates a Disk rooted at cfg.BasePath(). A leading ~ is expanded.
func Open(cfg Config) (*Disk, error) {
	if cfg == nil || strings.TrimSpace(cfg.BasePath()) == "" {
		return nil, errors.New("store: base path required")
	}
	basePath, err := homedir.Expand(cfg.BasePath())
	if err != nil {
		return nil, fmt.Errorf("store: expand %s: %w", cfg.BasePath(), err)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Disk{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

// BasePath is the expanded directory the store writes to.
func (s *Disk) BasePath() string {
	return s.basePath
}

func (s *Disk) Get(key string) (string, bool, error) {
	if !s.d.Has(key) {
		return "", false, nil
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: read %s: %w", key, err)
	}
	return string(val), true, nil
}

func (s *Disk) Put(key, value string) error {
	if key == "" {
		return errors.New("store: empty key")
	}
	if err := s.d.WriteString(key, value); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

func (s *Disk) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

// Keys lists stored keys starting with prefix, sorted.
func (s *Disk) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.d.Keys(ctx.Done()) {
		if key == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func bucketOf(key string) string {
	if i := strings.Index(key, "_"); i > 0 {
		return key[:i]
	}
	return "misc"
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{bucketOf(key)},
		FileName: base64.RawURLEncoding.EncodeToString([]byte(key)),
	}
}

// pathToKeyTransform returns "" for files the store did not write.
func pathToKeyTransform(pathKey *diskv.PathKey) string {
	key, err := base64.RawURLEncoding.DecodeString(pathKey.FileName)
	if err != nil {
		return ""
	}
	return string(key)
}
