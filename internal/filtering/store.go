package filtering

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/scriptlets/internal/filtering/dialect"
)

const (
	cacheVersion    = 1    // Cache format version for compatibility
	dirPermissions  = 0755 // Directory permissions
	filePermissions = 0644 // File permissions
)

// FileListStore caches compiled filter lists on disk, one entry per
// source content and target dialect.
type FileListStore struct {
	dir    string
	logger zerolog.Logger
}

// CacheMetadata stores information about one cache entry
type CacheMetadata struct {
	Version   int       `json:"version"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	DataHash  string    `json:"data_hash"`
}

// NewFileListStore creates a store rooted at dir, creating it if needed.
func NewFileListStore(dir string, logger zerolog.Logger) (*FileListStore, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileListStore{dir: dir, logger: logger}, nil
}

// CacheKey identifies the compilation of source for target.
func CacheKey(target dialect.Tag, source []byte) string {
	h := sha256.New()
	fmt.Fprintf(h, "v%d:%s:", cacheVersion, target)
	h.Write(source)
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (s *FileListStore) dataFile(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileListStore) metaFile(key string) string {
	return filepath.Join(s.dir, key+".meta.json")
}

// Load returns the cached compilation for key. It fails with ErrCacheMiss
// when nothing is cached and ErrCacheCorrupted when the entry is damaged.
func (s *FileListStore) Load(key string) (*CompiledList, error) {
	metadata, err := s.loadMetadata(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load cache metadata: %w", ErrCacheCorrupted, err)
	}

	// Verify cache version compatibility
	if metadata.Version != cacheVersion {
		return nil, fmt.Errorf("%w: cache version mismatch: got %d, expected %d", ErrCacheMiss, metadata.Version, cacheVersion)
	}

	data, err := os.ReadFile(s.dataFile(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	// Verify data integrity
	if fmt.Sprintf("%x", sha256.Sum256(data)) != metadata.DataHash {
		return nil, fmt.Errorf("%w: hash mismatch", ErrCacheCorrupted)
	}

	var compiled CompiledList
	if err := json.Unmarshal(data, &compiled); err != nil {
		return nil, fmt.Errorf("%w: failed to deserialize cache data: %w", ErrCacheCorrupted, err)
	}

	metadata.LastUsed = time.Now()
	if err := s.saveMetadata(key, metadata); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to update cache metadata")
	}

	s.logger.Debug().Str("key", key).Msg("loaded compiled list from cache")
	return &compiled, nil
}

// Save stores list under key
func (s *FileListStore) Save(key string, list *CompiledList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to serialize compiled list: %w", err)
	}

	now := time.Now()
	metadata := &CacheMetadata{
		Version:   cacheVersion,
		Target:    list.Target,
		CreatedAt: now,
		LastUsed:  now,
		DataHash:  fmt.Sprintf("%x", sha256.Sum256(data)),
	}

	if err := s.writeAtomic(s.dataFile(key), data); err != nil {
		return fmt.Errorf("failed to write cache data: %w", err)
	}
	if err := s.saveMetadata(key, metadata); err != nil {
		return fmt.Errorf("failed to save cache metadata: %w", err)
	}

	s.logger.Debug().Str("key", key).Msg("saved compiled list to cache")
	return nil
}

// Info returns whether key is cached and when it was last written
func (s *FileListStore) Info(key string) (bool, time.Time, error) {
	info, err := os.Stat(s.dataFile(key))
	if os.IsNotExist(err) {
		return false, time.Time{}, nil
	}
	if err != nil {
		return false, time.Time{}, err
	}
	return true, info.ModTime(), nil
}

// Invalidate removes the entry for key
func (s *FileListStore) Invalidate(key string) error {
	for _, path := range []string{s.dataFile(key), s.metaFile(key)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

func (s *FileListStore) loadMetadata(key string) (*CacheMetadata, error) {
	data, err := os.ReadFile(s.metaFile(key))
	if err != nil {
		return nil, err
	}

	var metadata CacheMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (s *FileListStore) saveMetadata(key string, metadata *CacheMetadata) error {
	data, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	return s.writeAtomic(s.metaFile(key), data)
}

func (s *FileListStore) writeAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, filePermissions); err != nil {
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		if removeErr := os.Remove(tempFile); removeErr != nil {
			s.logger.Error().Err(removeErr).Str("file", tempFile).Msg("failed to cleanup temp file")
		}
		return err
	}
	return nil
}
