package services

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"commerce-dashboard/internal/models"
)

const (
	cacheVersion    = "v2"
	defaultCacheDir = ".cache"
)

var errCacheDisabled = errors.New("cache disabled")

// cachedTable is the parsed order table as stored on disk. Aggregates are
// never cached.
type cachedTable struct {
	Lines     []models.OrderLine
	CreatedAt time.Time
}

func (a *Analytics) cacheFilename(csvPath string) string {
	name := strings.ReplaceAll(filepath.Clean(csvPath), string(filepath.Separator), "_")
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (a *Analytics) saveToCache(csvPath string, lines []models.OrderLine) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(a.cacheFilename(csvPath))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(cachedTable{Lines: lines, CreatedAt: time.Now()})
}

func (a *Analytics) loadFromCache(csvPath string) (*cachedTable, error) {
	if a.cacheDir == "" {
		return nil, errCacheDisabled
	}

	file, err := os.Open(a.cacheFilename(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var table cachedTable
	if err := gob.NewDecoder(file).Decode(&table); err != nil {
		return nil, err
	}
	return &table, nil
}
