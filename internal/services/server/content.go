package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/temirov/srcview/internal/navigator"
	"github.com/temirov/srcview/internal/services/metrics"
	"github.com/temirov/srcview/internal/tree"
	"github.com/temirov/srcview/internal/treepath"
	"github.com/temirov/srcview/internal/utils"
)

const (
	// DefaultCacheEntries bounds the content cache when no size is given.
	DefaultCacheEntries = 256

	errorCreateCacheFormat = "create content cache: %w"
	errorReadContentFormat = "read %s: %w"
)

var (
	// ErrNotInTree is returned for paths that are not files of the served tree.
	ErrNotInTree     = errors.New("path is not a file in the tree")
	// ErrBinaryContent is returned for files that do not hold text.
	ErrBinaryContent = errors.New("file content is not text")
)

// FileFetcher reads the text of tree files from the directory the tree was
// built from. Only paths present in the index as files are readable, so
// ignored entries and anything outside the root stay unreachable.
type FileFetcher struct {
	rootDirectory string
	index         *tree.Index
	cache         *lru.Cache[treepath.Path, string]
	logger        *zap.Logger
}

// NewFileFetcher creates a fetcher rooted at rootDirectory that caches up to
// cacheEntries file texts.
func NewFileFetcher(rootDirectory string, index *tree.Index, cacheEntries int, logger *zap.Logger) (*FileFetcher, error) {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	cache, cacheErr := lru.New[treepath.Path, string](cacheEntries)
	if cacheErr != nil {
		return nil, fmt.Errorf(errorCreateCacheFormat, cacheErr)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileFetcher{
		rootDirectory: rootDirectory,
		index:         index,
		cache:         cache,
		logger:        logger,
	}, nil
}

// Contains reports whether path is a file of the served tree.
func (fetcher *FileFetcher) Contains(path treepath.Path) bool {
	node, found := fetcher.index.Lookup(path)
	return found && node.IsFile()
}

// Fetch returns the text of the file at path.
func (fetcher *FileFetcher) Fetch(ctx context.Context, path treepath.Path) (string, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if !fetcher.Contains(path) {
		return "", fmt.Errorf("%w: %s", ErrNotInTree, path)
	}
	if cached, hit := fetcher.cache.Get(path); hit {
		metrics.RecordCacheLookup(true)
		return cached, nil
	}
	metrics.RecordCacheLookup(false)

	filePath := filepath.Join(fetcher.rootDirectory, filepath.FromSlash(path.String()))
	data, readErr := os.ReadFile(filePath)
	if readErr != nil {
		return "", fmt.Errorf(errorReadContentFormat, path, readErr)
	}
	if utils.IsBinary(data) {
		return "", fmt.Errorf("%w: %s", ErrBinaryContent, path)
	}
	text := string(data)
	fetcher.cache.Add(path, text)
	fetcher.logger.Debug("content read", zap.String("path", path.String()), zap.Int("bytes", len(data)))
	return text, nil
}

// Purge drops every cached file text.
func (fetcher *FileFetcher) Purge() {
	fetcher.cache.Purge()
}

var _ navigator.Fetcher = (*FileFetcher)(nil)
