package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Reader extracts the abi field of build artifacts. Results are cached by
// resolved path for the lifetime of the Reader, and concurrent reads of the
// same path share one open.
type Reader struct {
	root string
	sem  *semaphore.Weighted

	flight singleflight.Group
	cache  cmap.ConcurrentMap[string, json.RawMessage]
}

// NewReader resolves relative paths against root and keeps at most maxOpen
// files open at once.
func NewReader(root string, maxOpen int) *Reader {
	if maxOpen < 1 {
		maxOpen = 1
	}
	return &Reader{
		root:  root,
		sem:   semaphore.NewWeighted(int64(maxOpen)),
		cache: cmap.New[json.RawMessage](),
	}
}

type sourceArtifact struct {
	ABI json.RawMessage `json:"abi"`
}

// ReadABI returns the compacted abi value of the artifact at path. A nil
// value means the artifact has no abi field.
func (r *Reader) ReadABI(ctx context.Context, path string) (json.RawMessage, error) {
	full := r.resolve(path)
	if abi, ok := r.cache.Get(full); ok {
		return abi, nil
	}

	v, err, _ := r.flight.Do(full, func() (any, error) {
		if abi, ok := r.cache.Get(full); ok {
			return abi, nil
		}
		abi, err := r.read(ctx, path, full)
		if err != nil {
			return nil, err
		}
		r.cache.Set(full, abi)
		return abi, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

func (r *Reader) read(ctx context.Context, path, full string) (json.RawMessage, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	r.sem.Release(1)
	if err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}

	var src sourceArtifact
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	if isNull(src.ABI) {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, src.ABI); err != nil {
		return nil, &SourceReadError{Path: path, Err: err}
	}
	return buf.Bytes(), nil
}

// Cached reports how many distinct artifacts have been read.
func (r *Reader) Cached() int {
	return r.cache.Count()
}

func (r *Reader) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.root, filepath.FromSlash(path))
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
