// Package aggregate publishes the ABIs of a group table into a flat
// directory, one JSON file per group.
package aggregate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harry-hov/abi-aggregator/internal/artifact"
)

// Output describes one published file.
type Output struct {
	Name    string
	Path    string
	Sources int
	Bytes   int
}

type Result struct {
	Branch  string
	OutDir  string
	Outputs []Output
	// Skipped lists active groups whose ABI was empty and therefore not written.
	Skipped []string
}

type Options struct {
	// Root is the directory source paths are relative to.
	Root string
	// OutDir receives <name>.json for every active group.
	OutDir string
	// Concurrency bounds the number of artifacts open at once.
	Concurrency int
	Logger      *zap.Logger
}

type Aggregator struct {
	reader *Reader
	outDir string
	logger *zap.Logger
}

func New(opts Options) *Aggregator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		reader: NewReader(opts.Root, opts.Concurrency),
		outDir: opts.OutDir,
		logger: logger,
	}
}

// Run publishes every group of table that applies to branch.
//
// All groups are read and aggregated before anything is written, so a bad
// source leaves the output directory untouched. The first write failure
// aborts the run; files already written by then are left in place.
func (a *Aggregator) Run(ctx context.Context, table artifact.Table, branch string) (*Result, error) {
	log := a.logger.With(zap.String("run", uuid.NewString()), zap.String("branch", branch))

	groups := table.ForBranch(branch)
	for _, g := range table.Groups() {
		if !g.AppliesTo(branch) {
			log.Debug("skipping group", zap.String("name", g.Name))
		}
	}

	if err := os.MkdirAll(a.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	abis := make([]json.RawMessage, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, g := range groups {
		i, g := i, g
		eg.Go(func() error {
			abi, err := a.Aggregate(egCtx, g)
			if err != nil {
				return err
			}
			abis[i] = abi
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var srcErr *SourceReadError
		if errors.As(err, &srcErr) {
			log.Error("could not open file", zap.String("path", srcErr.Path), zap.Error(srcErr.Err))
		}
		return nil, err
	}

	res := &Result{Branch: branch, OutDir: a.outDir}
	written := make([]*Output, len(groups))

	eg, egCtx = errgroup.WithContext(ctx)
	for i, g := range groups {
		i, g := i, g
		if isFalsy(abis[i]) {
			log.Warn("empty abi, not writing", zap.String("name", g.Name))
			res.Skipped = append(res.Skipped, g.Name)
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out, err := a.write(g, abis[i])
			if err != nil {
				return err
			}
			written[i] = &out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		var dstErr *DestinationWriteError
		if errors.As(err, &dstErr) {
			log.Error("could not write file", zap.String("name", dstErr.Name), zap.Error(dstErr.Err))
		}
		return nil, err
	}

	for _, out := range written {
		if out != nil {
			res.Outputs = append(res.Outputs, *out)
		}
	}
	log.Info("published abis",
		zap.String("dir", a.outDir),
		zap.Int("written", len(res.Outputs)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("artifacts", a.reader.Cached()),
	)

	return res, nil
}

// Aggregate returns the published ABI of g: the abi of its only source, or
// the concatenation of its sources' abi arrays in declaration order.
func (a *Aggregator) Aggregate(ctx context.Context, g artifact.Group) (json.RawMessage, error) {
	if len(g.Files) == 1 {
		return a.reader.ReadABI(ctx, g.Files[0])
	}

	parts := make([]json.RawMessage, len(g.Files))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, f := range g.Files {
		i, f := i, f
		eg.Go(func() error {
			abi, err := a.reader.ReadABI(egCtx, f)
			if err != nil {
				return err
			}
			parts[i] = abi
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return flatten(parts)
}

func (a *Aggregator) write(g artifact.Group, abi json.RawMessage) (Output, error) {
	path := filepath.Join(a.outDir, g.Name+".json")
	if err := os.WriteFile(path, abi, 0o644); err != nil {
		return Output{}, &DestinationWriteError{Name: g.Name, Path: path, Err: err}
	}
	a.logger.Debug("wrote abi", zap.String("name", g.Name), zap.String("path", path))
	return Output{Name: g.Name, Path: path, Sources: len(g.Files), Bytes: len(abi)}, nil
}

// flatten concatenates parts one level deep. Array parts contribute their
// elements, any other value contributes itself, absent parts nothing.
func flatten(parts []json.RawMessage) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	n := 0
	add := func(elem json.RawMessage) {
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(elem)
		n++
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		if p[0] != '[' {
			add(p)
			continue
		}
		var elems []json.RawMessage
		if err := json.Unmarshal(p, &elems); err != nil {
			return nil, err
		}
		for _, e := range elems {
			add(e)
		}
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

// isFalsy reports whether abi is absent or one of the JSON values that
// carry nothing to publish: null, false, zero or the empty string.
func isFalsy(abi json.RawMessage) bool {
	if isNull(abi) {
		return true
	}
	s := string(bytes.TrimSpace(abi))
	switch s {
	case "false", `""`:
		return true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f == 0
	}
	return false
}
