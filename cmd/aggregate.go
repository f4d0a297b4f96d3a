package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/harry-hov/abi-aggregator/internal/aggregate"
	"github.com/harry-hov/abi-aggregator/internal/artifact"
	"github.com/harry-hov/abi-aggregator/internal/manifest"
)

func (a *app) aggregate(ctx context.Context, branch string) error {
	table, err := a.table()
	if err != nil {
		return err
	}
	outDir, err := a.outDir()
	if err != nil {
		return err
	}

	agg := aggregate.New(aggregate.Options{
		Root:        a.env.Root,
		OutDir:      outDir,
		Concurrency: a.env.Concurrency,
		Logger:      a.logger,
	})
	_, err = agg.Run(ctx, table, branch)
	return err
}

// table is the configured group table, or the built-in one.
func (a *app) table() (artifact.Table, error) {
	if a.env.Table != "" {
		a.logger.Debug("loading group table", zap.String("path", a.env.Table))
		return artifact.LoadTable(a.env.Table)
	}
	table := artifact.DefaultTable()
	if err := table.Validate(); err != nil {
		return artifact.Table{}, err
	}
	return table, nil
}

// outDir namespaces the output directory by the package version, when the
// project has a manifest.
func (a *app) outDir() (string, error) {
	v, err := manifest.Version(a.env.Manifest)
	if errors.Is(err, manifest.ErrNotFound) {
		a.logger.Debug("no package manifest, output is not versioned", zap.String("manifest", a.env.Manifest))
		return a.env.OutDir, nil
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(a.env.OutDir, v), nil
}
