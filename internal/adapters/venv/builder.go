// Package venv creates virtual environments with the interpreter's venv module.
package venv

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EnvironmentBuilder = (*Builder)(nil)

// Builder implements ports.EnvironmentBuilder.
type Builder struct {
	runner   ports.CommandRunner
	fs       ports.FileSystem
	logger   ports.Logger
	python   string
	baseline []string
}

// NewBuilder creates a Builder that creates environments with python and installs baseline into them.
// An empty python selects domain.DefaultPython and a nil baseline selects domain.DefaultBaseline.
func NewBuilder(
	runner ports.CommandRunner,
	fs ports.FileSystem,
	logger ports.Logger,
	python string,
	baseline []string,
) *Builder {
	if python == "" {
		python = domain.DefaultPython()
	}
	if baseline == nil {
		baseline = domain.DefaultBaseline
	}
	return &Builder{
		runner:   runner,
		fs:       fs,
		logger:   logger,
		python:   python,
		baseline: baseline,
	}
}

// Build creates the environment at the staging path next to path, installs the baseline
// toolset into it and moves it into place. A failed baseline install leaves the staging
// directory behind for inspection and never creates path.
func (b *Builder) Build(ctx context.Context, path string) (domain.Environment, error) {
	if b.fs.Exists(path) {
		return domain.Environment{}, zerr.With(domain.ErrDirectoryExists, "path", path)
	}

	staging := domain.StagingPath(path)
	if err := b.fs.RemoveAll(staging); err != nil {
		return domain.Environment{}, zerr.With(zerr.Wrap(err, domain.ErrCreationFailed.Error()), "path", staging)
	}

	b.logger.Info("creating environment " + path)
	if _, err := b.runner.Run(ctx, domain.Command{
		Name: b.python,
		Args: []string{"-m", "venv", staging},
	}); err != nil {
		return domain.Environment{}, zerr.With(zerr.Wrap(err, domain.ErrCreationFailed.Error()), "path", staging)
	}

	if len(b.baseline) > 0 {
		args := append([]string{"-m", "pip", "install", "--upgrade"}, b.baseline...)
		if _, err := b.runner.Run(ctx, domain.Command{
			Name: domain.ExecutablePath(staging),
			Args: args,
		}); err != nil {
			err = zerr.Wrap(err, domain.ErrBaselineInstallFailed.Error())
			return domain.Environment{}, zerr.With(err, "staging_path", staging)
		}
	}

	if err := b.fs.Rename(staging, path); err != nil {
		return domain.Environment{}, zerr.With(zerr.Wrap(err, domain.ErrCreationFailed.Error()), "path", path)
	}
	if err := b.fs.Relocate(path, staging, path); err != nil {
		return domain.Environment{}, zerr.With(zerr.Wrap(err, domain.ErrCreationFailed.Error()), "path", path)
	}

	return domain.NewEnvironment(path), nil
}
