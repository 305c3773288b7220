package app

import (
	"context"
	"encoding/json"
	"fmt"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/zerr"
)

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	Options
	// EnvPath names the target environment. Empty locates it under the environments home.
	EnvPath string
}

// Install installs a single requirement into an existing environment and prints the
// structured install response.
func (a *App) Install(ctx context.Context, opts InstallOptions) error {
	s, err := a.start(opts.Options)
	if err != nil {
		return err
	}
	defer s.close()

	if len(s.reqs) != 1 {
		return zerr.With(domain.ErrSingleRequirement, "count", len(s.reqs))
	}
	if s.cfg.ArchiveDir == "" && s.cfg.IndexURL == "" {
		return domain.ErrMissingVersionSource
	}
	req := s.reqs[0]

	path := opts.EnvPath
	if path == "" {
		home, err := s.home()
		if err != nil {
			return err
		}
		path = domain.Locate(home, req.String())
	}
	if !a.fs.Exists(path) {
		return zerr.With(domain.ErrEnvironmentNotFound, "path", path)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp := a.installer.Install(ctx, domain.NewEnvironment(path), domain.InstallRequest{
		Requirement:     req,
		Extra:           s.opts.With,
		ArchiveDir:      s.cfg.ArchiveDir,
		IndexURL:        s.cfg.IndexURL,
		ConstraintsPath: s.opts.Constraints,
		Cache:           domain.NewConstraintsCache(),
	})
	if err := resp.Encode(a.stdout); err != nil {
		return zerr.Wrap(err, "failed to write install response")
	}
	if !resp.Success {
		return zerr.With(zerr.With(domain.ErrInstallFailed, "requirement", req.String()), "reason", resp.Error)
	}
	return nil
}

// Check runs the consistency check in the environment of every requirement and prints
// one line per broken dependency.
func (a *App) Check(ctx context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	home, err := s.home()
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	broken := 0
	for _, req := range s.reqs {
		path := domain.Locate(home, req.String())
		if !a.fs.Exists(path) {
			return zerr.With(domain.ErrEnvironmentNotFound, "path", path)
		}

		inconsistencies, err := a.installer.Check(ctx, domain.NewEnvironment(path))
		if err != nil {
			return zerr.With(err, "requirement", req.String())
		}
		for _, inc := range inconsistencies {
			_, _ = fmt.Fprintf(a.stdout, "%s: %s\n", req.String(), inc.String())
		}
		broken += len(inconsistencies)
	}

	if broken > 0 {
		return zerr.With(domain.ErrEnvironmentInconsistent, "count", broken)
	}
	a.logger.Info("no broken requirements found")
	return nil
}

// Locate prints where the environment of every requirement lives.
func (a *App) Locate(_ context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	home, err := s.home()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	for _, req := range s.reqs {
		if err := enc.Encode(a.locator.Locate(home, req)); err != nil {
			return zerr.Wrap(err, "failed to write location")
		}
	}
	return nil
}

// History prints the recorded upgrade results of every requirement, oldest first.
func (a *App) History(_ context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	home, err := s.home()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.stdout)
	for _, req := range s.reqs {
		results, err := a.store.Get(home, req.String())
		if err != nil {
			return zerr.With(err, "requirement", req.String())
		}
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return zerr.Wrap(err, "failed to write result")
			}
		}
	}
	return nil
}
