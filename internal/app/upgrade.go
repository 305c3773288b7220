package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/venvup/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

type step func(context.Context, domain.UpgradeRequest) domain.UpgradeResult

// Upgrade brings the environment of every requirement up to date and prints one result per line.
// It returns domain.ErrUpgradeFailed when any result has status ERROR.
func (a *App) Upgrade(ctx context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	orch, err := a.newOrchestrator(s)
	if err != nil {
		return err
	}
	return a.runBatch(ctx, s, orch.Upgrade)
}

// Promote switches the retained shadow environment of every requirement into place.
func (a *App) Promote(ctx context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	orch, err := a.newOrchestrator(s)
	if err != nil {
		return err
	}
	return a.runBatch(ctx, s, orch.Promote)
}

// runBatch runs fn for every requirement of the session, at most cfg.Parallelism at a time.
// Requirements are distinct, so no two goroutines ever touch the same path.
func (a *App) runBatch(ctx context.Context, s *session, fn step) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	results := make([]domain.UpgradeResult, len(s.reqs))

	var g errgroup.Group
	g.SetLimit(max(1, s.cfg.Parallelism))
	for i, req := range s.reqs {
		g.Go(func() error {
			results[i] = fn(ctx, s.request(req))
			return nil
		})
	}
	_ = g.Wait()

	return a.report(results)
}

// report prints the results in request order and logs a one-line summary of each.
func (a *App) report(results []domain.UpgradeResult) error {
	enc := json.NewEncoder(a.stdout)
	failed := false
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return zerr.Wrap(err, "failed to write result")
		}
		icon, _ := style.Status(r.Status)
		a.logger.Info(fmt.Sprintf("%s %s %s", icon, r.Requirement, r.Status))
		if r.Failed() {
			failed = true
		}
	}
	if failed {
		return domain.ErrUpgradeFailed
	}
	return nil
}

// Versions prints the newest version each existing environment could be upgraded to.
// Nothing is printed for an environment that is current or absent.
func (a *App) Versions(ctx context.Context, opts Options) error {
	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	orch, err := a.newOrchestrator(s)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	for _, req := range s.reqs {
		v, err := orch.AvailableUpgrade(ctx, s.request(req))
		if err != nil {
			return zerr.With(err, "requirement", req.String())
		}
		if v == nil {
			continue
		}
		if len(s.reqs) == 1 {
			_, _ = fmt.Fprintln(a.stdout, v.String())
			continue
		}
		_, _ = fmt.Fprintf(a.stdout, "%s %s\n", req.String(), v.String())
	}
	return nil
}

// Watch upgrades once and again every time one of the manifests changes, until ctx is done.
// Failed rounds are logged and do not stop the watch.
func (a *App) Watch(ctx context.Context, opts Options) error {
	if len(opts.Manifests) == 0 {
		return zerr.With(domain.ErrNoRequirements, "reason", "watch needs at least one manifest")
	}

	s, err := a.start(opts)
	if err != nil {
		return err
	}
	defer s.close()

	orch, err := a.newOrchestrator(s)
	if err != nil {
		return err
	}

	w, err := a.watchers()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, opts.Manifests); err != nil {
		return err
	}

	a.round(ctx, s, orch.Upgrade)
	a.logger.Info(fmt.Sprintf("watching %d manifest(s)", len(opts.Manifests)))

	for event := range w.Events() {
		if event.Operation == ports.OpRemove || event.Operation == ports.OpRename {
			a.logger.Warn("manifest removed: " + event.Path)
			continue
		}
		a.logger.Info("manifest changed: " + event.Path)

		reqs, err := a.requirements(opts)
		if err != nil {
			a.logger.Error(err)
			continue
		}
		s.reqs = reqs
		a.round(ctx, s, orch.Upgrade)
	}
	return nil
}

// round runs one batch and logs anything but failed results, which the batch already reported.
func (a *App) round(ctx context.Context, s *session, fn step) {
	if err := a.runBatch(ctx, s, fn); err != nil && !errors.Is(err, domain.ErrUpgradeFailed) {
		a.logger.Error(err)
	}
}
