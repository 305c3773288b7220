package orchestrator

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// recover repairs the residue of a swap that was interrupted.
//
// The active environment is moved to its backup path before the shadow takes its place.
// If only the backup exists the process stopped in between, so the backup is moved back.
// If both exist the swap completed and only the backup deletion was lost.
func (o *Orchestrator) recover(ctx context.Context, path string) error {
	backup := domain.BackupPath(path)
	if !o.fs.Exists(backup) {
		return nil
	}

	_, span := o.tracer.Start(ctx, "recover", ports.WithAttribute("path", path))
	defer span.End()

	if o.fs.Exists(path) {
		o.logger.Warn("removing backup left by a completed switch: " + backup)
		if err := o.fs.RemoveAll(backup); err != nil {
			span.RecordError(err)
			return zerr.With(zerr.Wrap(err, domain.ErrRecoveryFailed.Error()), "path", backup)
		}
		return nil
	}

	o.logger.Warn("restoring environment from interrupted switch: " + backup)
	if err := o.fs.Rename(backup, path); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrRecoveryFailed.Error()), "path", path)
	}
	return nil
}

// swap moves the shadow environment into the active path.
// The active path is only ever absent while the shadow is being renamed, and a crash in that
// window leaves the backup for recover to restore.
func (o *Orchestrator) swap(ctx context.Context, path, shadowPath string) error {
	_, span := o.tracer.Start(ctx, "switch", ports.WithAttribute("path", path))
	defer span.End()

	backup := domain.BackupPath(path)
	swapErr := func(err error) error {
		span.RecordError(err)
		return zerr.With(zerr.Wrap(err, domain.ErrSwapFailed.Error()), "path", path)
	}

	if err := o.fs.Rename(path, backup); err != nil {
		return swapErr(err)
	}
	if err := o.fs.Rename(shadowPath, path); err != nil {
		if restoreErr := o.fs.Rename(backup, path); restoreErr != nil {
			o.logger.Warn("failed to restore " + path + " from " + backup + ": " + restoreErr.Error())
		}
		return swapErr(err)
	}
	if err := o.fs.RemoveAll(backup); err != nil {
		o.logger.Warn("failed to remove previous environment " + backup + ": " + err.Error())
	}

	// Scripts installed into the shadow name the shadow path.
	if err := o.fs.Relocate(path, shadowPath, path); err != nil {
		o.logger.Warn("failed to relocate scripts of " + path + ": " + err.Error())
	}
	return nil
}

// Promote switches a shadow environment retained by a blue-green upgrade into the active path.
func (o *Orchestrator) Promote(ctx context.Context, req domain.UpgradeRequest) domain.UpgradeResult {
	ctx, span := o.tracer.Start(ctx, "promote", ports.WithAttribute("requirement", req.Requirement.String()))
	defer span.End()

	r := o.newRun(req, span)
	path := r.result.Path
	shadowPath := domain.ShadowPath(path)

	if err := o.recover(ctx, path); err != nil {
		return o.fail(r, domain.StateFailed, err)
	}
	if !o.fs.Exists(shadowPath) {
		return o.fail(r, domain.StateFailed, zerr.With(domain.ErrNoShadowEnvironment, "shadow_path", shadowPath))
	}

	shadow, err := o.inspect(ctx, shadowPath)
	if err != nil {
		return o.fail(r, domain.StateFailed, err)
	}
	if p, ok := shadow.Contents.Find(req.Requirement.Name); ok {
		r.result.ToVersion = p.Version
	}
	r.result.Fingerprint = shadow.Contents.Fingerprint()

	if !o.fs.Exists(path) {
		if err := o.fs.Rename(shadowPath, path); err != nil {
			return o.fail(r, domain.StateFailed, zerr.With(zerr.Wrap(err, domain.ErrSwapFailed.Error()), "path", path))
		}
		if err := o.fs.Relocate(path, shadowPath, path); err != nil {
			o.logger.Warn("failed to relocate scripts of " + path + ": " + err.Error())
		}
	} else {
		r.transition(domain.StateCurrent)
		if active, err := o.inspect(ctx, path); err == nil {
			if p, ok := active.Contents.Find(req.Requirement.Name); ok {
				r.result.FromVersion = p.Version
			}
		}
		if err := o.swap(ctx, path, shadowPath); err != nil {
			return o.fail(r, domain.StateRetained, err)
		}
	}

	r.transition(domain.StateSwitched)
	return o.upgraded(ctx, r, domain.NewEnvironment(path))
}

// inspect lists the packages installed in the environment at path.
func (o *Orchestrator) inspect(ctx context.Context, path string) (domain.Environment, error) {
	env := domain.NewEnvironment(path)
	contents, err := o.installer.List(ctx, env)
	if err != nil {
		return env, err
	}
	env.Contents = contents
	return env, nil
}
