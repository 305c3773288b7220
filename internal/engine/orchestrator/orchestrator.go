// Package orchestrator implements the environment upgrade state machine.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// Options holds the install settings shared by every invocation.
type Options struct {
	// ArchiveDir installs from local archives when set.
	ArchiveDir string
	// IndexURL installs from the package index when ArchiveDir is empty.
	IndexURL string
}

// Orchestrator decides whether an environment needs an upgrade, stages it in a shadow copy
// and switches the verified copy into place.
type Orchestrator struct {
	fs        ports.FileSystem
	builder   ports.EnvironmentBuilder
	source    ports.VersionSource
	installer ports.Installer
	hooks     ports.PostInstaller
	store     ports.HistoryStore
	tracer    ports.Tracer
	logger    ports.Logger
	opts      Options

	now      func() time.Time
	newRunID func() string
}

// New creates a new Orchestrator.
func New(
	fs ports.FileSystem,
	builder ports.EnvironmentBuilder,
	source ports.VersionSource,
	installer ports.Installer,
	hooks ports.PostInstaller,
	store ports.HistoryStore,
	tracer ports.Tracer,
	logger ports.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		fs:        fs,
		builder:   builder,
		source:    source,
		installer: installer,
		hooks:     hooks,
		store:     store,
		tracer:    tracer,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// run carries the state of one invocation.
type run struct {
	req    domain.UpgradeRequest
	result domain.UpgradeResult
	span   ports.Span
}

func (o *Orchestrator) newRun(req domain.UpgradeRequest, span ports.Span) *run {
	path := req.Path()
	return &run{
		req:  req,
		span: span,
		result: domain.UpgradeResult{
			RunID:       o.newRunID(),
			Requirement: req.Requirement.String(),
			Path:        path,
			Executable:  domain.ExecutablePath(path),
			State:       domain.StateAbsent,
			StartedAt:   o.now(),
		},
	}
}

func (r *run) transition(s domain.State) {
	r.result.State = s
}

// Upgrade runs the state machine for one requirement. It never returns an error:
// failures are reported in the result, which is produced exactly once.
func (o *Orchestrator) Upgrade(ctx context.Context, req domain.UpgradeRequest) domain.UpgradeResult {
	ctx, span := o.tracer.Start(ctx, "upgrade",
		ports.WithAttribute("requirement", req.Requirement.String()),
		ports.WithAttribute("blue_green", req.BlueGreen),
	)
	defer span.End()

	r := o.newRun(req, span)
	path := r.result.Path

	if err := o.recover(ctx, path); err != nil {
		return o.fail(r, domain.StateFailed, err)
	}

	if !o.fs.Exists(path) {
		return o.create(ctx, r)
	}

	env, err := o.inspect(ctx, path)
	if err != nil {
		return o.fail(r, domain.StateFailed, err)
	}
	r.transition(domain.StateCurrent)

	installed, err := env.InstalledVersion(req.Requirement.Name)
	if err != nil {
		return o.fail(r, domain.StateFailed, err)
	}
	if installed != nil {
		r.result.FromVersion = installed.String()
	}

	if !req.AutoUpgrade {
		o.logger.Info(req.Requirement.String() + " is installed, automatic upgrades are disabled")
		return o.unchanged(r)
	}

	target, ok, err := o.resolveTarget(ctx, req.Requirement, installed)
	if err != nil {
		return o.fail(r, domain.StateCurrent, err)
	}
	if !ok {
		o.logger.Info(req.Requirement.String() + " is up to date")
		return o.unchanged(r)
	}

	r.transition(domain.StateUpgradePending)
	r.result.ToVersion = target.String()
	o.logger.Info("upgrading " + req.Requirement.Name + " to " + target.String())

	return o.upgradeShadow(ctx, r, env, target)
}

// create builds a missing environment and installs the newest matching version directly.
// Nothing serves from a new environment, so no shadow copy is needed.
func (o *Orchestrator) create(ctx context.Context, r *run) domain.UpgradeResult {
	req := r.req
	path := r.result.Path

	target, ok, err := o.resolveTarget(ctx, req.Requirement, nil)
	if err != nil {
		return o.fail(r, domain.StateAbsent, err)
	}
	if !ok {
		return o.fail(r, domain.StateAbsent, zerr.With(domain.ErrNoCompatibleVersion, "requirement", req.Requirement.String()))
	}
	r.result.ToVersion = target.String()

	stepCtx, span := o.tracer.Start(ctx, "build", ports.WithAttribute("path", path))
	env, err := o.builder.Build(stepCtx, path)
	span.RecordError(err)
	span.End()
	if err != nil {
		return o.fail(r, domain.StateAbsent, err)
	}
	r.transition(domain.StateCreated)
	o.logger.Info("created environment " + path)

	resp := o.install(ctx, env, r, target)
	if err := o.validate(resp, req.Requirement, target); err != nil {
		// A freshly built environment that never received its package is not usable.
		if rmErr := o.fs.RemoveAll(path); rmErr != nil {
			o.logger.Warn("failed to remove incomplete environment " + path + ": " + rmErr.Error())
		}
		return o.fail(r, domain.StateFailed, err)
	}

	r.result.Fingerprint = domain.Contents(resp.Installed).Fingerprint()
	r.transition(domain.StateSwitched)
	return o.upgraded(ctx, r, env)
}

// upgradeShadow stages the upgrade in a copy of the active environment and settles the outcome.
func (o *Orchestrator) upgradeShadow(
	ctx context.Context,
	r *run,
	active domain.Environment,
	target domain.Version,
) domain.UpgradeResult {
	path := active.Path
	shadowPath := domain.ShadowPath(path)

	r.transition(domain.StateShadowBuilding)
	_, span := o.tracer.Start(ctx, "shadow_build", ports.WithAttribute("shadow_path", shadowPath))
	err := o.stageShadow(path, shadowPath)
	span.RecordError(err)
	span.End()
	if err != nil {
		o.discard(shadowPath)
		return o.fail(r, domain.StateFailed, err)
	}

	shadow := domain.NewEnvironment(shadowPath)
	resp := o.install(ctx, shadow, r, target)

	r.transition(domain.StateValidating)
	if err := o.validate(resp, r.req.Requirement, target); err != nil {
		o.discard(shadowPath)
		return o.fail(r, domain.StateRolledBack, err)
	}
	r.result.Fingerprint = domain.Contents(resp.Installed).Fingerprint()

	if r.req.BlueGreen {
		r.transition(domain.StateRetained)
		r.result.ShadowPath = shadowPath
		r.result.Executable = shadow.Executable
		o.logger.Info("shadow environment retained at " + shadowPath)
		return o.finish(r, domain.StatusUpgraded, nil)
	}

	if err := o.swap(ctx, path, shadowPath); err != nil {
		o.discard(shadowPath)
		return o.fail(r, domain.StateRolledBack, err)
	}
	r.transition(domain.StateSwitched)

	return o.upgraded(ctx, r, domain.NewEnvironment(path))
}

// stageShadow replaces any leftover shadow with a fresh copy of the active environment.
// Scripts of the copy are rewritten to name the shadow, so a retained shadow runs its own interpreter.
func (o *Orchestrator) stageShadow(path, shadowPath string) error {
	if err := o.fs.RemoveAll(shadowPath); err != nil {
		return zerr.Wrap(err, domain.ErrCopyFailed.Error())
	}
	if err := o.fs.Copy(path, shadowPath); err != nil {
		return err
	}
	if err := o.fs.Relocate(shadowPath, path, shadowPath); err != nil {
		o.logger.Warn("failed to relocate scripts of " + shadowPath + ": " + err.Error())
	}
	return nil
}

// install performs the install attempt into env.
func (o *Orchestrator) install(ctx context.Context, env domain.Environment, r *run, target domain.Version) domain.InstallResponse {
	ctx, span := o.tracer.Start(ctx, "install",
		ports.WithAttribute("path", env.Path),
		ports.WithAttribute("version", target.String()),
	)
	defer span.End()

	resp := o.installer.Install(ctx, env, domain.InstallRequest{
		Requirement:     r.req.Requirement,
		Target:          &target,
		Extra:           r.req.Extra,
		ArchiveDir:      o.opts.ArchiveDir,
		IndexURL:        o.opts.IndexURL,
		ConstraintsPath: r.req.ConstraintsPath,
		Cache:           domain.NewConstraintsCache(),
	})
	if !resp.Success {
		span.RecordError(zerr.New(resp.Error))
	}
	for _, inc := range resp.Inconsistencies {
		o.logger.Warn("inconsistent dependency: " + inc.String())
	}
	return resp
}

// validate is the single decision point of an upgrade: only a successful install that
// reports the target version is switched into place.
func (o *Orchestrator) validate(resp domain.InstallResponse, req domain.Requirement, target domain.Version) error {
	if !resp.Success {
		err := zerr.With(domain.ErrInstallFailed, "requirement", req.String())
		if resp.Error != "" {
			err = zerr.With(err, "reason", resp.Error)
		}
		return err
	}

	installed, ok := domain.Contents(resp.Installed).Find(req.Name)
	if !ok {
		return zerr.With(domain.ErrValidationFailed, "reason", req.Name+" is not installed")
	}
	v, err := domain.ParseVersion(installed.Version)
	if err != nil || !v.Equal(target) {
		return zerr.With(zerr.With(domain.ErrValidationFailed, "expected", target.String()), "installed", installed.Version)
	}
	return nil
}

// upgraded runs the post-install hook of an environment that is now active and reports success.
func (o *Orchestrator) upgraded(ctx context.Context, r *run, env domain.Environment) domain.UpgradeResult {
	r.result.Executable = env.Executable
	o.logger.Info(r.req.Requirement.Name + " " + r.result.ToVersion + " is active at " + env.Path)

	if r.req.PostInstall && o.hooks != nil {
		ctx, span := o.tracer.Start(ctx, "post_install")
		err := o.hooks.Run(ctx, env, r.req.Requirement)
		span.RecordError(err)
		span.End()
		if err != nil {
			return o.fail(r, r.result.State, err)
		}
	}
	return o.finish(r, domain.StatusUpgraded, nil)
}

func (o *Orchestrator) unchanged(r *run) domain.UpgradeResult {
	return o.finish(r, domain.StatusUnchanged, nil)
}

func (o *Orchestrator) fail(r *run, state domain.State, err error) domain.UpgradeResult {
	r.transition(state)
	return o.finish(r, domain.StatusError, err)
}

// finish seals the result, logs it and records it in the history.
func (o *Orchestrator) finish(r *run, status domain.Status, err error) domain.UpgradeResult {
	r.result.Status = status
	r.result.FinishedAt = o.now()
	r.span.SetAttribute("status", string(status))
	r.span.SetAttribute("state", string(r.result.State))

	if err != nil {
		r.result.Error = err.Error()
		r.span.RecordError(err)
		o.logger.Error(err)
	}

	if r.result.Recordable() && o.store != nil {
		if putErr := o.store.Put(r.req.EnvsHome, r.result); putErr != nil {
			o.logger.Warn("failed to record upgrade history: " + putErr.Error())
		}
	}
	return r.result
}

// discard removes a shadow environment that will not be used.
func (o *Orchestrator) discard(shadowPath string) {
	if err := o.fs.RemoveAll(shadowPath); err != nil {
		o.logger.Warn("failed to remove shadow environment " + shadowPath + ": " + err.Error())
	}
}
