package orchestrator

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
)

// resolveTarget asks the version source for the newest version matching req that is
// newer than installed. ok is false when there is none.
func (o *Orchestrator) resolveTarget(
	ctx context.Context,
	req domain.Requirement,
	installed *domain.Version,
) (target domain.Version, ok bool, err error) {
	ctx, span := o.tracer.Start(ctx, "check", ports.WithAttribute("package", req.Name))
	defer span.End()

	if pinger, isPinger := o.source.(ports.Pinger); isPinger {
		if err := pinger.Ping(ctx); err != nil {
			span.RecordError(err)
			return domain.Version{}, false, err
		}
	}

	versions, err := o.source.ListVersions(ctx, req.Name)
	if err != nil {
		span.RecordError(err)
		return domain.Version{}, false, err
	}
	span.SetAttribute("published", versions.Len())

	target, ok = req.Specifier.UpgradeTarget(versions.Versions(), installed)
	if ok {
		span.SetAttribute("target", target.String())
	}
	return target, ok, nil
}

// AvailableUpgrade reports the version an upgrade of req would install without changing anything.
// It returns nil when the environment does not exist or is already current.
func (o *Orchestrator) AvailableUpgrade(ctx context.Context, req domain.UpgradeRequest) (*domain.Version, error) {
	path := req.Path()
	if !o.fs.Exists(path) {
		return nil, nil //nolint:nilnil // nothing to upgrade
	}

	env, err := o.inspect(ctx, path)
	if err != nil {
		return nil, err
	}
	installed, err := env.InstalledVersion(req.Requirement.Name)
	if err != nil {
		return nil, err
	}

	target, ok, err := o.resolveTarget(ctx, req.Requirement, installed)
	if err != nil || !ok {
		return nil, err
	}
	return &target, nil
}
