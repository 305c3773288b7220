// Package pip installs packages into environments by driving the environment's own pip.
package pip

import (
	"context"
	"encoding/json"
	"strings"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Installer = (*Installer)(nil)

// Installer implements ports.Installer.
type Installer struct {
	runner ports.CommandRunner
	logger ports.Logger
}

// NewInstaller creates a new Installer.
func NewInstaller(runner ports.CommandRunner, logger ports.Logger) *Installer {
	return &Installer{
		runner: runner,
		logger: logger,
	}
}

// Install performs one install attempt and reports its outcome. Errors are folded into the response.
func (i *Installer) Install(ctx context.Context, env domain.Environment, req domain.InstallRequest) domain.InstallResponse {
	resp := domain.NewInstallResponse()

	target := req.Requirement
	if req.Target != nil {
		pinned, err := domain.ParseRequirement(req.Spec())
		if err != nil {
			resp.Fail(err)
			return resp
		}
		target = pinned
	}

	var (
		inconsistencies []domain.Inconsistency
		err             error
	)
	if req.ArchiveDir != "" {
		inconsistencies, err = i.InstallLocal(ctx, env, target, req.Extra, req.ArchiveDir, req.ConstraintsPath, req.Cache)
	} else {
		inconsistencies, err = i.InstallRemote(ctx, env, target, req.Extra, req.IndexURL, req.ConstraintsPath, req.Cache)
	}
	if inconsistencies != nil {
		resp.Inconsistencies = inconsistencies
	}
	if err != nil {
		resp.Fail(err)
		return resp
	}

	contents, err := i.List(ctx, env)
	if err != nil {
		resp.Fail(err)
		return resp
	}
	resp.Installed = append(resp.Installed, contents.Sorted()...)
	resp.Success = true
	return resp
}

// InstallLocal installs req from the wheels in archiveDir without resolving dependencies,
// then checks consistency. Broken dependencies are repaired with the package's
// constraints file when one can be found. The remaining inconsistencies are returned;
// they are not an error.
func (i *Installer) InstallLocal(
	ctx context.Context,
	env domain.Environment,
	req domain.Requirement,
	extra []string,
	archiveDir, constraintsPath string,
	cache *domain.ConstraintsCache,
) ([]domain.Inconsistency, error) {
	archive, err := FindArchive(archiveDir, req)
	if err != nil {
		return nil, err
	}
	if err := InspectArchive(archive, req.Name); err != nil {
		return nil, err
	}

	spec := archive + req.ExtrasSuffix()
	i.logger.Info("installing " + spec)
	if err := i.pip(ctx, env, "install", "--no-deps", spec); err != nil {
		return nil, installError(err, req)
	}
	if len(extra) > 0 {
		args := append([]string{"install", "--find-links", archiveDir}, extra...)
		if err := i.pip(ctx, env, args...); err != nil {
			return nil, installError(err, req)
		}
	}

	return i.repair(ctx, env, req, spec, constraintsPath, cache, "--find-links", archiveDir)
}

// InstallRemote installs req from the package index, letting pip resolve its dependencies,
// then checks consistency and repairs with constraints the same way InstallLocal does.
// An empty indexURL uses pip's configured index.
func (i *Installer) InstallRemote(
	ctx context.Context,
	env domain.Environment,
	req domain.Requirement,
	extra []string,
	indexURL, constraintsPath string,
	cache *domain.ConstraintsCache,
) ([]domain.Inconsistency, error) {
	indexArgs := indexArguments(indexURL)

	args := append([]string{"install", "--upgrade"}, indexArgs...)
	args = append(args, req.String())
	args = append(args, extra...)

	i.logger.Info("installing " + req.String())
	if err := i.pip(ctx, env, args...); err != nil {
		return nil, installError(err, req)
	}

	return i.repair(ctx, env, req, req.String(), constraintsPath, cache, indexArgs...)
}

// repair runs the consistency check and reinstalls spec under constraints when it fails.
func (i *Installer) repair(
	ctx context.Context,
	env domain.Environment,
	req domain.Requirement,
	spec, constraintsPath string,
	cache *domain.ConstraintsCache,
	sourceArgs ...string,
) ([]domain.Inconsistency, error) {
	inconsistencies, err := i.Check(ctx, env)
	if err != nil {
		return nil, err
	}
	if len(inconsistencies) == 0 {
		return nil, nil
	}

	constraints := FindConstraints(env, req, constraintsPath, cache)
	if constraints == "" {
		i.logger.Warn("no " + domain.ConstraintsFileName + " found for " + req.Name +
			", leaving broken dependencies: " + summarize(inconsistencies))
		return inconsistencies, nil
	}

	i.logger.Info("installing " + spec + " with constraints " + constraints)
	args := append([]string{"install", spec, "-c", constraints}, sourceArgs...)
	if err := i.pip(ctx, env, args...); err != nil {
		return inconsistencies, zerr.With(installError(err, req), "constraints", constraints)
	}

	remaining, err := i.Check(ctx, env)
	if err != nil {
		return nil, err
	}
	if len(remaining) > 0 {
		i.logger.Warn("broken dependencies remain after installing with constraints: " + summarize(remaining))
	}
	return remaining, nil
}

// List returns the packages installed in env.
func (i *Installer) List(ctx context.Context, env domain.Environment) (domain.Contents, error) {
	res, err := i.runner.Run(ctx, pipCommand(env, "list", "--format=json", "--disable-pip-version-check"))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrListPackagesFailed.Error())
	}

	var listed []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(res.Stdout, &listed); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrListPackagesFailed.Error()), "env", env.Path)
	}

	contents := make(domain.Contents, 0, len(listed))
	for _, p := range listed {
		contents = append(contents, domain.Package{Name: p.Name, Version: p.Version})
	}
	return contents, nil
}

// InstalledVersion returns the installed version of name in env, or nil when it is absent.
func (i *Installer) InstalledVersion(ctx context.Context, env domain.Environment, name string) (*domain.Version, error) {
	contents, err := i.List(ctx, env)
	if err != nil {
		return nil, err
	}
	env.Contents = contents
	return env.InstalledVersion(name)
}

// Check runs "pip check" and returns the broken dependencies it reports.
func (i *Installer) Check(ctx context.Context, env domain.Environment) ([]domain.Inconsistency, error) {
	res, err := i.runner.Run(ctx, pipCommand(env, "check", "--disable-pip-version-check"))
	if err == nil {
		return nil, nil
	}

	found := ParseCheckOutput(string(res.Stdout))
	if res.ExitCode != 1 || len(found) == 0 {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConsistencyCheckFailed.Error()), "env", env.Path)
	}
	return found, nil
}

func (i *Installer) pip(ctx context.Context, env domain.Environment, args ...string) error {
	_, err := i.runner.Run(ctx, pipCommand(env, args...))
	return err
}

func pipCommand(env domain.Environment, args ...string) domain.Command {
	return domain.Command{
		Name: env.Executable,
		Args: append([]string{"-m", "pip"}, args...),
	}
}

// indexArguments selects the index for pip. Development indexes serve pre-releases.
func indexArguments(indexURL string) []string {
	if indexURL == "" {
		return nil
	}
	args := []string{"--index-url", indexURL}
	if domain.IsDevelopmentIndex(indexURL) {
		args = append(args, "--pre")
	}
	return args
}

func installError(err error, req domain.Requirement) error {
	return zerr.With(zerr.Wrap(err, domain.ErrInstallFailed.Error()), "requirement", req.String())
}

func summarize(inconsistencies []domain.Inconsistency) string {
	lines := make([]string, 0, len(inconsistencies))
	for _, inc := range inconsistencies {
		lines = append(lines, inc.String())
	}
	return strings.Join(lines, "; ")
}
