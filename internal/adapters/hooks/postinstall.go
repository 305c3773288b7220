// Package hooks runs the package specific post-install steps of an environment.
package hooks

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultVassalsDir is where uwsgi emperor looks for application configs.
const DefaultVassalsDir = "/etc/uwsgi/vassals"

// ArgsEnvPrefix prefixes the environment variable holding the arguments of a module,
// e.g. UPDATE_MY_SERVICE for my-service.
const ArgsEnvPrefix = "UPDATE_"

var mainModulePatterns = []string{
	"{lib,lib64}/python*/site-packages/%s/__main__.py",
	"Lib/site-packages/%s/__main__.py",
}

var _ ports.PostInstaller = (*PostInstaller)(nil)

// PostInstaller runs `python -m <module>` for packages that ship a __main__ module and
// asks uwsgi to reload the application afterwards.
type PostInstaller struct {
	runner     ports.CommandRunner
	logger     ports.Logger
	vassalsDir string
}

// NewPostInstaller creates a PostInstaller. An empty vassalsDir uses DefaultVassalsDir.
func NewPostInstaller(runner ports.CommandRunner, logger ports.Logger, vassalsDir string) *PostInstaller {
	if vassalsDir == "" {
		vassalsDir = DefaultVassalsDir
	}
	return &PostInstaller{
		runner:     runner,
		logger:     logger,
		vassalsDir: vassalsDir,
	}
}

// Run executes the post-install module of req inside env. Packages without a __main__ module
// are skipped.
func (p *PostInstaller) Run(ctx context.Context, env domain.Environment, req domain.Requirement) error {
	module := domain.ModuleName(req.Name)
	if !hasMainModule(env.Path, module) {
		p.logger.Info("no post-install module named " + module)
		return nil
	}

	args := append([]string{"-m", module}, strings.Fields(os.Getenv(ArgsEnvPrefix+strings.ToUpper(module)))...)
	p.logger.Info("running post-install module " + module)
	if _, err := p.runner.Run(ctx, domain.Command{Name: env.Executable, Args: args}); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPostInstallFailed.Error()), "module", module)
	}

	return p.reloadApp(ctx, strings.ReplaceAll(module, "_", "-"))
}

// reloadApp touches the uwsgi vassal config of the package, which makes uwsgi reload it.
func (p *PostInstaller) reloadApp(ctx context.Context, packageName string) error {
	ini := filepath.Join(p.vassalsDir, packageName+".ini")
	info, err := os.Stat(ini)
	if err != nil || !info.Mode().IsRegular() {
		p.logger.Debug(packageName + " is not a uwsgi app")
		return nil
	}

	p.logger.Info("reloading uwsgi app " + packageName)
	if _, err := p.runner.Run(ctx, domain.Command{Name: "touch", Args: []string{"--no-dereference", ini}}); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrPostInstallFailed.Error()), "vassal", ini)
	}
	return nil
}

func hasMainModule(root, module string) bool {
	fsys := os.DirFS(root)
	for _, pattern := range mainModulePatterns {
		matches, err := doublestar.Glob(fsys, strings.Replace(pattern, "%s", module, 1))
		if err == nil && len(matches) > 0 {
			return true
		}
	}
	return false
}
