package hooks_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/adapters/hooks"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func envWithModule(t *testing.T, module string, withMain bool) domain.Environment {
	t.Helper()
	root := t.TempDir()
	pkg := filepath.Join(root, "lib", "python3.12", "site-packages", module)
	require.NoError(t, os.MkdirAll(pkg, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "__init__.py"), nil, 0o600))
	if withMain {
		require.NoError(t, os.WriteFile(filepath.Join(pkg, "__main__.py"), nil, 0o600))
	}
	return domain.NewEnvironment(root)
}

func quietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	return log
}

func TestPostInstaller_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	env := envWithModule(t, "my_service", true)
	vassals := t.TempDir()
	ini := filepath.Join(vassals, "my-service.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[uwsgi]\n"), 0o600))
	t.Setenv("UPDATE_MY_SERVICE", "--migrate  --quiet")

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), domain.Command{
			Name: env.Executable,
			Args: []string{"-m", "my_service", "--migrate", "--quiet"},
		}).Return(domain.CommandResult{}, nil),
		runner.EXPECT().Run(gomock.Any(), domain.Command{
			Name: "touch",
			Args: []string{"--no-dereference", ini},
		}).Return(domain.CommandResult{}, nil),
	)

	p := hooks.NewPostInstaller(runner, quietLogger(ctrl), vassals)
	require.NoError(t, p.Run(t.Context(), env, domain.MustParseRequirement("my.service[web]~=1.0")))
}

func TestPostInstaller_Run_KeepsModuleCase(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	env := envWithModule(t, "Flask_Admin", true)
	vassals := t.TempDir()
	ini := filepath.Join(vassals, "Flask-Admin.ini")
	require.NoError(t, os.WriteFile(ini, []byte("[uwsgi]\n"), 0o600))
	t.Setenv("UPDATE_FLASK_ADMIN", "")

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), domain.Command{
			Name: env.Executable,
			Args: []string{"-m", "Flask_Admin"},
		}).Return(domain.CommandResult{}, nil),
		runner.EXPECT().Run(gomock.Any(), domain.Command{
			Name: "touch",
			Args: []string{"--no-dereference", ini},
		}).Return(domain.CommandResult{}, nil),
	)

	p := hooks.NewPostInstaller(runner, quietLogger(ctrl), vassals)
	require.NoError(t, p.Run(t.Context(), env, domain.MustParseRequirement("Flask-Admin==1.6.1")))
}

func TestPostInstaller_Run_NotAUwsgiApp(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	env := envWithModule(t, "my_service", true)
	t.Setenv("UPDATE_MY_SERVICE", "")

	runner.EXPECT().Run(gomock.Any(), domain.Command{
		Name: env.Executable,
		Args: []string{"-m", "my_service"},
	}).Return(domain.CommandResult{}, nil)

	p := hooks.NewPostInstaller(runner, quietLogger(ctrl), t.TempDir())
	require.NoError(t, p.Run(t.Context(), env, domain.MustParseRequirement("my-service")))
}

func TestPostInstaller_Run_NoMainModule(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	env := envWithModule(t, "my_service", false)

	p := hooks.NewPostInstaller(runner, quietLogger(ctrl), t.TempDir())
	require.NoError(t, p.Run(t.Context(), env, domain.MustParseRequirement("my-service")))
}

func TestPostInstaller_Run_ModuleFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mocks.NewMockCommandRunner(ctrl)
	env := envWithModule(t, "my_service", true)

	runner.EXPECT().Run(gomock.Any(), gomock.Any()).
		Return(domain.CommandResult{ExitCode: 2}, errors.New("exit status 2"))

	p := hooks.NewPostInstaller(runner, quietLogger(ctrl), t.TempDir())
	err := p.Run(t.Context(), env, domain.MustParseRequirement("my-service"))
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrPostInstallFailed.Error())
}
