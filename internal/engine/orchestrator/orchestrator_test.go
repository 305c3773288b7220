package orchestrator_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_Upgrade_SwitchesNewerVersion(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")
	writeScript(t, path, "gunicorn")

	result := f.orchestrator().Upgrade(t.Context(), req)

	require.Empty(t, result.Error)
	assert.Equal(t, domain.StatusUpgraded, result.Status)
	assert.Equal(t, domain.StateSwitched, result.State)
	assert.Equal(t, "2.0.0", result.FromVersion)
	assert.Equal(t, "2.0.1", result.ToVersion)
	assert.Equal(t, domain.ExecutablePath(path), result.Executable)
	assert.NotEmpty(t, result.RunID)
	assert.NotEmpty(t, result.Fingerprint)

	assert.Equal(t, "2.0.1", installedVersion(t, path, "pkg"))
	assert.ElementsMatch(t, []string{domain.StateDirName, "pkg~=2.0.0"}, f.homeEntries(t))
	assert.Equal(t, "#!"+domain.ExecutablePath(path)+"\nVIRTUAL_ENV=\""+path+"\"\n", readScript(t, path, "gunicorn"))

	require.Len(t, f.installer.installs, 1)
	install := f.installer.installs[0]
	assert.Equal(t, domain.ShadowPath(path), f.installer.paths[0])
	assert.Equal(t, "2.0.1", install.Target.String())
	assert.Equal(t, "/srv/wheels", install.ArchiveDir)
	assert.NotNil(t, install.Cache)

	history, err := f.store.Get(f.home, req.Requirement.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusUpgraded, history[0].Status)
}

func TestOrchestrator_Upgrade_AlreadyCurrent(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.1")

	o := f.orchestrator()
	for range 2 {
		result := o.Upgrade(t.Context(), req)
		assert.Equal(t, domain.StatusUnchanged, result.Status)
		assert.Equal(t, domain.StateCurrent, result.State)
		assert.Equal(t, domain.ExecutablePath(path), result.Executable)
		assert.Empty(t, result.Error)
	}

	assert.Zero(t, f.installer.count())
	// No history either: the unchanged path performs no writes.
	assert.Equal(t, []string{"pkg~=2.0.0"}, f.homeEntries(t))
}

func TestOrchestrator_Upgrade_AutoUpgradeDisabled(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	req.AutoUpgrade = false
	path := f.existing(t, req, "2.0.0")

	result := f.orchestrator().Upgrade(t.Context(), req)

	assert.Equal(t, domain.StatusUnchanged, result.Status)
	assert.Equal(t, domain.ExecutablePath(path), result.Executable)
	assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
	assert.Zero(t, f.source.(*fakeSource).calls)
	assert.Zero(t, f.installer.count())
	assert.Equal(t, []string{"pkg~=2.0.0"}, f.homeEntries(t))
}

func TestOrchestrator_Upgrade_BlueGreenRetainsShadow(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	req.BlueGreen = true
	path := f.existing(t, req, "2.0.0")
	shadow := domain.ShadowPath(path)
	writeScript(t, path, "gunicorn")

	result := f.orchestrator().Upgrade(t.Context(), req)

	require.Empty(t, result.Error)
	assert.Equal(t, domain.StatusUpgraded, result.Status)
	assert.Equal(t, domain.StateRetained, result.State)
	assert.Equal(t, shadow, result.ShadowPath)
	assert.Equal(t, domain.ExecutablePath(shadow), result.Executable)

	assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
	assert.Equal(t, "2.0.1", installedVersion(t, shadow, "pkg"))
	assert.NoDirExists(t, domain.BackupPath(path))

	t.Run("shadow scripts run the shadow interpreter", func(t *testing.T) {
		script := readScript(t, shadow, "gunicorn")
		assert.Contains(t, script, "#!"+domain.ExecutablePath(shadow)+"\n")
		assert.Contains(t, script, `VIRTUAL_ENV="`+shadow+`"`)
	})

	t.Run("active scripts are untouched", func(t *testing.T) {
		script := readScript(t, path, "gunicorn")
		assert.Contains(t, script, "#!"+domain.ExecutablePath(path)+"\n")
		assert.NotContains(t, script, shadow)
	})
}

func TestOrchestrator_Upgrade_FailedInstallRollsBack(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	f.installer.failWith = "pip exited with status 1"
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")

	result := f.orchestrator().Upgrade(t.Context(), req)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, domain.StateRolledBack, result.State)
	assert.Contains(t, result.Error, domain.ErrInstallFailed.Error())
	assert.Equal(t, domain.ExecutablePath(path), result.Executable)

	assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
	assert.NoDirExists(t, domain.ShadowPath(path))
	assert.NoDirExists(t, domain.BackupPath(path))

	history, err := f.store.Get(f.home, req.Requirement.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StatusError, history[0].Status)
}

func TestOrchestrator_Upgrade_ValidationRollsBack(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	f.installer.report = "2.0.0"
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")

	result := f.orchestrator().Upgrade(t.Context(), req)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, domain.StateRolledBack, result.State)
	assert.Contains(t, result.Error, domain.ErrValidationFailed.Error())
	assert.NoDirExists(t, domain.ShadowPath(path))
}

func TestOrchestrator_Upgrade_RemovesStaleShadow(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")
	stale := domain.ShadowPath(path)
	require.NoError(t, os.MkdirAll(stale, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "partial"), nil, 0o600))

	result := f.orchestrator().Upgrade(t.Context(), req)

	require.Equal(t, domain.StatusUpgraded, result.Status, result.Error)
	assert.NoFileExists(t, filepath.Join(path, "partial"))
	assert.NoDirExists(t, stale)
}

func TestOrchestrator_Upgrade_IndexFailureLeavesActive(t *testing.T) {
	f := newFixture(t)
	f.source = &fakeSource{err: errors.New("package index unreachable")}
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")

	result := f.orchestrator().Upgrade(t.Context(), req)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, domain.StateCurrent, result.State)
	assert.Equal(t, domain.ExecutablePath(path), result.Executable)
	assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
	assert.Zero(t, f.installer.count())
}

func TestOrchestrator_Upgrade_PingFailure(t *testing.T) {
	f := newFixture(t)
	f.source = &pingingSource{
		fakeSource: fakeSource{versions: []string{"2.0.1"}},
		pingErr:    errors.New("index returned 401"),
	}
	req := f.request("pkg~=2.0.0")
	f.existing(t, req, "2.0.0")

	result := f.orchestrator().Upgrade(t.Context(), req)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Contains(t, result.Error, "401")
	assert.Zero(t, f.source.(*pingingSource).calls)
}

func TestOrchestrator_Upgrade_CreatesMissingEnvironment(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1", "2.1.0")
	req := f.request("pkg~=2.0.0")
	req.AutoUpgrade = false
	path := req.Path()

	result := f.orchestrator().Upgrade(t.Context(), req)

	require.Empty(t, result.Error)
	assert.Equal(t, domain.StatusUpgraded, result.Status)
	assert.Equal(t, domain.StateSwitched, result.State)
	assert.Empty(t, result.FromVersion)
	assert.Equal(t, "2.0.1", result.ToVersion)
	assert.Equal(t, 1, f.builder.builds)
	assert.Equal(t, []string{path}, f.installer.paths)
	assert.Equal(t, "2.0.1", installedVersion(t, path, "pkg"))
	assert.NoDirExists(t, domain.ShadowPath(path))
}

func TestOrchestrator_Upgrade_CreateFailures(t *testing.T) {
	t.Run("no compatible version", func(t *testing.T) {
		f := newFixture(t, "1.0.0")
		req := f.request("pkg~=2.0.0")

		result := f.orchestrator().Upgrade(t.Context(), req)

		assert.Equal(t, domain.StatusError, result.Status)
		assert.Contains(t, result.Error, domain.ErrNoCompatibleVersion.Error())
		assert.Zero(t, f.builder.builds)
		assert.NoDirExists(t, req.Path())
	})

	t.Run("build fails", func(t *testing.T) {
		f := newFixture(t, "2.0.0")
		f.builder.err = domain.ErrCreationFailed
		req := f.request("pkg~=2.0.0")

		result := f.orchestrator().Upgrade(t.Context(), req)

		assert.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.StateAbsent, result.State)
		assert.Contains(t, result.Error, domain.ErrCreationFailed.Error())
	})

	t.Run("install fails", func(t *testing.T) {
		f := newFixture(t, "2.0.0")
		f.installer.failWith = "archive not found"
		req := f.request("pkg~=2.0.0")

		result := f.orchestrator().Upgrade(t.Context(), req)

		assert.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.StateFailed, result.State)
		assert.Contains(t, result.Error, "archive not found")
		assert.NoDirExists(t, req.Path())
	})
}

func TestOrchestrator_Upgrade_Recovery(t *testing.T) {
	t.Run("restores backup of interrupted switch", func(t *testing.T) {
		f := newFixture(t, "2.0.0")
		req := f.request("pkg~=2.0.0")
		req.AutoUpgrade = false
		path := req.Path()
		writePackages(t, domain.BackupPath(path), map[string]string{"pkg": "2.0.0"})

		result := f.orchestrator().Upgrade(t.Context(), req)

		assert.Equal(t, domain.StatusUnchanged, result.Status, result.Error)
		assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
		assert.NoDirExists(t, domain.BackupPath(path))
		assert.Zero(t, f.builder.builds)
	})

	t.Run("removes backup of completed switch", func(t *testing.T) {
		f := newFixture(t, "2.0.1")
		req := f.request("pkg~=2.0.0")
		path := f.existing(t, req, "2.0.1")
		writePackages(t, domain.BackupPath(path), map[string]string{"pkg": "2.0.0"})

		result := f.orchestrator().Upgrade(t.Context(), req)

		assert.Equal(t, domain.StatusUnchanged, result.Status, result.Error)
		assert.Equal(t, "2.0.1", installedVersion(t, path, "pkg"))
		assert.NoDirExists(t, domain.BackupPath(path))
	})
}

func TestOrchestrator_Upgrade_PostInstall(t *testing.T) {
	t.Run("runs after switch", func(t *testing.T) {
		f := newFixture(t, "2.0.0", "2.0.1")
		hooks := mocks.NewMockPostInstaller(gomock.NewController(t))
		f.hooks = hooks
		req := f.request("pkg~=2.0.0")
		req.PostInstall = true
		path := f.existing(t, req, "2.0.0")

		hooks.EXPECT().Run(gomock.Any(), domain.NewEnvironment(path), req.Requirement).Return(nil)

		result := f.orchestrator().Upgrade(t.Context(), req)
		assert.Equal(t, domain.StatusUpgraded, result.Status, result.Error)
	})

	t.Run("skipped for retained shadow", func(t *testing.T) {
		f := newFixture(t, "2.0.0", "2.0.1")
		f.hooks = mocks.NewMockPostInstaller(gomock.NewController(t))
		req := f.request("pkg~=2.0.0")
		req.PostInstall = true
		req.BlueGreen = true
		f.existing(t, req, "2.0.0")

		result := f.orchestrator().Upgrade(t.Context(), req)
		assert.Equal(t, domain.StatusUpgraded, result.Status, result.Error)
	})

	t.Run("failure is reported", func(t *testing.T) {
		f := newFixture(t, "2.0.0", "2.0.1")
		hooks := mocks.NewMockPostInstaller(gomock.NewController(t))
		f.hooks = hooks
		req := f.request("pkg~=2.0.0")
		req.PostInstall = true
		path := f.existing(t, req, "2.0.0")

		hooks.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrPostInstallFailed)

		result := f.orchestrator().Upgrade(t.Context(), req)
		assert.Equal(t, domain.StatusError, result.Status)
		assert.Equal(t, domain.StateSwitched, result.State)
		assert.Equal(t, "2.0.1", installedVersion(t, path, "pkg"))
	})
}

func TestOrchestrator_Promote(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1")
	req := f.request("pkg~=2.0.0")
	req.BlueGreen = true
	path := f.existing(t, req, "2.0.0")
	writeScript(t, path, "gunicorn")
	o := f.orchestrator()

	staged := o.Upgrade(t.Context(), req)
	require.Equal(t, domain.StateRetained, staged.State, staged.Error)

	result := o.Promote(t.Context(), req)

	require.Empty(t, result.Error)
	assert.Equal(t, domain.StatusUpgraded, result.Status)
	assert.Equal(t, domain.StateSwitched, result.State)
	assert.Equal(t, "2.0.0", result.FromVersion)
	assert.Equal(t, "2.0.1", result.ToVersion)
	assert.Equal(t, domain.ExecutablePath(path), result.Executable)
	assert.Equal(t, "2.0.1", installedVersion(t, path, "pkg"))
	assert.NoDirExists(t, domain.ShadowPath(path))
	assert.NoDirExists(t, domain.BackupPath(path))

	script := readScript(t, path, "gunicorn")
	assert.Contains(t, script, "#!"+domain.ExecutablePath(path)+"\n")
	assert.NotContains(t, script, domain.ShadowPath(path))
}

func TestOrchestrator_Promote_NoShadow(t *testing.T) {
	f := newFixture(t)
	req := f.request("pkg~=2.0.0")
	path := f.existing(t, req, "2.0.0")

	result := f.orchestrator().Promote(t.Context(), req)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Contains(t, result.Error, domain.ErrNoShadowEnvironment.Error())
	assert.Equal(t, "2.0.0", installedVersion(t, path, "pkg"))
}

func TestOrchestrator_AvailableUpgrade(t *testing.T) {
	f := newFixture(t, "2.0.0", "2.0.1", "2.1.0")
	req := f.request("pkg~=2.0.0")
	o := f.orchestrator()

	v, err := o.AvailableUpgrade(t.Context(), req)
	require.NoError(t, err)
	assert.Nil(t, v, "missing environment")

	f.existing(t, req, "2.0.0")
	v, err = o.AvailableUpgrade(t.Context(), req)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "2.0.1", v.String())
	assert.Zero(t, f.installer.count())

	f.existing(t, req, "2.0.1")
	v, err = o.AvailableUpgrade(t.Context(), req)
	require.NoError(t, err)
	assert.Nil(t, v)
}
