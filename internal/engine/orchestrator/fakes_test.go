package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/adapters/cas"
	"go.trai.ch/venvup/internal/adapters/fs"
	"go.trai.ch/venvup/internal/adapters/telemetry"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.trai.ch/venvup/internal/engine/orchestrator"
	"go.uber.org/mock/gomock"
)

// packagesFile records the packages of a fake environment inside the environment itself,
// so copies and renames carry them along like real site-packages.
const packagesFile = "packages.json"

func writePackages(t *testing.T, dir string, pkgs map[string]string) {
	t.Helper()
	require.NoError(t, savePackages(dir, pkgs))
}

func savePackages(dir string, pkgs map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(domain.ExecutablePath(dir)), 0o750); err != nil {
		return err
	}
	data, err := json.Marshal(pkgs)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, packagesFile), data, 0o600)
}

func loadPackages(dir string) (map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, packagesFile))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	pkgs := map[string]string{}
	return pkgs, json.Unmarshal(data, &pkgs)
}

// writeScript installs a console script into dir that names the environment like pip's
// generated entry points and activate do.
func writeScript(t *testing.T, dir, name string) {
	t.Helper()
	body := "#!" + domain.ExecutablePath(dir) + "\nVIRTUAL_ENV=\"" + dir + "\"\n"
	file := filepath.Join(filepath.Dir(domain.ExecutablePath(dir)), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o750))
	require.NoError(t, os.WriteFile(file, []byte(body), 0o700)) //nolint:gosec // Scripts are executable
}

func readScript(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(domain.ExecutablePath(dir)), name))
	require.NoError(t, err)
	return string(data)
}

func installedVersion(t *testing.T, dir, name string) string {
	t.Helper()
	pkgs, err := loadPackages(dir)
	require.NoError(t, err)
	return pkgs[name]
}

// fakeInstaller installs the target version by editing packages.json.
type fakeInstaller struct {
	mu       sync.Mutex
	installs []domain.InstallRequest
	paths    []string
	// failWith makes every install fail with this message.
	failWith string
	// report overrides the version reported as installed.
	report string
}

func (f *fakeInstaller) Install(_ context.Context, env domain.Environment, req domain.InstallRequest) domain.InstallResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, req)
	f.paths = append(f.paths, env.Path)

	resp := domain.NewInstallResponse()
	if f.failWith != "" {
		resp.Fail(errors.New(f.failWith))
		return resp
	}

	pkgs, err := loadPackages(env.Path)
	if err != nil {
		resp.Fail(err)
		return resp
	}
	version := req.Target.String()
	if f.report != "" {
		version = f.report
	}
	pkgs[req.Requirement.Name] = version
	if err := savePackages(env.Path, pkgs); err != nil {
		resp.Fail(err)
		return resp
	}

	for name, v := range pkgs {
		resp.Installed = append(resp.Installed, domain.Package{Name: name, Version: v})
	}
	resp.Success = true
	return resp
}

func (f *fakeInstaller) List(_ context.Context, env domain.Environment) (domain.Contents, error) {
	pkgs, err := loadPackages(env.Path)
	if err != nil {
		return nil, err
	}
	var contents domain.Contents
	for name, v := range pkgs {
		contents = append(contents, domain.Package{Name: name, Version: v})
	}
	return contents.Sorted(), nil
}

func (f *fakeInstaller) Check(context.Context, domain.Environment) ([]domain.Inconsistency, error) {
	return nil, nil
}

func (f *fakeInstaller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.installs)
}

// fakeBuilder creates an environment holding only the baseline toolset.
type fakeBuilder struct {
	builds int
	err    error
}

func (f *fakeBuilder) Build(_ context.Context, path string) (domain.Environment, error) {
	f.builds++
	if f.err != nil {
		return domain.Environment{}, f.err
	}
	if _, err := os.Stat(path); err == nil {
		return domain.Environment{}, domain.ErrDirectoryExists
	}
	if err := savePackages(path, map[string]string{"pip": "24.0"}); err != nil {
		return domain.Environment{}, err
	}
	return domain.NewEnvironment(path), nil
}

// fakeSource serves a fixed version list.
type fakeSource struct {
	versions []string
	err      error
	calls    int
}

func (f *fakeSource) ListVersions(context.Context, string) (domain.VersionSet, error) {
	f.calls++
	if f.err != nil {
		return domain.VersionSet{}, f.err
	}
	var set domain.VersionSet
	for _, v := range f.versions {
		set.Add(domain.MustParseVersion(v))
	}
	return set, nil
}

// pingingSource is a fakeSource whose endpoint check fails.
type pingingSource struct {
	fakeSource
	pingErr error
}

func (p *pingingSource) Ping(context.Context) error {
	return p.pingErr
}

type fixture struct {
	home      string
	fs        *fs.FileSystem
	installer *fakeInstaller
	builder   *fakeBuilder
	source    ports.VersionSource
	store     *cas.Store
	hooks     ports.PostInstaller
	logger    *mocks.MockLogger
}

func newFixture(t *testing.T, versions ...string) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	walker := fs.NewWalker()
	return &fixture{
		home:      t.TempDir(),
		fs:        fs.NewFileSystem(walker, fs.NewHasher(walker)),
		installer: &fakeInstaller{},
		builder:   &fakeBuilder{},
		source:    &fakeSource{versions: versions},
		store:     cas.NewStore(),
		logger:    log,
	}
}

func (f *fixture) orchestrator() *orchestrator.Orchestrator {
	return orchestrator.New(
		f.fs,
		f.builder,
		f.source,
		f.installer,
		f.hooks,
		f.store,
		telemetry.NewNoOpTracer(),
		f.logger,
		orchestrator.Options{ArchiveDir: "/srv/wheels"},
	)
}

func (f *fixture) request(requirement string) domain.UpgradeRequest {
	return domain.UpgradeRequest{
		Requirement: domain.MustParseRequirement(requirement),
		EnvsHome:    f.home,
		AutoUpgrade: true,
	}
}

// existing lays out an active environment for req with pkg installed at version.
func (f *fixture) existing(t *testing.T, req domain.UpgradeRequest, version string) string {
	t.Helper()
	path := req.Path()
	writePackages(t, path, map[string]string{"pip": "24.0", req.Requirement.Name: version})
	return path
}

// homeEntries lists the names directly below the environments home.
func (f *fixture) homeEntries(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.home)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
