package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/venvup/internal/adapters/cas"
	"go.trai.ch/venvup/internal/adapters/fs"
	"go.trai.ch/venvup/internal/adapters/manifest"
	"go.trai.ch/venvup/internal/adapters/telemetry"
	"go.trai.ch/venvup/internal/adapters/venv"
	"go.trai.ch/venvup/internal/app"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const packagesFile = "packages.json"

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

// fakeInstaller records the installed packages in a file inside the environment.
type fakeInstaller struct {
	mu              sync.Mutex
	requests        []domain.InstallRequest
	failWith        string
	inconsistencies []domain.Inconsistency
}

func (f *fakeInstaller) Install(_ context.Context, env domain.Environment, req domain.InstallRequest) domain.InstallResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

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
	version := "1.0.0"
	if req.Target != nil {
		version = req.Target.String()
	}
	pkgs[req.Requirement.Name] = version
	if err := savePackages(env.Path, pkgs); err != nil {
		resp.Fail(err)
		return resp
	}
	resp.Installed = append(resp.Installed, domain.Package{Name: req.Requirement.Name, Version: version})
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
	return f.inconsistencies, nil
}

func (f *fakeInstaller) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeWatcher replays a fixed list of events. before runs ahead of each one.
type fakeWatcher struct {
	events  []ports.WatchEvent
	before  func(ports.WatchEvent)
	started []string
	stopped bool
}

func (w *fakeWatcher) Start(_ context.Context, paths []string) error {
	w.started = paths
	return nil
}

func (w *fakeWatcher) Stop() error {
	w.stopped = true
	return nil
}

func (w *fakeWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for _, e := range w.events {
			if w.before != nil {
				w.before(e)
			}
			if !yield(e) {
				return
			}
		}
	}
}

type fixture struct {
	home      string
	wheels    string
	installer *fakeInstaller
	hooks     *mocks.MockPostInstaller
	watcher   *fakeWatcher
	stdout    *bytes.Buffer
	app       *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "").Return(domain.DefaultConfig(), nil).AnyTimes()

	f := &fixture{
		home:      t.TempDir(),
		wheels:    t.TempDir(),
		installer: &fakeInstaller{},
		hooks:     mocks.NewMockPostInstaller(ctrl),
		watcher:   &fakeWatcher{},
		stdout:    new(bytes.Buffer),
	}

	walker := fs.NewWalker()
	filesystem := fs.NewFileSystem(walker, fs.NewHasher(walker))
	f.app = app.New(
		loader,
		manifest.NewReader(),
		filesystem,
		venv.NewLocator(filesystem),
		mocks.NewMockCommandRunner(ctrl),
		f.installer,
		f.hooks,
		cas.NewStore(),
		telemetry.NewNoOpTracer(),
		log,
		func() (ports.Watcher, error) { return f.watcher, nil },
	).WithOutput(f.stdout)
	return f
}

func (f *fixture) options(requirements ...string) app.Options {
	enabled := true
	return app.Options{
		Requirements: requirements,
		EnvsHome:     f.home,
		ArchiveDir:   f.wheels,
		AutoUpgrade:  &enabled,
	}
}

// publish drops an archive for every version into the wheel directory.
func (f *fixture) publish(t *testing.T, name string, versions ...string) {
	t.Helper()
	for _, v := range versions {
		file := filepath.Join(f.wheels, domain.ArchiveName(name)+"-"+v+"-py3-none-any.whl")
		require.NoError(t, os.WriteFile(file, nil, 0o600))
	}
}

// existing lays out the active environment of requirement with its package at version.
func (f *fixture) existing(t *testing.T, requirement, version string) string {
	t.Helper()
	req := domain.MustParseRequirement(requirement)
	path := domain.Locate(f.home, req.String())
	require.NoError(t, savePackages(path, map[string]string{"pip": "24.0", req.Name: version}))
	return path
}

func (f *fixture) results(t *testing.T) []domain.UpgradeResult {
	t.Helper()
	var results []domain.UpgradeResult
	dec := json.NewDecoder(bytes.NewReader(f.stdout.Bytes()))
	for {
		var r domain.UpgradeResult
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			return results
		}
		require.NoError(t, err)
		results = append(results, r)
	}
}

func installedVersion(t *testing.T, dir, name string) string {
	t.Helper()
	pkgs, err := loadPackages(dir)
	require.NoError(t, err)
	return pkgs[name]
}
