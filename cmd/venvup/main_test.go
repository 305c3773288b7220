package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/venvup/internal/app"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"venvup": runMain,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			env.Setenv("NO_COLOR", "1")
			env.Setenv("CI", "true")
			return nil
		},
	})
}

func newComponents(t *testing.T, loader *mocks.MockConfigLoader, log *mocks.MockLogger) ComponentProvider {
	t.Helper()
	ctrl := gomock.NewController(t)
	application := app.New(
		loader,
		mocks.NewMockManifestReader(ctrl),
		mocks.NewMockFileSystem(ctrl),
		nil,
		mocks.NewMockCommandRunner(ctrl),
		mocks.NewMockInstaller(ctrl),
		mocks.NewMockPostInstaller(ctrl),
		mocks.NewMockHistoryStore(ctrl),
		nil,
		log,
		nil,
	)
	return func(context.Context) (*app.Components, func(), error) {
		return &app.Components{App: application, Logger: log}, func() {}, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := newComponents(t, mocks.NewMockConfigLoader(ctrl), mocks.NewMockLogger(ctrl))

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "venvup version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that a failing command is logged and exits with 1.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "").Return(domain.Config{}, errors.New("load failed"))

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Times(1)

	exitCode := run(context.Background(), []string{"upgrade", "pkg~=2.0.0"}, new(bytes.Buffer), new(bytes.Buffer), newComponents(t, loader, log))
	assert.Equal(t, 1, exitCode)
}
