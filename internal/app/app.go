// Package app implements the application layer for venvup.
package app

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"go.trai.ch/venvup/internal/adapters/archive"
	"go.trai.ch/venvup/internal/adapters/detector"
	"go.trai.ch/venvup/internal/adapters/index"
	"go.trai.ch/venvup/internal/adapters/venv"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/venvup/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// LogConfigurer is implemented by loggers that can be reconfigured for one run.
type LogConfigurer interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
	OpenFile(location string) error
	Close() error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	manifests    ports.ManifestReader
	fs           ports.FileSystem
	locator      *venv.Locator
	runner       ports.CommandRunner
	installer    ports.Installer
	hooks        ports.PostInstaller
	store        ports.HistoryStore
	tracer       ports.Tracer
	logger       ports.Logger
	watchers     ports.WatcherFactory
	stdout       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	manifests ports.ManifestReader,
	fs ports.FileSystem,
	locator *venv.Locator,
	runner ports.CommandRunner,
	installer ports.Installer,
	hooks ports.PostInstaller,
	store ports.HistoryStore,
	tracer ports.Tracer,
	log ports.Logger,
	watchers ports.WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		manifests:    manifests,
		fs:           fs,
		locator:      locator,
		runner:       runner,
		installer:    installer,
		hooks:        hooks,
		store:        store,
		tracer:       tracer,
		logger:       log,
		watchers:     watchers,
		stdout:       os.Stdout,
	}
}

// WithOutput redirects command results to w.
// This is primarily used for testing.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// Options holds the settings shared by every command.
// Nil flags leave the configured value untouched.
type Options struct {
	ConfigPath   string
	Manifests    []string
	Requirements []string
	EnvsHome     string
	IndexURL     string
	ArchiveDir   string
	AutoUpgrade  *bool
	BlueGreen    *bool
	PostInstall  *bool
	With         []string
	Constraints  string
	LogLocation  string
	LogFormat    string
	Verbose      bool
	Timeout      time.Duration
}

// session is the resolved state of one command.
type session struct {
	opts  Options
	cfg   domain.Config
	reqs  []domain.Requirement
	close func()
}

// start loads the configuration, applies the flags, configures logging and reads the requirements.
func (a *App) start(opts Options) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}

	cfg, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	cfg, err = overlay(cfg, opts)
	if err != nil {
		return nil, err
	}

	closeLog, err := a.configureLogging(cfg, opts.Verbose)
	if err != nil {
		return nil, err
	}

	reqs, err := a.requirements(opts)
	if err != nil {
		closeLog()
		return nil, err
	}

	return &session{opts: opts, cfg: cfg, reqs: reqs, close: closeLog}, nil
}

func overlay(cfg domain.Config, opts Options) (domain.Config, error) {
	if opts.EnvsHome != "" {
		cfg.EnvsHome = opts.EnvsHome
	}
	if opts.IndexURL != "" {
		cfg.IndexURL = opts.IndexURL
	}
	if opts.ArchiveDir != "" {
		cfg.ArchiveDir = opts.ArchiveDir
	}
	if opts.LogLocation != "" {
		cfg.LogLocation = opts.LogLocation
	}
	if opts.AutoUpgrade != nil {
		cfg.AutoUpgrade = *opts.AutoUpgrade
	}
	if opts.BlueGreen != nil {
		cfg.BlueGreen = *opts.BlueGreen
	}
	if opts.PostInstall != nil {
		cfg.PostInstall = *opts.PostInstall
	}
	if opts.LogFormat != "" {
		if !slices.Contains([]string{domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON}, opts.LogFormat) {
			return cfg, zerr.With(domain.ErrConfigParseFailed, "log_format", opts.LogFormat)
		}
		cfg.LogFormat = opts.LogFormat
	}
	return cfg, nil
}

// configureLogging applies the log settings and returns the function that undoes them.
func (a *App) configureLogging(cfg domain.Config, verbose bool) (func(), error) {
	lc, ok := a.logger.(LogConfigurer)
	if !ok {
		return func() {}, nil
	}
	lc.SetVerbose(verbose)

	if cfg.LogLocation == "" {
		lc.SetJSON(detector.ResolveFormat(detector.DetectEnvironment(), cfg.LogFormat) == detector.FormatJSON)
		return func() {}, nil
	}

	lc.SetJSON(cfg.LogFormat == domain.LogFormatJSON)
	if err := lc.OpenFile(cfg.LogLocation); err != nil {
		return nil, err
	}
	return func() { _ = lc.Close() }, nil
}

// requirements reads every manifest and parses every requirement flag.
// A batch naming the same requirement twice is rejected before any work starts.
func (a *App) requirements(opts Options) ([]domain.Requirement, error) {
	reqs := make([]domain.Requirement, 0, len(opts.Manifests)+len(opts.Requirements))
	for _, path := range opts.Manifests {
		req, err := a.manifests.Read(path)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	for _, s := range opts.Requirements {
		req, err := domain.ParseRequirement(s)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return nil, domain.ErrNoRequirements
	}

	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		key := req.String()
		if _, dup := seen[key]; dup {
			return nil, zerr.With(domain.ErrDuplicateRequirement, "requirement", key)
		}
		seen[key] = struct{}{}
	}
	return reqs, nil
}

// home returns the environments home or fails when none is configured.
func (s *session) home() (string, error) {
	if s.cfg.EnvsHome == "" {
		return "", domain.ErrMissingEnvsHome
	}
	return s.cfg.EnvsHome, nil
}

// request builds the orchestrator input for req.
func (s *session) request(req domain.Requirement) domain.UpgradeRequest {
	return domain.UpgradeRequest{
		Requirement:     req,
		EnvsHome:        s.cfg.EnvsHome,
		AutoUpgrade:     s.cfg.AutoUpgrade,
		BlueGreen:       s.cfg.BlueGreen,
		Extra:           s.opts.With,
		PostInstall:     s.cfg.PostInstall,
		ConstraintsPath: s.opts.Constraints,
	}
}

// withTimeout bounds ctx by the --timeout flag, when one is set.
func (s *session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// versionSource prefers the local archive directory over the package index.
func versionSource(cfg domain.Config) (ports.VersionSource, error) {
	switch {
	case cfg.ArchiveDir != "":
		return archive.NewSource(cfg.ArchiveDir), nil
	case cfg.IndexURL != "":
		return index.NewSource(cfg.IndexURL), nil
	default:
		return nil, domain.ErrMissingVersionSource
	}
}

// newOrchestrator wires the orchestrator for the resolved configuration.
func (a *App) newOrchestrator(s *session) (*orchestrator.Orchestrator, error) {
	if _, err := s.home(); err != nil {
		return nil, err
	}
	source, err := versionSource(s.cfg)
	if err != nil {
		return nil, err
	}

	builder := venv.NewBuilder(a.runner, a.fs, a.logger, s.cfg.Python, s.cfg.Baseline)
	return orchestrator.New(
		a.fs,
		builder,
		source,
		a.installer,
		a.hooks,
		a.store,
		a.tracer,
		a.logger,
		orchestrator.Options{ArchiveDir: s.cfg.ArchiveDir, IndexURL: s.cfg.IndexURL},
	), nil
}
