// Package shell runs external processes such as the interpreter and the package manager.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxErrorOutput bounds the stderr excerpt attached to command errors.
const maxErrorOutput = 2048

// Runner implements ports.CommandRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner. Process output is mirrored to the logger at debug level.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Run executes the command and waits for it to complete.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) (domain.CommandResult, error) {
	if cmd.Name == "" {
		return domain.CommandResult{}, zerr.With(domain.ErrCommandFailed, "reason", "empty command")
	}

	var stdout, stderr bytes.Buffer
	stdoutLog := &logWriter{logger: r.logger}
	stderrLog := &logWriter{logger: r.logger}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // arguments are built by the adapters
	c.Dir = cmd.Dir
	c.Env = resolveEnvironment(os.Environ(), cmd.Env)
	c.Stdout = io.MultiWriter(&stdout, stdoutLog)
	c.Stderr = io.MultiWriter(&stderr, stderrLog)

	r.logger.Debug("running " + cmd.String())
	err := c.Run()
	_ = stdoutLog.Close()
	_ = stderrLog.Close()

	result := domain.CommandResult{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	wrapped := zerr.Wrap(err, domain.ErrCommandFailed.Error())
	wrapped = zerr.With(wrapped, "command", cmd.String())
	wrapped = zerr.With(wrapped, "exit_code", result.ExitCode)
	if excerpt := tail(stderr.String(), maxErrorOutput); excerpt != "" {
		wrapped = zerr.With(wrapped, "stderr", excerpt)
	}
	return result, wrapped
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}
	w.logger.Debug(msg)
}

// scrubbedEnvVars would make an environment's interpreter load modules from outside the environment.
var scrubbedEnvVars = map[string]struct{}{
	"PYTHONHOME":  {},
	"PYTHONPATH":  {},
	"VIRTUAL_ENV": {},
}

// resolveEnvironment merges the inherited environment with the command overrides.
// A PATH override is prepended to the inherited PATH.
func resolveEnvironment(sysEnv, cmdEnv []string) []string {
	envMap := make(map[string]string, len(sysEnv))
	order := make([]string, 0, len(sysEnv)+len(cmdEnv))

	set := func(k, v string) {
		if _, ok := envMap[k]; !ok {
			order = append(order, k)
		}
		envMap[k] = v
	}

	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, scrub := scrubbedEnvVars[k]; scrub {
			continue
		}
		set(k, v)
	}

	for _, entry := range cmdEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath := envMap["PATH"]; sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		set(k, v)
	}

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}
