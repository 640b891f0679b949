package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = 2 * time.Second

// ProcessConfig describes how to run the inference executable.
type ProcessConfig struct {
	// Path of the inference executable, e.g. ollama.
	Path string
	// Args are passed unchanged on every call, e.g. run gemma3:1b.
	Args []string
	// Env is appended to the environment of the current process.
	Env []string
	// Timeout of a single call, zero for none.
	Timeout time.Duration
	// StrictExit treats a non-zero exit code as a failure, even if output was written.
	StrictExit bool
}

func NewProcess(log *slog.Logger, config ProcessConfig) *Process {
	return &Process{
		log:    log,
		config: config,
	}
}

// Process relays each message to a fresh inference process.
type Process struct {
	log    *slog.Logger
	config ProcessConfig
}

// Relay writes the message to the stdin of a new process and returns its
// trimmed stdout once it exits.
func (p *Process) Relay(ctx context.Context, message string) (r Result, err error) {
	ctx, cancel := withTimeout(ctx, p.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.config.Path, p.config.Args...)
	if len(p.config.Env) > 0 {
		cmd.Env = append(os.Environ(), p.config.Env...)
	}
	cmd.WaitDelay = waitDelay
	cmd.Stdin = strings.NewReader(message + "\n")
	stdout := new(bytes.Buffer)
	cmd.Stdout = stdout
	diagnostics := &diagnosticWriter{log: p.log.With(slog.String("path", p.config.Path))}
	cmd.Stderr = diagnostics

	start := time.Now()
	if err = cmd.Start(); err != nil {
		return r, fmt.Errorf("relay: failed to start %q: %w", p.config.Path, err)
	}
	log := p.log.With(slog.Int("pid", cmd.Process.Pid))
	log.Debug("inference process started", slog.String("path", p.config.Path), slog.Any("args", p.config.Args))

	err = cmd.Wait()
	diagnostics.Flush()
	r.Duration = time.Since(start)
	if cmd.ProcessState != nil {
		r.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		if ctx.Err() != nil {
			return r, fmt.Errorf("relay: inference process interrupted: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return r, fmt.Errorf("relay: failed to wait for inference process: %w", err)
		}
		if p.config.StrictExit {
			return r, fmt.Errorf("%w: exit code %d", ErrExitStatus, r.ExitCode)
		}
		log.Warn("inference process exited with non-zero status", slog.Int("exitCode", r.ExitCode))
	}
	log.Debug("inference process exited", slog.Int("exitCode", r.ExitCode), slog.Duration("duration", r.Duration))

	r.Reply = strings.TrimSpace(stdout.String())
	return r, nil
}

// maxDiagnosticLine caps buffered stderr without a line break.
const maxDiagnosticLine = 4096

// diagnosticWriter logs stderr of the inference process line by line.
// Text ended by a lone carriage return is a progress frame, e.g. a spinner,
// and is dropped.
type diagnosticWriter struct {
	log *slog.Logger
	buf []byte
}

func (w *diagnosticWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexAny(w.buf, "\r\n")
		if i < 0 {
			break
		}
		if w.buf[i] == '\n' {
			w.emit(w.buf[:i])
			w.buf = w.buf[i+1:]
			continue
		}
		if i+1 == len(w.buf) {
			// Wait for the next write to tell \r\n from a lone \r.
			break
		}
		if w.buf[i+1] == '\n' {
			w.emit(w.buf[:i])
			w.buf = w.buf[i+2:]
			continue
		}
		w.buf = w.buf[i+1:]
	}
	if len(w.buf) > maxDiagnosticLine {
		w.emit(w.buf)
		w.buf = w.buf[:0]
	}
	return len(p), nil
}

func (w *diagnosticWriter) Flush() {
	if bytes.HasSuffix(w.buf, []byte("\r")) {
		w.buf = nil
		return
	}
	w.emit(w.buf)
	w.buf = nil
}

func (w *diagnosticWriter) emit(line []byte) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}
	w.log.Info("inference diagnostic", slog.String("line", string(line)))
}
