// Package launcher spawns a child command with the caller's standard
// streams, waits for it and reports how it terminated.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// Streams are handed to the child as-is. When they are *os.File values the
// descriptors are inherited directly, with no copying in between.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the wrapper's own stdin, stdout and stderr.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

type Launcher struct {
	streams Streams
	logger  *slog.Logger
}

func New(streams Streams, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{streams: streams, logger: logger}
}

// Child is a started command that has not been waited for yet.
type Child struct {
	cmd       *exec.Cmd
	startedAt time.Time
	logger    *slog.Logger
}

// Start spawns command with args. The returned error is the spawn error
// unchanged so callers can pull an errno out of it.
func (l *Launcher) Start(command string, args []string) (*Child, error) {
	// #nosec G204 -- running an arbitrary caller-supplied command is the point
	cmd := exec.Command(command, args...)
	cmd.Stdin = l.streams.Stdin
	cmd.Stdout = l.streams.Stdout
	cmd.Stderr = l.streams.Stderr
	if err := cmd.Start(); err != nil {
		l.logger.Debug("spawn failed", "command", command, "error", err)
		return nil, err
	}
	l.logger.Debug("spawned", "command", command, "args", args, "pid", cmd.Process.Pid)
	return &Child{cmd: cmd, startedAt: time.Now(), logger: l.logger}, nil
}

func (c *Child) PID() int             { return c.cmd.Process.Pid }
func (c *Child) StartedAt() time.Time { return c.startedAt }

// Wait blocks until the child terminates. A non-zero exit or a signal is
// an Outcome, not an error; an error means the wait itself failed.
func (c *Child) Wait() (Outcome, error) {
	err := c.cmd.Wait()
	var ee *exec.ExitError
	if err != nil && !errors.As(err, &ee) {
		if c.cmd.ProcessState == nil {
			return Unknown(), fmt.Errorf("wait pid %d: %w", c.PID(), err)
		}
		// stream copy errors still leave a usable exit status
		c.logger.Debug("wait reported error", "pid", c.PID(), "error", err)
	}
	o := FromState(c.cmd.ProcessState)
	c.logger.Debug("child exited", "pid", c.PID(), "outcome", o.String(), "elapsed", time.Since(c.startedAt))
	return o, nil
}

// Launch is Start followed by Wait.
func (l *Launcher) Launch(command string, args []string) (Outcome, error) {
	child, err := l.Start(command, args)
	if err != nil {
		return Unknown(), err
	}
	return child.Wait()
}
