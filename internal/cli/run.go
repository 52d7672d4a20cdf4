// Package cli turns the wrapper's argv into a launch and the launch into an
// exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/loykin/moby9098/internal/config"
	"github.com/loykin/moby9098/internal/history"
	"github.com/loykin/moby9098/internal/history/factory"
	"github.com/loykin/moby9098/internal/launcher"
	"github.com/loykin/moby9098/internal/logger"
	"github.com/loykin/moby9098/internal/metrics"
)

const (
	outcomeSpawnError = "spawn_error"
	outcomeWaitError  = "wait_error"
)

// Main runs the wrapper for argv and returns its exit code. Configuration
// is only read when a command is actually going to be launched. Malformed
// MOBY9098_* values are logged and ignored; only an explicit config file
// that cannot be used stops the launch.
func Main(argv []string, streams launcher.Streams) int {
	inv := Parse(argv)
	switch inv.Mode {
	case ModeHelp:
		PrintHelp(streams.Stdout)
		return 0
	case ModeUsage:
		PrintUsage(streams.Stderr)
		return 1
	}

	cfg, err := config.Load()
	var envErr *config.EnvError
	if err != nil && !errors.As(err, &envErr) {
		PrintDiagnostic(streams.Stderr, inv.Program, fmt.Errorf("config: %w", err))
		return 1
	}
	return run(inv, cfg, streams, err)
}

// Run launches inv.Command and maps its termination to an exit code.
// History and metrics never affect the returned code.
func Run(inv Invocation, cfg config.Config, streams launcher.Streams) int {
	return run(inv, cfg, streams, nil)
}

func run(inv Invocation, cfg config.Config, streams launcher.Streams, cfgWarning error) int {
	log, logCloser := logger.New(cfg.Log.LoggerConfig(), streams.Stderr)
	defer func() { _ = logCloser.Close() }()
	log = log.With("token", inv.Token, "command", inv.Command)
	if cfgWarning != nil {
		log.Warn("configuration fallback", "error", cfgWarning)
	}

	s := &session{
		inv:        inv,
		streams:    streams,
		log:        log,
		historyCfg: cfg.History,
		rec: history.Record{
			Token:   inv.Token,
			Command: inv.Command,
			Args:    inv.Args,
		},
	}
	if cfg.Metrics.Textfile != "" {
		s.metrics = metrics.NewRecorder()
	}
	code := s.launch()
	s.finish(cfg.Metrics.Textfile)
	return code
}

type session struct {
	inv        Invocation
	streams    launcher.Streams
	log        *slog.Logger
	historyCfg config.HistoryConfig
	historyOn  bool
	history    *history.Recorder
	metrics    *metrics.Recorder
	rec        history.Record
}

func (s *session) launch() int {
	child, err := launcher.New(s.streams, s.log).Start(s.inv.Command, s.inv.Args)
	if err != nil {
		return s.fail(outcomeSpawnError, err)
	}
	s.rec.PID = child.PID()
	s.rec.StartedAt = child.StartedAt()
	s.openHistory()
	s.history.Record(history.EventStart, s.rec)

	outcome, err := child.Wait()
	s.rec.EndedAt = time.Now()
	if err != nil {
		return s.fail(outcomeWaitError, err)
	}

	code := outcome.ExitCode()
	s.rec.Outcome = outcome.Kind.String()
	s.rec.Code = outcome.Code
	s.rec.Signal = outcome.Signal
	s.rec.ExitCode = code
	s.history.Record(history.EventExit, s.rec)
	s.metrics.ObserveExit(s.inv.Command, s.rec.Outcome, code, s.rec.Duration())
	s.log.Info("command finished", "pid", s.rec.PID, "outcome", outcome.String(), "exit_code", code)
	return code
}

// fail reports a command that could not be started or waited for.
func (s *session) fail(kind string, err error) int {
	PrintDiagnostic(s.streams.Stderr, s.inv.Program, err)
	code := launcher.SpawnExitCode(err)

	s.rec.Outcome = kind
	s.rec.ExitCode = code
	s.rec.Error = err.Error()
	s.openHistory()
	s.history.Record(history.EventExit, s.rec)
	s.metrics.ObserveSpawnFailure(s.inv.Command, code)
	s.log.Error("command failed", "stage", kind, "exit_code", code, "error", err)
	return code
}

func (s *session) finish(textfile string) {
	s.history.Close()
	if err := s.metrics.WriteTextfile(textfile); err != nil {
		s.log.Warn("metrics textfile write failed", "path", textfile, "error", err)
	}
}

// openHistory connects the history sink once, after the spawn attempt, so
// an unreachable backend never delays the child. Connecting is bounded by
// the history timeout.
func (s *session) openHistory() {
	if s.historyOn || s.historyCfg.DSN == "" {
		return
	}
	s.historyOn = true
	if s.historyCfg.Timeout <= 0 {
		s.historyCfg.Timeout = config.DefaultHistoryTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.historyCfg.Timeout)
	defer cancel()
	sink, err := factory.NewSinkFromDSN(ctx, s.historyCfg.DSN)
	if err != nil {
		s.log.Warn("history disabled", "error", err)
		return
	}
	s.history = history.NewRecorder(sink, s.historyCfg.Timeout, s.log)
}
