// Package finder locates running wrapper instances from the process table,
// which is what the uniqueness token exists for.
package finder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"syscall"
	"time"

	gopsproc "github.com/shirou/gopsutil/v4/process"

	"github.com/loykin/moby9098/internal/launcher"
)

// DefaultName is the wrapper program name matched in argv[0].
const DefaultName = "moby9098"

// Query selects instances. An empty Token matches any token.
type Query struct {
	Name  string
	Token string
}

// Instance is one running wrapper.
type Instance struct {
	PID       int32     `json:"pid"`
	Token     string    `json:"token"`
	Command   string    `json:"command"`
	Args      []string  `json:"args"`
	StartedAt time.Time `json:"started_at"`
}

// Match reports whether cmdline belongs to a wrapper selected by q and
// splits it into token, command and args.
func Match(cmdline []string, q Query) (Instance, bool) {
	name := q.Name
	if name == "" {
		name = DefaultName
	}
	if len(cmdline) < 3 || launcher.ProgramName(cmdline[0]) != name {
		return Instance{}, false
	}
	if q.Token != "" && cmdline[1] != q.Token {
		return Instance{}, false
	}
	return Instance{
		Token:   cmdline[1],
		Command: cmdline[2],
		Args:    append([]string(nil), cmdline[3:]...),
	}, true
}

// Find scans all processes. Processes that vanish or cannot be inspected
// while scanning are skipped. Results are ordered by PID.
func Find(ctx context.Context, q Query) ([]Instance, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	self := int32(os.Getpid())
	var out []Instance
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		cmdline, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			continue
		}
		inst, ok := Match(cmdline, q)
		if !ok {
			continue
		}
		inst.PID = p.Pid
		if ms, err := p.CreateTimeWithContext(ctx); err == nil && ms > 0 {
			inst.StartedAt = time.UnixMilli(ms)
		}
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// Signal sends sig to each instance and everything it launched. The
// wrapper forwards no signals, so its descendants are signalled first,
// deepest first, and the wrapper last; otherwise the wrapped command would
// be reparented and keep running. Processes that are already gone are not
// errors. The joined errors of the remaining failures are returned.
func Signal(ctx context.Context, insts []Instance, sig syscall.Signal) error {
	var errs []error
	for _, inst := range insts {
		p, err := gopsproc.NewProcessWithContext(ctx, inst.PID)
		if err != nil {
			if !gone(err) {
				errs = append(errs, err)
			}
			continue
		}
		for _, d := range descendants(ctx, p) {
			if err := d.SendSignalWithContext(ctx, sig); err != nil && !gone(err) {
				errs = append(errs, fmt.Errorf("pid %d (under %d): %w", d.Pid, inst.PID, err))
			}
		}
		if err := p.SendSignalWithContext(ctx, sig); err != nil && !gone(err) {
			errs = append(errs, fmt.Errorf("pid %d: %w", inst.PID, err))
		}
	}
	return errors.Join(errs...)
}

// descendants lists the process tree below p in post-order, so every
// process appears before its parent.
func descendants(ctx context.Context, p *gopsproc.Process) []*gopsproc.Process {
	children, err := p.ChildrenWithContext(ctx)
	if err != nil {
		return nil
	}
	var out []*gopsproc.Process
	for _, c := range children {
		out = append(out, descendants(ctx, c)...)
		out = append(out, c)
	}
	return out
}

func gone(err error) bool {
	return errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH) ||
		errors.Is(err, gopsproc.ErrorProcessNotRunning)
}
