//go:build unix

package launcher

import (
	"os"
	"syscall"
)

func fromState(ps *os.ProcessState) Outcome {
	ws, ok := ps.Sys().(syscall.WaitStatus)
	if !ok {
		if code := ps.ExitCode(); code >= 0 {
			return Exited(code)
		}
		return Unknown()
	}
	switch {
	case ws.Exited():
		return Exited(ws.ExitStatus())
	case ws.Signaled():
		return Signaled(int(ws.Signal()))
	default:
		return Unknown()
	}
}
