//go:build !unix

package launcher

import "os"

// Platforms without Unix wait statuses only report an exit code.
func fromState(ps *os.ProcessState) Outcome {
	if code := ps.ExitCode(); code >= 0 {
		return Exited(code)
	}
	return Unknown()
}
