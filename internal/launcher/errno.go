package launcher

import (
	"errors"
	"os/exec"
	"syscall"
)

// SpawnExitCode returns the raw OS error number carried by err, or
// FailureCode when the error has none. A bare command name missing from
// PATH counts as ENOENT, which is what execvp reports for it.
func SpawnExitCode(err error) int {
	if errors.Is(err, exec.ErrNotFound) {
		return int(syscall.ENOENT)
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return FailureCode
}
