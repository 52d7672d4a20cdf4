//go:build !unix

package finder

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
)

// ParseSignal only understands numbers on this platform.
func ParseSignal(s string) (syscall.Signal, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unknown signal %q", s)
	}
	return syscall.Signal(n), nil
}
