package launcher

import "strings"

// ProgramName returns the final '/'-separated segment of an argv[0]. A
// trailing slash yields "".
func ProgramName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
