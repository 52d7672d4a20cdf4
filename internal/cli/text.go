package cli

import (
	"fmt"
	"io"
	"strings"
)

// Name is the wrapper's canonical name used in help and usage text.
const Name = "moby9098"

const helpText = `
NAME
    moby9098 - run a command under a uniquely identifiable process

SYNOPSIS
    moby9098 <unique> <command> [args...]
        Behave like ` + "`command [args...]`" + `, with <unique> added to this process's command line.
    moby9098 -h, --help
        Show this help and exit.

DESCRIPTION
    Gives a caller a way to find a process again without pidfiles or other cooperation
    from the program being run. <unique> can be any value; it is never passed on and
    only makes this process's command line distinct for tools such as ps, pgrep and
    moby9098-ps. This suits one-off tools better than daemons: a long grep started from
    a docker exec session keeps running after the session is gone, and telling several
    similar ones apart is otherwise guesswork.

    <command> is run with the remaining arguments. Standard input, output and error are
    shared with the command, and its exit code becomes this program's exit code. Nothing
    is daemonized, no signals are forwarded and the environment is left alone. The only
    departures from the wrapped command's behavior are:
    - The command cannot be started. A diagnostic line tagged with this program's name
      is printed on standard error and the exit code is the OS error number, or 127 when
      there is none.
    - The command is killed by a signal. The exit code is 127 + the signal number.
    - The command exits with neither an exit code nor a signal (impossible?). The exit
      code is 127.
    The first two cases can look exactly like the command itself printing a similar
    message and exiting with the same code.

ENVIRONMENT
    Everything below is optional and off by default. The command still sees all of it.
    MOBY9098_CONFIG            TOML file with the keys below in [log], [history], [metrics]
    MOBY9098_LOG_FILE          append JSON logs of each run to this file (rotated)
    MOBY9098_LOG_DEBUG         print debug logs on standard error
    MOBY9098_HISTORY_DSN       record runs in sqlite://, postgres:// or clickhouse://
    MOBY9098_METRICS_TEXTFILE  write Prometheus metrics for node_exporter's textfile collector
`

// PrintHelp writes the help text.
func PrintHelp(w io.Writer) {
	_, _ = fmt.Fprint(w, helpText+"\n")
}

// PrintUsage writes the short usage message.
func PrintUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintf(w, "  %s <unique> <command> [args...]\n", Name)
	_, _ = fmt.Fprintf(w, "  %s -h, --help\n", Name)
}

// PrintDiagnostic writes the single "[program] message" failure line.
// Multi-line error text is folded onto that line.
func PrintDiagnostic(w io.Writer, program string, err error) {
	_, _ = fmt.Fprintf(w, "[%s] %s\n", program, oneLine(err.Error()))
}

func oneLine(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
