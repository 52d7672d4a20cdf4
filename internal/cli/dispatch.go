package cli

import "github.com/loykin/moby9098/internal/launcher"

// Mode is what an argv asks the wrapper to do.
type Mode int

const (
	ModeUsage Mode = iota
	ModeHelp
	ModeLaunch
)

// Invocation is a dispatched argv. Token, Command and Args are only set
// for ModeLaunch.
type Invocation struct {
	Mode    Mode
	Program string // argv[0] reduced to its last '/' segment
	Token   string
	Command string
	Args    []string
}

// Parse dispatches on the raw argument count. Nothing is interpreted as a
// flag except a lone -h/--help.
func Parse(argv []string) Invocation {
	inv := Invocation{Mode: ModeUsage}
	if len(argv) > 0 {
		inv.Program = launcher.ProgramName(argv[0])
	}
	switch {
	case len(argv) == 2 && (argv[1] == "-h" || argv[1] == "--help"):
		inv.Mode = ModeHelp
	case len(argv) < 3:
		inv.Mode = ModeUsage
	default:
		inv.Mode = ModeLaunch
		inv.Token = argv[1]
		inv.Command = argv[2]
		inv.Args = argv[3:]
	}
	return inv
}
