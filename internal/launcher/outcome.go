package launcher

import (
	"os"
	"strconv"
)

// FailureCode is the exit code used when no better code is available:
// a spawn error without an errno, or a child that reported neither an exit
// code nor a signal.
const FailureCode = 127

// Kind tags how a child process ended.
type Kind int

const (
	KindUnknown Kind = iota
	KindExited
	KindSignaled
)

func (k Kind) String() string {
	switch k {
	case KindExited:
		return "exited"
	case KindSignaled:
		return "signaled"
	default:
		return "unknown"
	}
}

// Outcome is the termination state of a child process.
// Code is only meaningful for KindExited and Signal only for KindSignaled.
type Outcome struct {
	Kind   Kind `json:"kind"`
	Code   int  `json:"code"`
	Signal int  `json:"signal"`
}

func Exited(code int) Outcome   { return Outcome{Kind: KindExited, Code: code} }
func Signaled(sig int) Outcome  { return Outcome{Kind: KindSignaled, Signal: sig} }
func Unknown() Outcome          { return Outcome{Kind: KindUnknown} }
func (o Outcome) Success() bool { return o.Kind == KindExited && o.Code == 0 }

// ExitCode maps the outcome to the wrapper's own exit code:
// the child's code, 127+signal, or 127.
func (o Outcome) ExitCode() int {
	switch o.Kind {
	case KindExited:
		return o.Code
	case KindSignaled:
		return FailureCode + o.Signal
	default:
		return FailureCode
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindExited:
		return "exit status " + strconv.Itoa(o.Code)
	case KindSignaled:
		return "signal " + strconv.Itoa(o.Signal)
	default:
		return "no exit status"
	}
}

// FromState classifies a finished process. A nil state is Unknown.
func FromState(ps *os.ProcessState) Outcome {
	if ps == nil {
		return Unknown()
	}
	return fromState(ps)
}
