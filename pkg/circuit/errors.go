package circuit

import (
	"errors"
	"fmt"
)

// Error kinds that abort a run. Match them with errors.Is.
var (
	ErrMalformedNetlist   = errors.New("malformed netlist")
	ErrResourceLimit      = errors.New("resource limit exceeded")
	ErrMalformedFaultList = errors.New("malformed fault list")
)

// NetlistError describes a fatal problem with the circuit or fault list
// input, with enough context to find the offending line.
type NetlistError struct {
	Kind error  // one of the Err* sentinels
	Line int    // 1-based source line, 0 when unknown
	Gate string // gate involved, if any
	Msg  string
}

func (e *NetlistError) Error() string {
	switch {
	case e.Line > 0 && e.Gate != "":
		return fmt.Sprintf("%v: line %d: gate %s: %s", e.Kind, e.Line, e.Gate, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("%v: line %d: %s", e.Kind, e.Line, e.Msg)
	case e.Gate != "":
		return fmt.Sprintf("%v: gate %s: %s", e.Kind, e.Gate, e.Msg)
	default:
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
}

func (e *NetlistError) Unwrap() error {
	return e.Kind
}

func newError(kind error, gate string, format string, args ...interface{}) *NetlistError {
	return &NetlistError{Kind: kind, Gate: gate, Msg: fmt.Sprintf(format, args...)}
}
