package builtin

import (
	"io"

	"github.com/filecoin-project/go-state-types/exitcode"

	"github.com/vestlock/vesting-actors/actors/runtime"
)

///// Code shared by the actors in this module. /////

// TotalBasisPoints is the denominator for fractions expressed in basis points
// (1 bps = 0.01%). Integer-only arithmetic, no floating point.
const TotalBasisPoints = 10000

// DefaultHamtBitwidth is the branching factor for all HAMTs in actor state.
const DefaultHamtBitwidth = 5

// RequireSuccess propagates a failed send by aborting the current method with the same exit code.
func RequireSuccess(rt runtime.Runtime, e exitcode.ExitCode, msg string, args ...interface{}) {
	if !e.IsSuccess() {
		rt.Abortf(e, msg, args...)
	}
}

// RequireParam aborts with ErrIllegalArgument if predicate is not true.
func RequireParam(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalArgument, msg, args...)
	}
}

// RequireState aborts with ErrIllegalState if predicate is not true.
func RequireState(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalState, msg, args...)
	}
}

// Discard is a helper to avoid unmarshaling the return value of a send.
type Discard struct{}

func (d *Discard) MarshalCBOR(_ io.Writer) error {
	// serialization is a noop
	return nil
}

func (d *Discard) UnmarshalCBOR(_ io.Reader) error {
	// deserialization is a noop
	return nil
}

// RequireNoErr aborts if err is not nil, with an exit code and message.
// The exit code from an error wrapping an exit code takes precedence over the
// default code supplied here.
func RequireNoErr(rt runtime.Runtime, err error, defaultExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	if err != nil {
		code := exitcode.Unwrap(err, defaultExitCode)
		args = append(args, err)
		rt.Abortf(code, msg+": %s", args...)
	}
}
