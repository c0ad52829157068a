package builtin

import (
	"fmt"
)

// MessageAccumulator accumulates a sequence of messages (e.g. validation failures).
type MessageAccumulator struct {
	msgs []string
}

func (ma *MessageAccumulator) IsEmpty() bool {
	return len(ma.msgs) == 0
}

func (ma *MessageAccumulator) Messages() []string {
	return ma.msgs[:]
}

// Add adds messages to the accumulator.
func (ma *MessageAccumulator) Add(msgs ...string) {
	ma.msgs = append(ma.msgs, msgs...)
}

// Addf adds a message to the accumulator.
func (ma *MessageAccumulator) Addf(msg string, args ...interface{}) {
	ma.Add(fmt.Sprintf(msg, args...))
}

// AddAll adds messages from another accumulator to this one.
func (ma *MessageAccumulator) AddAll(msgs *MessageAccumulator) {
	ma.Add(msgs.msgs...)
}

// Require adds a message if predicate is false.
func (ma *MessageAccumulator) Require(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		ma.Add(fmt.Sprintf(msg, args...))
	}
}

// RequireNoError adds a message if err is non-nil.
func (ma *MessageAccumulator) RequireNoError(err error, msg string, args ...interface{}) {
	if err != nil {
		args = append(args, err)
		ma.Addf(msg+": %v", args...)
	}
}
