package runtime

import (
	"context"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	cid "github.com/ipfs/go-cid"
)

// Runtime is the interface to the host environment against which the vesting
// actor is written. The host supplies the clock, custody of the actor's state
// tree, message context, ownership resolution and cross-actor sends; the actor
// supplies deterministic state transitions.
type Runtime interface {
	// Information related to the current message being executed.
	Message

	// The current host time, in whole seconds, monotonically non-decreasing.
	// Read once at the start of an operation and used consistently throughout it.
	CurrEpoch() abi.ChainEpoch

	// Validates the caller against some predicate.
	// Exported actor methods must invoke at least one caller validation before returning.
	ValidateImmediateCallerAcceptAny()
	ValidateImmediateCallerIs(addrs ...addr.Address)
	ValidateImmediateCallerType(types ...cid.Cid)

	// Validates that the immediate caller currently holds administrative
	// capability over the receiver, per the host's ownership registry.
	// Ownership is a dynamic property of the deployed instance and may be
	// transferred out of band; it is re-resolved on every call and never
	// cached in actor state. Aborts with exitcode.ErrForbidden otherwise.
	ValidateImmediateCallerIsOwner()

	// The balance of the receiver.
	CurrentBalance() abi.TokenAmount

	// Initializes the state object.
	// This is only valid in a constructor function and when the state has not yet been initialized.
	StateCreate(obj cbor.Marshaler)

	// Loads a readonly copy of the state into the argument.
	StateReadonly(obj cbor.Unmarshaler)

	// Loads a mutable copy of the state into `obj`, passes it to `f`, and after
	// `f` completes puts the state object back to the store and sets it as the
	// actor's new state root. All mutations apply atomically: an abort inside
	// `f` leaves the prior state root in place.
	//
	// Sends and other side effects are illegal while inside the transaction.
	StateTransaction(obj cbor.Er, f func())

	// Retrieves and deserializes an object from the store into `o`. Returns whether successful.
	StoreGet(c cid.Cid, o cbor.Unmarshaler) bool

	// Serializes and stores an object, returning its CID.
	StorePut(x cbor.Marshaler) cid.Cid

	// Sends a message to another actor, returning the exit code and placing the
	// return value, if any, into `out`.
	Send(toAddr addr.Address, methodNum abi.MethodNum, params cbor.Marshaler, value abi.TokenAmount, out cbor.Er) exitcode.ExitCode

	// Halts execution upon an error from which the receiver cannot recover.
	// The caller will receive the exit code and an empty return value. State
	// changes made within this call will be rolled back.
	// This method does not return.
	// The message and args are for diagnostics and should be suitable for
	// passing to fmt.Errorf(msg, args...).
	Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{})

	// Delivers a fire-and-forget notification to the host's event sink.
	// No return contract: the actor must not depend on delivery.
	EmitEvent(name string, data cbor.Marshaler)

	// Message logging for the host's diagnostics.
	Log(level rtt.LogLevel, msg string, args ...interface{})

	// Provides a Go context for use by the HAMT, etc.
	// Actor code should not use this context directly.
	Context() context.Context
}

// Message contains information available to the actor about the executing message.
type Message interface {
	// The address of the immediate calling actor. Always an ID-address.
	Caller() addr.Address

	// The address of the actor receiving the message. Always an ID-address.
	Receiver() addr.Address

	// The value attached to the message being processed, implicitly added to
	// CurrentBalance() before method invocation.
	ValueReceived() abi.TokenAmount
}

// Invokee is implemented by actors, mapping method numbers to exported methods.
type Invokee interface {
	Exports() []interface{}
}
