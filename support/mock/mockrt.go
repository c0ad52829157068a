package mock

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"runtime/debug"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/cbor"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"
	cid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/vestlock/vesting-actors/actors/runtime"
)

// A mock runtime for unit testing of actors in isolation.
// The mock allows direct specification of the runtime context as observable by an actor, supports
// the storage interface, and mocks out side-effect-inducing calls.
type Runtime struct {
	// Execution context
	ctx           context.Context
	epoch         abi.ChainEpoch
	receiver      addr.Address
	caller        addr.Address
	callerType    cid.Cid
	owner         addr.Address
	valueReceived abi.TokenAmount
	actorCodeCIDs map[addr.Address]cid.Cid

	// Actor state
	state   cid.Cid
	balance abi.TokenAmount

	// VM implementation
	inCall        bool
	store         map[cid.Cid][]byte
	inTransaction bool

	// Logs collected from the actor
	logs []string

	// Expectations
	t                         testing.TB
	expectValidateCallerAny   bool
	expectValidateCallerAddr  []addr.Address
	expectValidateCallerType  []cid.Cid
	expectValidateCallerOwner bool
	expectSends               []*expectedMessage
	expectEvents              []*expectedEvent
}

type expectedMessage struct {
	// expectedMessage values
	to     addr.Address
	method abi.MethodNum
	params cbor.Marshaler
	value  abi.TokenAmount

	// returns from applying expectedMessage
	sendReturn cbor.Marshaler
	exitCode   exitcode.ExitCode
}

func (m *expectedMessage) Equal(to addr.Address, method abi.MethodNum, params cbor.Marshaler, value abi.TokenAmount) bool {
	return m.to == to && m.method == method && m.value.Equals(value) && reflect.DeepEqual(m.params, params)
}

func (m *expectedMessage) String() string {
	return fmt.Sprintf("to: %v method: %v value: %v params: %v sendReturn: %v exitCode: %v", m.to, m.method, m.value, m.params, m.sendReturn, m.exitCode)
}

type expectedEvent struct {
	name string
	data cbor.Marshaler
}

func (e *expectedEvent) String() string {
	return fmt.Sprintf("name: %v data: %v", e.name, e.data)
}

var _ runtime.Runtime = &Runtime{}
var typeOfRuntimeInterface = reflect.TypeOf((*runtime.Runtime)(nil)).Elem()
var typeOfCborUnmarshaler = reflect.TypeOf((*cbor.Unmarshaler)(nil)).Elem()
var typeOfCborMarshaler = reflect.TypeOf((*cbor.Marshaler)(nil)).Elem()

var cidBuilder = cid.V1Builder{
	Codec:    cid.DagCBOR,
	MhType:   mh.SHA2_256,
	MhLength: 0, // default
}

///// Implementation of the runtime API /////

func (rt *Runtime) CurrEpoch() abi.ChainEpoch {
	rt.requireInCall()
	return rt.epoch
}

func (rt *Runtime) ValidateImmediateCallerAcceptAny() {
	rt.requireInCall()
	if !rt.expectValidateCallerAny {
		rt.failTest("unexpected validate-caller-any")
	}
	rt.expectValidateCallerAny = false
}

func (rt *Runtime) ValidateImmediateCallerIs(addrs ...addr.Address) {
	rt.requireInCall()
	rt.checkArgument(len(addrs) > 0, "addrs must be non-empty")
	// Check and clear expectations.
	if len(rt.expectValidateCallerAddr) == 0 {
		rt.failTest("unexpected validate caller addrs")
		return
	}
	if !reflect.DeepEqual(rt.expectValidateCallerAddr, addrs) {
		rt.failTest("unexpected validate caller addrs %v, expected %v", addrs, rt.expectValidateCallerAddr)
		return
	}
	defer func() {
		rt.expectValidateCallerAddr = nil
	}()

	// Implement method.
	for _, expected := range addrs {
		if rt.caller == expected {
			return
		}
	}
	rt.Abortf(exitcode.ErrForbidden, "caller address %v forbidden, allowed: %v", rt.caller, addrs)
}

func (rt *Runtime) ValidateImmediateCallerType(types ...cid.Cid) {
	rt.requireInCall()
	rt.checkArgument(len(types) > 0, "types must be non-empty")

	// Check and clear expectations.
	if len(rt.expectValidateCallerType) == 0 {
		rt.failTest("unexpected validate caller code")
	}
	if !reflect.DeepEqual(rt.expectValidateCallerType, types) {
		rt.failTest("unexpected validate caller code %v, expected %v", types, rt.expectValidateCallerType)
	}
	defer func() {
		rt.expectValidateCallerType = nil
	}()

	// Implement method.
	for _, expected := range types {
		if rt.callerType.Equals(expected) {
			return
		}
	}
	rt.Abortf(exitcode.ErrForbidden, "caller type %v forbidden, allowed: %v", rt.callerType, types)
}

func (rt *Runtime) ValidateImmediateCallerIsOwner() {
	rt.requireInCall()
	// Check and clear expectations.
	if !rt.expectValidateCallerOwner {
		rt.failTest("unexpected validate-caller-owner")
	}
	rt.expectValidateCallerOwner = false

	// Implement method.
	if rt.caller != rt.owner {
		rt.Abortf(exitcode.ErrForbidden, "caller %v is not the owner %v", rt.caller, rt.owner)
	}
}

func (rt *Runtime) CurrentBalance() abi.TokenAmount {
	rt.requireInCall()
	return rt.balance
}

func (rt *Runtime) Send(toAddr addr.Address, methodNum abi.MethodNum, params cbor.Marshaler, value abi.TokenAmount, out cbor.Er) exitcode.ExitCode {
	rt.requireInCall()
	if rt.inTransaction {
		rt.Abortf(exitcode.SysErrorIllegalActor, "side-effect within transaction")
	}
	if len(rt.expectSends) == 0 {
		rt.failTestNow("unexpected send to: %v method: %v, value: %v, params: %v", toAddr, methodNum, value, params)
	}
	expectedMsg := rt.expectSends[0]

	if !expectedMsg.Equal(toAddr, methodNum, params, value) {
		rt.failTest("send does not match expectation.\n"+
			"Call     - to: %v method: %v value: %v params: %v\n"+
			"Expected - %v", toAddr, methodNum, value, params, rt.expectSends[0])
	}

	if value.GreaterThan(rt.balance) {
		rt.Abortf(exitcode.SysErrSenderStateInvalid, "cannot send value: %v exceeds balance: %v", value, rt.balance)
	}

	// Pop the expectedMessage from the queue and modify the mockrt balance to reflect the send.
	defer func() {
		rt.expectSends = rt.expectSends[1:]
		rt.balance = big.Sub(rt.balance, value)
	}()

	if expectedMsg.sendReturn != nil {
		b := bytes.Buffer{}
		if err := expectedMsg.sendReturn.MarshalCBOR(&b); err != nil {
			rt.failTestNow("error serializing expected send return: %v", err)
		}
		if err := out.UnmarshalCBOR(&b); err != nil {
			rt.failTestNow("error deserializing send return into output parameter: %v", err)
		}
	}
	return expectedMsg.exitCode
}

func (rt *Runtime) Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	rt.requireInCall()
	rt.t.Logf("Mock Runtime Abort ExitCode: %v Reason: %s", errExitCode, fmt.Sprintf(msg, args...))
	panic(abort{errExitCode, fmt.Sprintf(msg, args...)})
}

func (rt *Runtime) EmitEvent(name string, data cbor.Marshaler) {
	rt.requireInCall()
	if rt.inTransaction {
		rt.Abortf(exitcode.SysErrorIllegalActor, "side-effect within transaction")
	}
	if len(rt.expectEvents) == 0 {
		rt.failTestNow("unexpected event %v with data %v", name, data)
	}
	expected := rt.expectEvents[0]
	if name != expected.name || !reflect.DeepEqual(data, expected.data) {
		rt.failTest("event does not match expectation.\n"+
			"Call     - name: %v data: %v\n"+
			"Expected - %v", name, data, expected)
	}
	rt.expectEvents = rt.expectEvents[1:]
}

func (rt *Runtime) Log(level rtt.LogLevel, msg string, args ...interface{}) {
	rt.logs = append(rt.logs, fmt.Sprintf(msg, args...))
}

func (rt *Runtime) Context() context.Context {
	// requireInCall omitted because it makes using this mock runtime as a store awkward.
	return rt.ctx
}

func (rt *Runtime) checkArgument(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.SysErrorIllegalArgument, msg, args...)
	}
}

///// Store implementation /////

func (rt *Runtime) StoreGet(c cid.Cid, o cbor.Unmarshaler) bool {
	// requireInCall omitted because it makes using this mock runtime as a store awkward.
	data, found := rt.store[c]
	if found {
		err := o.UnmarshalCBOR(bytes.NewReader(data))
		if err != nil {
			rt.Abortf(exitcode.ErrSerialization, err.Error())
		}
	}
	return found
}

func (rt *Runtime) StorePut(o cbor.Marshaler) cid.Cid {
	// requireInCall omitted because it makes using this mock runtime as a store awkward.
	r := bytes.Buffer{}
	err := o.MarshalCBOR(&r)
	if err != nil {
		rt.Abortf(exitcode.ErrSerialization, err.Error())
	}
	data := r.Bytes()
	key, err := cidBuilder.Sum(data)
	if err != nil {
		rt.Abortf(exitcode.ErrSerialization, err.Error())
	}
	rt.store[key] = data
	return key
}

///// Message implementation /////

func (rt *Runtime) Caller() addr.Address {
	return rt.caller
}

func (rt *Runtime) Receiver() addr.Address {
	return rt.receiver
}

func (rt *Runtime) ValueReceived() abi.TokenAmount {
	return rt.valueReceived
}

///// State handle implementation /////

func (rt *Runtime) StateCreate(obj cbor.Marshaler) {
	if rt.state.Defined() {
		rt.Abortf(exitcode.SysErrorIllegalActor, "state already constructed")
	}
	rt.state = rt.StorePut(obj)
}

func (rt *Runtime) StateReadonly(st cbor.Unmarshaler) {
	found := rt.StoreGet(rt.state, st)
	if !found {
		rt.Abortf(exitcode.SysErrorIllegalArgument, "actor state not found: %v", rt.state)
	}
}

func (rt *Runtime) StateTransaction(st cbor.Er, f func()) {
	if rt.inTransaction {
		rt.Abortf(exitcode.SysErrorIllegalActor, "nested transaction")
	}
	rt.StateReadonly(st)
	rt.inTransaction = true
	defer func() { rt.inTransaction = false }()
	f()
	rt.state = rt.StorePut(st)
}

type abort struct {
	code exitcode.ExitCode
	msg  string
}

func (a abort) String() string {
	return fmt.Sprintf("abort(%v): %s", a.code, a.msg)
}

///// Inspection facilities /////

func (rt *Runtime) StateRoot() cid.Cid {
	return rt.state
}

func (rt *Runtime) GetState(o cbor.Unmarshaler) {
	data, found := rt.store[rt.state]
	if !found {
		rt.failTestNow("can't find state at root %v", rt.state) // something internal is messed up
	}
	err := o.UnmarshalCBOR(bytes.NewReader(data))
	if err != nil {
		rt.failTestNow("error loading state: %v", err)
	}
}

func (rt *Runtime) GetBalance() abi.TokenAmount {
	return rt.balance
}

func (rt *Runtime) GetEpoch() abi.ChainEpoch {
	return rt.epoch
}

func (rt *Runtime) GetLogs() []string {
	return rt.logs[:]
}

///// Mocking facilities /////

func (rt *Runtime) SetCaller(address addr.Address, actorType cid.Cid) {
	rt.caller = address
	rt.callerType = actorType
	rt.actorCodeCIDs[address] = actorType
}

func (rt *Runtime) SetOwner(address addr.Address) {
	rt.owner = address
}

func (rt *Runtime) SetBalance(amt abi.TokenAmount) {
	rt.balance = amt
}

func (rt *Runtime) SetReceived(amt abi.TokenAmount) {
	rt.valueReceived = amt
}

func (rt *Runtime) SetEpoch(epoch abi.ChainEpoch) {
	rt.epoch = epoch
}

func (rt *Runtime) ExpectValidateCallerAny() {
	rt.expectValidateCallerAny = true
}

func (rt *Runtime) ExpectValidateCallerAddr(addrs ...addr.Address) {
	rt.require(len(addrs) > 0, "addrs must be non-empty")
	rt.expectValidateCallerAddr = addrs[:]
}

func (rt *Runtime) ExpectValidateCallerType(types ...cid.Cid) {
	rt.require(len(types) > 0, "types must be non-empty")
	rt.expectValidateCallerType = types[:]
}

func (rt *Runtime) ExpectValidateCallerOwner() {
	rt.expectValidateCallerOwner = true
}

func (rt *Runtime) ExpectSend(toAddr addr.Address, methodNum abi.MethodNum, params cbor.Marshaler, value abi.TokenAmount, ret cbor.Marshaler, exitCode exitcode.ExitCode) {
	// append to the send queue
	rt.expectSends = append(rt.expectSends, &expectedMessage{
		to:         toAddr,
		method:     methodNum,
		params:     params,
		value:      value,
		sendReturn: ret,
		exitCode:   exitCode,
	})
}

func (rt *Runtime) ExpectEvent(name string, data cbor.Marshaler) {
	// append to the event queue
	rt.expectEvents = append(rt.expectEvents, &expectedEvent{
		name: name,
		data: data,
	})
}

// Verifies that expected calls were received, and resets all expectations.
func (rt *Runtime) Verify() {
	rt.t.Helper()
	if rt.expectValidateCallerAny {
		rt.failTest("expected ValidateCallerAny, not received")
	}
	if len(rt.expectValidateCallerAddr) > 0 {
		rt.failTest("expected ValidateCallerAddr %v, not received", rt.expectValidateCallerAddr)
	}
	if len(rt.expectValidateCallerType) > 0 {
		rt.failTest("expected ValidateCallerType %v, not received", rt.expectValidateCallerType)
	}
	if rt.expectValidateCallerOwner {
		rt.failTest("expected ValidateCallerOwner, not received")
	}
	if len(rt.expectSends) > 0 {
		rt.failTest("expected all messages to be sent, unsent messages %v", rt.expectSends)
	}
	if len(rt.expectEvents) > 0 {
		rt.failTest("expected all events to be emitted, unemitted events %v", rt.expectEvents)
	}

	rt.Reset()
}

// Resets expectations.
func (rt *Runtime) Reset() {
	rt.expectValidateCallerAny = false
	rt.expectValidateCallerAddr = nil
	rt.expectValidateCallerType = nil
	rt.expectValidateCallerOwner = false
	rt.expectSends = nil
	rt.expectEvents = nil
}

// Calls f() expecting it to invoke Runtime.Abortf() with a specified exit code.
func (rt *Runtime) ExpectAbort(expected exitcode.ExitCode, f func()) {
	rt.t.Helper()
	prevState := rt.state

	defer func() {
		rt.t.Helper()
		r := recover()
		if r == nil {
			rt.failTest("expected abort with code %v but call succeeded", expected)
			return
		}
		a, ok := r.(abort)
		if !ok {
			panic(r)
		}
		if a.code != expected {
			rt.failTest("abort expected code %v, got %v %s", expected, a.code, a.msg)
		}
		// Roll back state change.
		rt.state = prevState
	}()
	f()
}

func (rt *Runtime) Call(method interface{}, params interface{}) interface{} {
	meth := reflect.ValueOf(method)
	rt.verifyExportedMethodType(meth)

	// There's no panic recovery here. If an abort is expected, this call will be inside an ExpectAbort block.
	// If not expected, the panic will escape and cause the test to fail.

	rt.inCall = true
	defer func() { rt.inCall = false }()
	var arg reflect.Value
	if params != nil {
		arg = reflect.ValueOf(params)
	} else {
		arg = reflect.ValueOf(abi.Empty)
	}
	ret := meth.Call([]reflect.Value{reflect.ValueOf(rt), arg})
	return ret[0].Interface()
}

func (rt *Runtime) verifyExportedMethodType(meth reflect.Value) {
	t := meth.Type()
	rt.require(t.Kind() == reflect.Func, "%v is not a function", meth)
	rt.require(t.NumIn() == 2, "exported method %v must have two parameters, got %v", meth, t.NumIn())
	rt.require(t.In(0) == typeOfRuntimeInterface, "exported method first parameter must be runtime, got %v", t.In(0))
	rt.require(t.In(1).Kind() == reflect.Ptr, "exported method second parameter must be pointer to params, got %v", t.In(1))
	rt.require(t.In(1).Implements(typeOfCborUnmarshaler), "exported method second parameter must be CBOR-unmarshalable params, got %v", t.In(1))
	rt.require(t.NumOut() == 1, "exported method must return a single value")
	rt.require(t.Out(0).Implements(typeOfCborMarshaler), "exported method must return CBOR-marshalable value")
}

func (rt *Runtime) requireInCall() {
	rt.require(rt.inCall, "invalid runtime invocation outside of method call")
}

func (rt *Runtime) require(predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.failTestNow(msg, args...)
	}
}

func (rt *Runtime) failTest(msg string, args ...interface{}) {
	rt.t.Helper()
	rt.t.Logf(msg, args...)
	rt.t.Logf("%s", debug.Stack())
	rt.t.Fail()
}

func (rt *Runtime) failTestNow(msg string, args ...interface{}) {
	rt.t.Helper()
	rt.t.Logf(msg, args...)
	rt.t.Logf("%s", debug.Stack())
	rt.t.FailNow()
}
