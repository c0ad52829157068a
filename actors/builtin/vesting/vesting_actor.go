package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	rtt "github.com/filecoin-project/go-state-types/rt"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/runtime"
	"github.com/vestlock/vesting-actors/actors/util/adt"
)

// Actor-specific exit codes. Generic failure classes use the standard codes
// (ErrForbidden, ErrIllegalArgument, ErrNotFound, ErrInsufficientFunds).
const (
	ErrAlreadyLocked = exitcode.FirstActorSpecificExitCode + iota
	ErrAssetNotConfigured
	ErrVestingNotStarted
	ErrNothingToClaim
)

// Names of events delivered to the host's event sink.
const (
	EventVestingConfigured = "vesting-configured"
	EventFundsDeposited    = "funds-deposited"
	EventVestingStarted    = "vesting-started"
	EventUsersWhitelisted  = "users-whitelisted"
	EventTokensClaimed     = "tokens-claimed"
	EventPauseSet          = "pause-set"
)

type Actor struct{}

func (a Actor) Exports() []interface{} {
	return []interface{}{
		builtin.MethodConstructor: a.Constructor,
		2:                         a.ConfigureVesting,
		3:                         a.Deposit,
		4:                         a.BatchWhitelist,
		5:                         a.StartVesting,
		6:                         a.Claim,
		7:                         a.SetPause,
		8:                         a.VestingInfo,
		9:                         a.GetSchedule,
		10:                        a.ContractBalance,
		11:                        a.AmountNeededToFund,
		12:                        a.NextUnlockTime,
		13:                        a.AllRecipients,
	}
}

var _ runtime.Invokee = Actor{}

////////////////////////////////////////////////////////////////////////////////
// Actor methods
////////////////////////////////////////////////////////////////////////////////

func (a Actor) Constructor(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerIs(builtin.InitActorAddr)

	st, err := ConstructState(adt.AsStore(rt))
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to construct state")
	rt.StateCreate(st)
	return nil
}

// ConfigureVestingParams carries the full schedule; configuring overwrites any
// previous schedule and rebinds the asset.
type ConfigureVestingParams = VestingSchedule

// ConfigureVesting sets or replaces the disbursement schedule. Permitted any
// number of times until vesting starts, after which the schedule is immutable.
func (a Actor) ConfigureVesting(rt runtime.Runtime, params *ConfigureVestingParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIsOwner()

	err := params.Validate()
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "invalid schedule")

	var st State
	rt.StateTransaction(&st, func() {
		if st.Locked {
			rt.Abortf(ErrAlreadyLocked, "vesting already started, schedule is immutable")
		}
		st.Schedule = *params
		st.AssetConfigured = true
	})

	// Make sure the treasury can custody the asset it is about to disburse.
	code := rt.Send(params.AssetID, builtin.MethodsToken.EnsureAccount,
		&builtin.EnsureAccountParams{Address: rt.Receiver()}, big.Zero(), &builtin.Discard{})
	builtin.RequireSuccess(rt, code, "failed to prepare treasury for asset %v", params.AssetID)

	rt.Log(rtt.INFO, "vesting schedule configured for asset %v starting at %d", params.AssetID, params.StartTime)
	rt.EmitEvent(EventVestingConfigured, params)
	return nil
}

type DepositParams struct {
	Amount abi.TokenAmount
}

// Deposit moves funds from the administrator into the treasury.
func (a Actor) Deposit(rt runtime.Runtime, params *DepositParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIsOwner()
	admin := rt.Caller()

	builtin.RequireParam(rt, params.Amount.GreaterThan(big.Zero()), "deposit amount must be positive, got %v", params.Amount)

	var st State
	rt.StateReadonly(&st)
	if !st.AssetConfigured {
		rt.Abortf(ErrAssetNotConfigured, "no asset configured to deposit")
	}

	code := rt.Send(st.Schedule.AssetID, builtin.MethodsToken.Transfer,
		&builtin.TransferParams{From: admin, To: rt.Receiver(), Amount: params.Amount}, big.Zero(), &builtin.Discard{})
	builtin.RequireSuccess(rt, code, "failed to move deposit of %v into treasury", params.Amount)

	rt.StateTransaction(&st, func() {
		st.HeldBalance = big.Add(st.HeldBalance, params.Amount)
	})

	rt.EmitEvent(EventFundsDeposited, params)
	return nil
}

type BatchWhitelistParams struct {
	Recipients []addr.Address
	Amounts    []abi.TokenAmount
}

// BatchWhitelist creates or updates allocations for a batch of recipients.
// Re-whitelisting an existing recipient replaces the total allocation but
// preserves the claim history; the new total may not fall below the amount
// already claimed.
//
// Before vesting starts no funding check is made (it is deferred to
// StartVesting). Afterwards, an update must leave the outstanding commitment
// covered by the held balance.
func (a Actor) BatchWhitelist(rt runtime.Runtime, params *BatchWhitelistParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIsOwner()

	builtin.RequireParam(rt, len(params.Recipients) == len(params.Amounts),
		"%d recipients but %d amounts", len(params.Recipients), len(params.Amounts))

	var st State
	rt.StateTransaction(&st, func() {
		allocations, err := st.LoadAllocations(adt.AsStore(rt))
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load allocations")

		for i, recipient := range params.Recipients {
			amount := params.Amounts[i]
			builtin.RequireParam(rt, amount.GreaterThanEqual(big.Zero()), "negative allocation %v for %v", amount, recipient)

			var alloc Allocation
			found, err := allocations.Get(abi.AddrKey(recipient), &alloc)
			builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to get allocation for %v", recipient)

			if found {
				builtin.RequireParam(rt, amount.GreaterThanEqual(alloc.ClaimedAmount),
					"new allocation %v for %v below already-claimed %v", amount, recipient, alloc.ClaimedAmount)
				st.TotalAllocated = big.Add(big.Sub(st.TotalAllocated, alloc.TotalAmount), amount)
				alloc.TotalAmount = amount
			} else {
				alloc = Allocation{
					TotalAmount:   amount,
					ClaimedAmount: big.Zero(),
					LastClaimTime: 0,
					Paused:        false,
				}
				st.TotalAllocated = big.Add(st.TotalAllocated, amount)
			}

			err = allocations.Put(abi.AddrKey(recipient), &alloc)
			builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to put allocation for %v", recipient)
		}

		st.Allocations, err = allocations.Root()
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to flush allocations")

		// Once locked, the held balance was verified to cover every outstanding
		// allocation; don't let a whitelist edit silently break that.
		if st.Locked && st.Outstanding().GreaterThan(st.HeldBalance) {
			rt.Abortf(exitcode.ErrInsufficientFunds,
				"whitelist update leaves outstanding %v above held balance %v", st.Outstanding(), st.HeldBalance)
		}
	})

	rt.EmitEvent(EventUsersWhitelisted, params)
	return nil
}

// StartVesting locks the ledger: the schedule becomes immutable and claims are
// permitted. The transition requires the held balance to cover the sum of all
// outstanding allocations, and is irreversible.
func (a Actor) StartVesting(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerIsOwner()
	now := rt.CurrEpoch()

	var st State
	rt.StateTransaction(&st, func() {
		if st.Locked {
			rt.Abortf(ErrAlreadyLocked, "vesting already started")
		}
		if !st.AssetConfigured {
			rt.Abortf(ErrAssetNotConfigured, "cannot start vesting with no asset configured")
		}
		if st.HeldBalance.LessThan(st.Outstanding()) {
			rt.Abortf(exitcode.ErrInsufficientFunds,
				"held balance %v cannot cover allocations of %v, deposit %v more",
				st.HeldBalance, st.Outstanding(), st.AmountNeededToFund())
		}
		st.Locked = true
		st.LockedAt = now
	})

	rt.Log(rtt.INFO, "vesting started at %d", now)
	rt.EmitEvent(EventVestingStarted, nil)
	return nil
}

// ClaimedEvent is the payload of the tokens-claimed event.
type ClaimedEvent struct {
	Recipient addr.Address
	Amount    abi.TokenAmount
}

// Claim pays the caller everything newly claimable under the schedule.
// Paused recipients are treated identically to unknown ones.
func (a Actor) Claim(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerType(builtin.CallerTypesSignable...)
	recipient := rt.Caller()
	now := rt.CurrEpoch()

	var st State
	var amount abi.TokenAmount
	rt.StateTransaction(&st, func() {
		if !st.Locked {
			rt.Abortf(ErrVestingNotStarted, "vesting has not started")
		}

		alloc, found, err := st.GetAllocation(adt.AsStore(rt), recipient)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to get allocation for %v", recipient)
		if !found || alloc.Paused {
			rt.Abortf(exitcode.ErrForbidden, "recipient %v is not whitelisted", recipient)
		}

		amount, err = ClaimableAmount(st.Schedule, alloc.TotalAmount, alloc.ClaimedAmount, now)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to compute claimable for %v", recipient)
		if amount.IsZero() {
			rt.Abortf(ErrNothingToClaim, "nothing to claim for %v at %d", recipient, now)
		}
		builtin.RequireState(rt, amount.LessThanEqual(st.HeldBalance),
			"claim of %v exceeds held balance %v", amount, st.HeldBalance)

		alloc.ClaimedAmount = big.Add(alloc.ClaimedAmount, amount)
		alloc.LastClaimTime = now
		err = st.PutAllocation(adt.AsStore(rt), recipient, alloc)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to update allocation for %v", recipient)

		st.TotalClaimed = big.Add(st.TotalClaimed, amount)
		st.HeldBalance = big.Sub(st.HeldBalance, amount)
	})

	code := rt.Send(st.Schedule.AssetID, builtin.MethodsToken.Transfer,
		&builtin.TransferParams{From: rt.Receiver(), To: recipient, Amount: amount}, big.Zero(), &builtin.Discard{})
	builtin.RequireSuccess(rt, code, "failed to disburse %v to %v", amount, recipient)

	rt.EmitEvent(EventTokensClaimed, &ClaimedEvent{Recipient: recipient, Amount: amount})
	return nil
}

type SetPauseParams struct {
	Recipient addr.Address
	Paused    bool
}

// SetPause flips the pause flag for one recipient, effective on their next
// claim attempt. Pausing does not alter the schedule position: unpausing
// restores exactly the claimable amount the schedule dictates.
func (a Actor) SetPause(rt runtime.Runtime, params *SetPauseParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIsOwner()

	var st State
	rt.StateTransaction(&st, func() {
		alloc, found, err := st.GetAllocation(adt.AsStore(rt), params.Recipient)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to get allocation for %v", params.Recipient)
		if !found {
			rt.Abortf(exitcode.ErrNotFound, "no allocation for %v", params.Recipient)
		}

		alloc.Paused = params.Paused
		err = st.PutAllocation(adt.AsStore(rt), params.Recipient, alloc)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to update allocation for %v", params.Recipient)
	})

	rt.EmitEvent(EventPauseSet, params)
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// Read-only methods
////////////////////////////////////////////////////////////////////////////////

type VestingInfoReturn struct {
	TotalAmount   abi.TokenAmount
	ClaimedAmount abi.TokenAmount
	// Quantity claimable at the current time, computed live through the claim
	// engine. Zero until vesting starts. Unaffected by the pause flag.
	ClaimableNow  abi.TokenAmount
	LastClaimTime abi.ChainEpoch
	Paused        bool
}

func (a Actor) VestingInfo(rt runtime.Runtime, recipient *addr.Address) *VestingInfoReturn {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)

	alloc, found, err := st.GetAllocation(adt.AsStore(rt), *recipient)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to get allocation for %v", recipient)
	if !found {
		rt.Abortf(exitcode.ErrNotFound, "no allocation for %v", recipient)
	}

	claimable := big.Zero()
	if st.Locked {
		claimable, err = ClaimableAmount(st.Schedule, alloc.TotalAmount, alloc.ClaimedAmount, rt.CurrEpoch())
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to compute claimable for %v", recipient)
	}

	return &VestingInfoReturn{
		TotalAmount:   alloc.TotalAmount,
		ClaimedAmount: alloc.ClaimedAmount,
		ClaimableNow:  claimable,
		LastClaimTime: alloc.LastClaimTime,
		Paused:        alloc.Paused,
	}
}

type GetScheduleReturn struct {
	Schedule        VestingSchedule
	AssetConfigured bool
	Locked          bool
	LockedAt        abi.ChainEpoch
}

func (a Actor) GetSchedule(rt runtime.Runtime, _ *abi.EmptyValue) *GetScheduleReturn {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)
	return &GetScheduleReturn{
		Schedule:        st.Schedule,
		AssetConfigured: st.AssetConfigured,
		Locked:          st.Locked,
		LockedAt:        st.LockedAt,
	}
}

func (a Actor) ContractBalance(rt runtime.Runtime, _ *abi.EmptyValue) *abi.TokenAmount {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)
	return &st.HeldBalance
}

func (a Actor) AmountNeededToFund(rt runtime.Runtime, _ *abi.EmptyValue) *abi.TokenAmount {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)
	needed := st.AmountNeededToFund()
	return &needed
}

type NextUnlockTimeReturn struct {
	// Time of the next unlock, or zero if vesting has not started or the
	// schedule is fully vested.
	NextUnlock abi.ChainEpoch
}

func (a Actor) NextUnlockTime(rt runtime.Runtime, _ *abi.EmptyValue) *NextUnlockTimeReturn {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)
	return &NextUnlockTimeReturn{NextUnlock: NextUnlockTime(st.Schedule, st.Locked, rt.CurrEpoch())}
}

type RecipientAllocation struct {
	Recipient   addr.Address
	TotalAmount abi.TokenAmount
}

type AllRecipientsReturn struct {
	Recipients []RecipientAllocation
}

func (a Actor) AllRecipients(rt runtime.Runtime, _ *abi.EmptyValue) *AllRecipientsReturn {
	rt.ValidateImmediateCallerAcceptAny()

	var st State
	rt.StateReadonly(&st)

	allocations, err := st.LoadAllocations(adt.AsStore(rt))
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load allocations")

	ret := &AllRecipientsReturn{Recipients: []RecipientAllocation{}}
	var alloc Allocation
	err = allocations.ForEach(&alloc, func(key string) error {
		recipient, err := addr.NewFromBytes([]byte(key))
		if err != nil {
			return err
		}
		ret.Recipients = append(ret.Recipients, RecipientAllocation{
			Recipient:   recipient,
			TotalAmount: alloc.TotalAmount,
		})
		return nil
	})
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to iterate allocations")
	return ret
}
