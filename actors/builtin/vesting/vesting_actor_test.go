package vesting_test

import (
	"strings"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/builtin/vesting"
	"github.com/vestlock/vesting-actors/actors/util/adt"
	"github.com/vestlock/vesting-actors/support/mock"
	tutil "github.com/vestlock/vesting-actors/support/testing"
)

func TestConstruction(t *testing.T) {
	h := newHarness(t)

	t.Run("simple construction", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		var st vesting.State
		rt.GetState(&st)
		assert.False(t, st.AssetConfigured)
		assert.False(t, st.Locked)
		assert.Equal(t, big.Zero(), st.HeldBalance)
		assert.Equal(t, big.Zero(), st.TotalAllocated)
		assert.Equal(t, big.Zero(), st.TotalClaimed)
		h.checkState(rt)
	})

	t.Run("fails when caller is not the init actor", func(t *testing.T) {
		rt := h.builder().Build(t)
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.Constructor, nil)
		})
		rt.Verify()
	})
}

func TestConfigureVesting(t *testing.T) {
	h := newHarness(t)

	t.Run("configures a schedule", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		schedule := h.defaultSchedule()
		h.configure(rt, schedule)

		var st vesting.State
		rt.GetState(&st)
		assert.True(t, st.AssetConfigured)
		assert.Equal(t, schedule, st.Schedule)
		h.checkState(rt)
	})

	t.Run("reconfiguring replaces the schedule before lock", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())

		second := h.defaultSchedule()
		second.CliffPeriods = 6
		second.InitialUnlockBps = 0
		h.configure(rt, second)

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, second, st.Schedule)
		h.checkState(rt)
	})

	t.Run("rejects invalid schedules", func(t *testing.T) {
		testCases := []struct {
			name   string
			mutate func(*vesting.VestingSchedule)
		}{
			{"zero cliff", func(s *vesting.VestingSchedule) { s.CliffPeriods = 0 }},
			{"zero linear periods", func(s *vesting.VestingSchedule) { s.LinearPeriods = 0 }},
			{"zero period duration", func(s *vesting.VestingSchedule) { s.PeriodDuration = 0 }},
			{"negative period duration", func(s *vesting.VestingSchedule) { s.PeriodDuration = -1 }},
			{"zero start time", func(s *vesting.VestingSchedule) { s.StartTime = 0 }},
			{"excessive initial unlock", func(s *vesting.VestingSchedule) { s.InitialUnlockBps = 10001 }},
			{"undefined asset", func(s *vesting.VestingSchedule) { s.AssetID = addr.Undef }},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				rt := h.builder().Build(t)
				h.constructAndVerify(rt)

				schedule := h.defaultSchedule()
				tc.mutate(&schedule)

				rt.SetCaller(h.admin, builtin.AccountActorCodeID)
				rt.ExpectValidateCallerOwner()
				rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
					rt.Call(h.ConfigureVesting, &schedule)
				})
				rt.Verify()
			})
		}
	})

	t.Run("fails when caller is not the admin", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		schedule := h.defaultSchedule()
		rt.SetCaller(tutil.NewIDAddr(t, 555), builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.ConfigureVesting, &schedule)
		})
		rt.Verify()
	})

	t.Run("fails after vesting has started", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.startVesting(rt)

		schedule := h.defaultSchedule()
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(vesting.ErrAlreadyLocked, func() {
			rt.Call(h.ConfigureVesting, &schedule)
		})
		rt.Verify()
		h.checkState(rt)
	})
}

func TestDeposit(t *testing.T) {
	h := newHarness(t)

	t.Run("moves funds into the treasury", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.deposit(rt, abi.NewTokenAmount(500))
		h.deposit(rt, abi.NewTokenAmount(250))

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, abi.NewTokenAmount(750), st.HeldBalance)
		h.checkState(rt)
	})

	t.Run("fails with no asset configured", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(vesting.ErrAssetNotConfigured, func() {
			rt.Call(h.Deposit, &vesting.DepositParams{Amount: abi.NewTokenAmount(500)})
		})
		rt.Verify()
	})

	t.Run("fails on non-positive amount", func(t *testing.T) {
		for _, amount := range []abi.TokenAmount{big.Zero(), abi.NewTokenAmount(-1)} {
			rt := h.builder().Build(t)
			h.constructAndVerify(rt)
			h.configure(rt, h.defaultSchedule())

			rt.SetCaller(h.admin, builtin.AccountActorCodeID)
			rt.ExpectValidateCallerOwner()
			rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
				rt.Call(h.Deposit, &vesting.DepositParams{Amount: amount})
			})
			rt.Verify()
		}
	})

	t.Run("propagates a failed transfer", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())

		amount := abi.NewTokenAmount(500)
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectSend(h.asset, builtin.MethodsToken.Transfer,
			&builtin.TransferParams{From: h.admin, To: h.receiver, Amount: amount},
			big.Zero(), nil, exitcode.ErrInsufficientFunds)
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.Deposit, &vesting.DepositParams{Amount: amount})
		})
		rt.Verify()

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, big.Zero(), st.HeldBalance)
	})
}

func TestBatchWhitelist(t *testing.T) {
	h := newHarness(t)
	r1 := tutil.NewIDAddr(t, 103)
	r2 := tutil.NewIDAddr(t, 104)

	t.Run("whitelists a batch of recipients", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1, r2}, []abi.TokenAmount{abi.NewTokenAmount(1000), abi.NewTokenAmount(500)})

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, abi.NewTokenAmount(1500), st.TotalAllocated)

		info := h.vestingInfo(rt, r1)
		assert.Equal(t, abi.NewTokenAmount(1000), info.TotalAmount)
		assert.Equal(t, big.Zero(), info.ClaimedAmount)
		assert.Equal(t, big.Zero(), info.ClaimableNow)
		assert.False(t, info.Paused)
		h.checkState(rt)
	})

	t.Run("re-whitelisting replaces the allocation", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(600)})

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, abi.NewTokenAmount(600), st.TotalAllocated)

		info := h.vestingInfo(rt, r1)
		assert.Equal(t, abi.NewTokenAmount(600), info.TotalAmount)
		h.checkState(rt)
	})

	t.Run("fails on length mismatch", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(h.BatchWhitelist, &vesting.BatchWhitelistParams{
				Recipients: []addr.Address{r1, r2},
				Amounts:    []abi.TokenAmount{abi.NewTokenAmount(1000)},
			})
		})
		rt.Verify()
	})

	t.Run("fails on negative amount", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(h.BatchWhitelist, &vesting.BatchWhitelistParams{
				Recipients: []addr.Address{r1},
				Amounts:    []abi.TokenAmount{abi.NewTokenAmount(-5)},
			})
		})
		rt.Verify()
		h.checkState(rt)
	})

	t.Run("post-lock whitelisting requires funding", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})
		h.deposit(rt, abi.NewTokenAmount(1000))
		h.startVesting(rt)

		// Held balance exactly covers r1; adding r2 would break the guarantee.
		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.BatchWhitelist, &vesting.BatchWhitelistParams{
				Recipients: []addr.Address{r2},
				Amounts:    []abi.TokenAmount{abi.NewTokenAmount(1)},
			})
		})
		rt.Verify()

		// A further deposit makes the same update legal.
		h.deposit(rt, abi.NewTokenAmount(500))
		h.whitelist(rt, []addr.Address{r2}, []abi.TokenAmount{abi.NewTokenAmount(500)})

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, abi.NewTokenAmount(1500), st.TotalAllocated)
		h.checkState(rt)
	})
}

func TestStartVesting(t *testing.T) {
	h := newHarness(t)
	r1 := tutil.NewIDAddr(t, 103)

	t.Run("locks the ledger", func(t *testing.T) {
		rt := h.builder().WithEpoch(800).Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})
		h.deposit(rt, abi.NewTokenAmount(1000))
		h.startVesting(rt)

		var st vesting.State
		rt.GetState(&st)
		assert.True(t, st.Locked)
		assert.Equal(t, abi.ChainEpoch(800), st.LockedAt)
		h.checkState(rt)
	})

	t.Run("fails with no asset configured", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(vesting.ErrAssetNotConfigured, func() {
			rt.Call(h.StartVesting, nil)
		})
		rt.Verify()
	})

	t.Run("fails when underfunded", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})
		h.deposit(rt, abi.NewTokenAmount(999))

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.StartVesting, nil)
		})
		rt.Verify()

		var st vesting.State
		rt.GetState(&st)
		assert.False(t, st.Locked)
		h.checkState(rt)
	})

	t.Run("fails when already started", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.startVesting(rt)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(vesting.ErrAlreadyLocked, func() {
			rt.Call(h.StartVesting, nil)
		})
		rt.Verify()
	})
}

func TestClaim(t *testing.T) {
	h := newHarness(t)
	r1 := tutil.NewIDAddr(t, 103)
	stranger := tutil.NewIDAddr(t, 555)

	// Schedule: start 1000, 3 periods of 100s cliff, 10% initial, 12 linear periods.
	setup := func(t *testing.T) *mock.Runtime {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})
		h.deposit(rt, abi.NewTokenAmount(1000))
		h.startVesting(rt)
		return rt
	}

	t.Run("fails before vesting starts", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})

		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectAbort(vesting.ErrVestingNotStarted, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()
	})

	t.Run("fails for a caller that is not whitelisted", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)
		rt.SetCaller(stranger, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()
	})

	t.Run("fails during the cliff", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1299)
		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectAbort(vesting.ErrNothingToClaim, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()
	})

	t.Run("claims the initial unlock at the cliff", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)
		h.claim(rt, r1, abi.NewTokenAmount(100))

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, abi.NewTokenAmount(900), st.HeldBalance)
		assert.Equal(t, abi.NewTokenAmount(100), st.TotalClaimed)

		info := h.vestingInfo(rt, r1)
		assert.Equal(t, abi.NewTokenAmount(100), info.ClaimedAmount)
		assert.Equal(t, big.Zero(), info.ClaimableNow)
		assert.Equal(t, abi.ChainEpoch(1300), info.LastClaimTime)
		h.checkState(rt)
	})

	t.Run("repeat claim at the same time yields nothing", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)
		h.claim(rt, r1, abi.NewTokenAmount(100))

		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectAbort(vesting.ErrNothingToClaim, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()
		h.checkState(rt)
	})

	t.Run("claims accrue period by period", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)
		h.claim(rt, r1, abi.NewTokenAmount(100))

		rt.SetEpoch(1400)
		h.claim(rt, r1, abi.NewTokenAmount(75))

		// Two periods in one claim.
		rt.SetEpoch(1600)
		h.claim(rt, r1, abi.NewTokenAmount(150))

		info := h.vestingInfo(rt, r1)
		assert.Equal(t, abi.NewTokenAmount(325), info.ClaimedAmount)
		h.checkState(rt)
	})

	t.Run("full vest pays out the exact total", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1400)
		h.claim(rt, r1, abi.NewTokenAmount(175))

		rt.SetEpoch(5000)
		h.claim(rt, r1, abi.NewTokenAmount(825))

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, big.Zero(), st.HeldBalance)
		assert.Equal(t, abi.NewTokenAmount(1000), st.TotalClaimed)
		h.checkState(rt)
	})

	t.Run("pause blocks claims and unpause restores them", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)
		h.setPause(rt, r1, true)

		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()

		// Claimable keeps accruing while paused.
		rt.SetEpoch(1400)
		info := h.vestingInfo(rt, r1)
		assert.True(t, info.Paused)
		assert.Equal(t, abi.NewTokenAmount(175), info.ClaimableNow)

		h.setPause(rt, r1, false)
		h.claim(rt, r1, abi.NewTokenAmount(175))
		h.checkState(rt)
	})

	t.Run("failed disbursement aborts and rolls back", func(t *testing.T) {
		rt := setup(t)
		rt.SetEpoch(1300)

		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
		rt.ExpectSend(h.asset, builtin.MethodsToken.Transfer,
			&builtin.TransferParams{From: h.receiver, To: r1, Amount: abi.NewTokenAmount(100)},
			big.Zero(), nil, exitcode.ErrIllegalState)
		rt.ExpectAbort(exitcode.ErrIllegalState, func() {
			rt.Call(h.Claim, nil)
		})
		rt.Verify()

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, big.Zero(), st.TotalClaimed)
		assert.Equal(t, abi.NewTokenAmount(1000), st.HeldBalance)
		h.checkState(rt)
	})

	t.Run("final period recovers truncation dust", func(t *testing.T) {
		// floor(90/7) = 12 per period, so 18 units of dust ride on the final period.
		schedule := vesting.VestingSchedule{
			CliffPeriods:     1,
			InitialUnlockBps: 1000,
			LinearPeriods:    7,
			PeriodDuration:   10,
			StartTime:        1000,
			AssetID:          h.asset,
		}
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, schedule)
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(100)})
		h.deposit(rt, abi.NewTokenAmount(100))
		h.startVesting(rt)

		rt.SetEpoch(1070)
		h.claim(rt, r1, abi.NewTokenAmount(82))

		rt.SetEpoch(1080)
		h.claim(rt, r1, abi.NewTokenAmount(18))

		var st vesting.State
		rt.GetState(&st)
		assert.Equal(t, big.Zero(), st.HeldBalance)
		assert.Equal(t, abi.NewTokenAmount(100), st.TotalClaimed)
		h.checkState(rt)
	})
}

func TestSetPause(t *testing.T) {
	h := newHarness(t)
	r1 := tutil.NewIDAddr(t, 103)

	t.Run("fails for an unknown recipient", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.SetCaller(h.admin, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrNotFound, func() {
			rt.Call(h.SetPause, &vesting.SetPauseParams{Recipient: r1, Paused: true})
		})
		rt.Verify()
	})

	t.Run("fails when caller is not the admin", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})

		rt.SetCaller(r1, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerOwner()
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.SetPause, &vesting.SetPauseParams{Recipient: r1, Paused: true})
		})
		rt.Verify()
	})

	t.Run("setting the same value twice is idempotent", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1000)})

		h.setPause(rt, r1, true)
		h.setPause(rt, r1, true)
		info := h.vestingInfo(rt, r1)
		assert.True(t, info.Paused)
		h.checkState(rt)
	})
}

func TestQueries(t *testing.T) {
	h := newHarness(t)
	r1 := tutil.NewIDAddr(t, 103)
	r2 := tutil.NewIDAddr(t, 104)

	t.Run("get schedule reflects configuration and lock", func(t *testing.T) {
		rt := h.builder().WithEpoch(800).Build(t)
		h.constructAndVerify(rt)

		rt.ExpectValidateCallerAny()
		ret := rt.Call(h.GetSchedule, nil).(*vesting.GetScheduleReturn)
		rt.Verify()
		assert.False(t, ret.AssetConfigured)
		assert.False(t, ret.Locked)

		h.configure(rt, h.defaultSchedule())
		h.startVesting(rt)

		rt.ExpectValidateCallerAny()
		ret = rt.Call(h.GetSchedule, nil).(*vesting.GetScheduleReturn)
		rt.Verify()
		assert.Equal(t, h.defaultSchedule(), ret.Schedule)
		assert.True(t, ret.Locked)
		assert.Equal(t, abi.ChainEpoch(800), ret.LockedAt)
	})

	t.Run("contract balance and amount needed to fund", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1}, []abi.TokenAmount{abi.NewTokenAmount(1500)})
		h.deposit(rt, abi.NewTokenAmount(1000))

		rt.ExpectValidateCallerAny()
		balance := rt.Call(h.ContractBalance, nil).(*abi.TokenAmount)
		rt.Verify()
		assert.Equal(t, abi.NewTokenAmount(1000), *balance)

		rt.ExpectValidateCallerAny()
		needed := rt.Call(h.AmountNeededToFund, nil).(*abi.TokenAmount)
		rt.Verify()
		assert.Equal(t, abi.NewTokenAmount(500), *needed)

		// Overfunding reports zero, not a negative amount.
		h.deposit(rt, abi.NewTokenAmount(1000))
		rt.ExpectValidateCallerAny()
		needed = rt.Call(h.AmountNeededToFund, nil).(*abi.TokenAmount)
		rt.Verify()
		assert.Equal(t, big.Zero(), *needed)
	})

	t.Run("next unlock time", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())

		rt.ExpectValidateCallerAny()
		ret := rt.Call(h.NextUnlockTime, nil).(*vesting.NextUnlockTimeReturn)
		rt.Verify()
		assert.Equal(t, abi.ChainEpoch(0), ret.NextUnlock)

		h.startVesting(rt)
		rt.SetEpoch(1100)
		rt.ExpectValidateCallerAny()
		ret = rt.Call(h.NextUnlockTime, nil).(*vesting.NextUnlockTimeReturn)
		rt.Verify()
		assert.Equal(t, abi.ChainEpoch(1300), ret.NextUnlock)
	})

	t.Run("all recipients lists every allocation", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.configure(rt, h.defaultSchedule())
		h.whitelist(rt, []addr.Address{r1, r2}, []abi.TokenAmount{abi.NewTokenAmount(1000), abi.NewTokenAmount(500)})

		rt.ExpectValidateCallerAny()
		ret := rt.Call(h.AllRecipients, nil).(*vesting.AllRecipientsReturn)
		rt.Verify()

		require.Len(t, ret.Recipients, 2)
		byAddr := map[addr.Address]abi.TokenAmount{}
		for _, entry := range ret.Recipients {
			byAddr[entry.Recipient] = entry.TotalAmount
		}
		assert.Equal(t, abi.NewTokenAmount(1000), byAddr[r1])
		assert.Equal(t, abi.NewTokenAmount(500), byAddr[r2])
	})

	t.Run("vesting info fails for an unknown recipient", func(t *testing.T) {
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.ExpectValidateCallerAny()
		rt.ExpectAbort(exitcode.ErrNotFound, func() {
			rt.Call(h.VestingInfo, &r1)
		})
		rt.Verify()
	})
}

//
// Test harness
//

type vestingHarness struct {
	vesting.Actor
	t *testing.T

	receiver addr.Address
	admin    addr.Address
	asset    addr.Address
}

func newHarness(t *testing.T) *vestingHarness {
	return &vestingHarness{
		t:        t,
		receiver: tutil.NewIDAddr(t, 100),
		admin:    tutil.NewIDAddr(t, 101),
		asset:    tutil.NewIDAddr(t, 102),
	}
}

func (h *vestingHarness) builder() mock.RuntimeBuilder {
	return mock.NewBuilder(h.receiver).
		WithCaller(builtin.InitActorAddr, builtin.InitActorCodeID).
		WithOwner(h.admin)
}

func (h *vestingHarness) defaultSchedule() vesting.VestingSchedule {
	return vesting.VestingSchedule{
		CliffPeriods:     3,
		InitialUnlockBps: 1000,
		LinearPeriods:    12,
		PeriodDuration:   100,
		StartTime:        1000,
		AssetID:          h.asset,
	}
}

func (h *vestingHarness) constructAndVerify(rt *mock.Runtime) {
	rt.ExpectValidateCallerAddr(builtin.InitActorAddr)
	ret := rt.Call(h.Constructor, nil)
	assert.Nil(h.t, ret)
	rt.Verify()
}

func (h *vestingHarness) configure(rt *mock.Runtime, schedule vesting.VestingSchedule) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerOwner()
	rt.ExpectSend(schedule.AssetID, builtin.MethodsToken.EnsureAccount,
		&builtin.EnsureAccountParams{Address: h.receiver}, big.Zero(), nil, exitcode.Ok)
	rt.ExpectEvent(vesting.EventVestingConfigured, &schedule)
	rt.Call(h.ConfigureVesting, &schedule)
	rt.Verify()
}

func (h *vestingHarness) deposit(rt *mock.Runtime, amount abi.TokenAmount) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerOwner()
	rt.ExpectSend(h.asset, builtin.MethodsToken.Transfer,
		&builtin.TransferParams{From: h.admin, To: h.receiver, Amount: amount}, big.Zero(), nil, exitcode.Ok)
	params := &vesting.DepositParams{Amount: amount}
	rt.ExpectEvent(vesting.EventFundsDeposited, params)
	rt.Call(h.Deposit, params)
	rt.Verify()
}

func (h *vestingHarness) whitelist(rt *mock.Runtime, recipients []addr.Address, amounts []abi.TokenAmount) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerOwner()
	params := &vesting.BatchWhitelistParams{Recipients: recipients, Amounts: amounts}
	rt.ExpectEvent(vesting.EventUsersWhitelisted, params)
	rt.Call(h.BatchWhitelist, params)
	rt.Verify()
}

func (h *vestingHarness) startVesting(rt *mock.Runtime) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerOwner()
	rt.ExpectEvent(vesting.EventVestingStarted, nil)
	rt.Call(h.StartVesting, nil)
	rt.Verify()
}

func (h *vestingHarness) claim(rt *mock.Runtime, recipient addr.Address, amount abi.TokenAmount) {
	rt.SetCaller(recipient, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerType(builtin.CallerTypesSignable...)
	rt.ExpectSend(h.asset, builtin.MethodsToken.Transfer,
		&builtin.TransferParams{From: h.receiver, To: recipient, Amount: amount}, big.Zero(), nil, exitcode.Ok)
	rt.ExpectEvent(vesting.EventTokensClaimed, &vesting.ClaimedEvent{Recipient: recipient, Amount: amount})
	rt.Call(h.Claim, nil)
	rt.Verify()
}

func (h *vestingHarness) setPause(rt *mock.Runtime, recipient addr.Address, paused bool) {
	rt.SetCaller(h.admin, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerOwner()
	params := &vesting.SetPauseParams{Recipient: recipient, Paused: paused}
	rt.ExpectEvent(vesting.EventPauseSet, params)
	rt.Call(h.SetPause, params)
	rt.Verify()
}

func (h *vestingHarness) vestingInfo(rt *mock.Runtime, recipient addr.Address) *vesting.VestingInfoReturn {
	rt.ExpectValidateCallerAny()
	ret := rt.Call(h.VestingInfo, &recipient).(*vesting.VestingInfoReturn)
	rt.Verify()
	return ret
}

func (h *vestingHarness) checkState(rt *mock.Runtime) {
	var st vesting.State
	rt.GetState(&st)
	_, msgs := vesting.CheckStateInvariants(&st, adt.AsStore(rt))
	assert.True(h.t, msgs.IsEmpty(), strings.Join(msgs.Messages(), "\n"))
}
