package vesting

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/vestlock/vesting-actors/actors/builtin"
)

// The claim engine: pure schedule arithmetic, no state access.
//
// Quantities vest in whole periods of the schedule. Nothing is claimable until
// the cliff has fully elapsed; at that point the initial-unlock fraction of the
// allocation becomes available, and the remainder releases linearly over
// LinearPeriods further periods. Per-period truncating division would strand up
// to LinearPeriods-1 units of dust, so the final period releases the exact
// remainder instead of the per-period quantum times the period count.

// ClaimableAmount returns the quantity of an allocation newly claimable at
// time `now`, given how much has already been claimed.
//
// The result is monotonically non-decreasing in `now` and, at or after the end
// of the linear window, equals exactly total minus claimed. A claimed amount
// exceeding the vested-to-date amount indicates corrupted ledger state and is
// returned as an error rather than wrapping the subtraction.
func ClaimableAmount(s VestingSchedule, total, claimed abi.TokenAmount, now abi.ChainEpoch) (abi.TokenAmount, error) {
	if total.LessThan(big.Zero()) {
		return big.Zero(), xerrors.Errorf("negative allocation %v", total)
	}
	if now <= s.StartTime {
		return big.Zero(), nil
	}

	periods := uint64((now - s.StartTime) / s.PeriodDuration)
	if periods < s.CliffPeriods {
		// Cliff not reached. The initial unlock only becomes available once the
		// cliff has fully elapsed.
		return big.Zero(), nil
	}

	initial := big.Div(big.Mul(total, big.NewIntUnsigned(s.InitialUnlockBps)), big.NewInt(builtin.TotalBasisPoints))
	remaining := big.Sub(total, initial)

	vestedPeriods := periods - s.CliffPeriods
	if vestedPeriods > s.LinearPeriods {
		vestedPeriods = s.LinearPeriods
	}

	var linear abi.TokenAmount
	if vestedPeriods == s.LinearPeriods {
		// Final period reached: release the exact remainder, recovering any dust
		// lost to truncation across earlier periods.
		linear = remaining
	} else {
		perPeriod := big.Div(remaining, big.NewIntUnsigned(s.LinearPeriods))
		linear = big.Mul(perPeriod, big.NewIntUnsigned(vestedPeriods))
	}

	vested := big.Add(initial, linear)
	if vested.LessThan(claimed) {
		return big.Zero(), xerrors.Errorf("claimed amount %v exceeds vested amount %v", claimed, vested)
	}
	return big.Sub(vested, claimed), nil
}

// NextUnlockTime returns the next time at which more of an allocation becomes
// claimable: the cliff end while the cliff is pending, otherwise the start of
// the next whole period. Returns zero if vesting has not started or the
// schedule is fully vested.
func NextUnlockTime(s VestingSchedule, locked bool, now abi.ChainEpoch) abi.ChainEpoch {
	if !locked {
		return 0
	}
	if cliffEnd := s.CliffEnd(); now < cliffEnd {
		return cliffEnd
	}
	if now >= s.LinearEnd() {
		return 0
	}
	periods := (now - s.StartTime) / s.PeriodDuration
	return s.StartTime + (periods+1)*s.PeriodDuration
}
