package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/util/adt"
)

// VestingSchedule is the disbursement configuration for the one asset this
// ledger releases. It may be rewritten freely while the ledger is unlocked and
// becomes immutable once vesting starts.
type VestingSchedule struct {
	// Number of whole periods after StartTime during which nothing is claimable.
	CliffPeriods uint64
	// Fraction of each allocation, in basis points, releasable once the cliff
	// has fully elapsed, independent of the linear schedule.
	InitialUnlockBps uint64
	// Number of whole periods over which the post-initial-unlock remainder is
	// released pro rata.
	LinearPeriods uint64
	// Length of one vesting period, in seconds.
	PeriodDuration abi.ChainEpoch
	// Absolute time, in seconds, at which period counting begins.
	StartTime abi.ChainEpoch
	// Address of the fungible-token actor holding the disbursed asset.
	AssetID addr.Address
}

// Validate checks the static well-formedness rules for a schedule.
func (s *VestingSchedule) Validate() error {
	if s.InitialUnlockBps > builtin.TotalBasisPoints {
		return xerrors.Errorf("initial unlock %d bps exceeds %d", s.InitialUnlockBps, builtin.TotalBasisPoints)
	}
	if s.CliffPeriods == 0 {
		return xerrors.Errorf("cliff must be at least one period")
	}
	if s.LinearPeriods == 0 {
		return xerrors.Errorf("linear release must span at least one period")
	}
	if s.PeriodDuration <= 0 {
		return xerrors.Errorf("period duration must be positive")
	}
	if s.StartTime <= 0 {
		return xerrors.Errorf("start time must be positive")
	}
	if s.AssetID == addr.Undef {
		return xerrors.Errorf("asset address must be defined")
	}
	return nil
}

// CliffEnd returns the time at which the cliff has fully elapsed.
func (s *VestingSchedule) CliffEnd() abi.ChainEpoch {
	return s.StartTime + abi.ChainEpoch(s.CliffPeriods)*s.PeriodDuration
}

// LinearEnd returns the time at which the linear release window closes and the
// full allocation has vested.
func (s *VestingSchedule) LinearEnd() abi.ChainEpoch {
	return s.StartTime + abi.ChainEpoch(s.CliffPeriods+s.LinearPeriods)*s.PeriodDuration
}

// Allocation is the ledger entry for one whitelisted recipient.
// Entries are never deleted; they are only updated or paused.
type Allocation struct {
	// Total quantity committed to the recipient.
	TotalAmount abi.TokenAmount
	// Quantity already paid out. Invariant: 0 <= ClaimedAmount <= TotalAmount.
	ClaimedAmount abi.TokenAmount
	// Time of the most recent successful claim (0 = never claimed).
	LastClaimTime abi.ChainEpoch
	// A paused recipient cannot claim until unpaused.
	Paused bool
}

// Outstanding returns the unclaimed portion of the allocation.
func (a *Allocation) Outstanding() abi.TokenAmount {
	return big.Sub(a.TotalAmount, a.ClaimedAmount)
}

type State struct {
	// Disbursement schedule. Meaningful only once AssetConfigured is set.
	Schedule VestingSchedule

	// Whitelist ledger: HAMT[addr.Address]Allocation.
	Allocations cid.Cid

	// Asset quantity currently custodied by this ledger for disbursement.
	HeldBalance abi.TokenAmount

	// Sums maintained incrementally across the whole ledger, so that the lock
	// and funding checks need no HAMT scan.
	TotalAllocated abi.TokenAmount
	TotalClaimed   abi.TokenAmount

	// Whether a schedule (and hence an asset) has been configured.
	AssetConfigured bool

	// One-way flag: set when vesting starts, after which the schedule is
	// immutable and claims are permitted.
	Locked bool

	// Time at which StartVesting succeeded (0 = not yet). Informational; the
	// schedule's own StartTime remains the basis for all vesting arithmetic.
	LockedAt abi.ChainEpoch
}

func ConstructState(store adt.Store) (*State, error) {
	emptyMapCid, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty map: %w", err)
	}

	return &State{
		Allocations:    emptyMapCid,
		HeldBalance:    big.Zero(),
		TotalAllocated: big.Zero(),
		TotalClaimed:   big.Zero(),
	}, nil
}

// Outstanding returns the total unclaimed quantity across all recipients.
func (st *State) Outstanding() abi.TokenAmount {
	return big.Sub(st.TotalAllocated, st.TotalClaimed)
}

// AmountNeededToFund returns how much more the ledger must hold before it can
// cover every outstanding allocation: max(0, outstanding - held).
func (st *State) AmountNeededToFund() abi.TokenAmount {
	return big.Max(big.Sub(st.Outstanding(), st.HeldBalance), big.Zero())
}

func (st *State) LoadAllocations(store adt.Store) (*adt.Map, error) {
	return adt.AsMap(store, st.Allocations, builtin.DefaultHamtBitwidth)
}

// GetAllocation fetches the allocation for a recipient, if present.
func (st *State) GetAllocation(store adt.Store, recipient addr.Address) (*Allocation, bool, error) {
	allocations, err := st.LoadAllocations(store)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to load allocations: %w", err)
	}

	var alloc Allocation
	found, err := allocations.Get(abi.AddrKey(recipient), &alloc)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to get allocation for %v: %w", recipient, err)
	}
	if !found {
		return nil, false, nil
	}
	return &alloc, true, nil
}

// PutAllocation stores an allocation for a recipient and re-roots the ledger.
func (st *State) PutAllocation(store adt.Store, recipient addr.Address, alloc *Allocation) error {
	allocations, err := st.LoadAllocations(store)
	if err != nil {
		return xerrors.Errorf("failed to load allocations: %w", err)
	}
	if err := allocations.Put(abi.AddrKey(recipient), alloc); err != nil {
		return xerrors.Errorf("failed to put allocation for %v: %w", recipient, err)
	}
	st.Allocations, err = allocations.Root()
	if err != nil {
		return xerrors.Errorf("failed to flush allocations: %w", err)
	}
	return nil
}
