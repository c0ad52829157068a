package vesting

import (
	"github.com/filecoin-project/go-state-types/big"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/util/adt"
)

type StateSummary struct {
	RecipientCount int
	TotalAllocated big.Int
	TotalClaimed   big.Int
	HeldBalance    big.Int
}

// Checks internal invariants of the vesting ledger state.
func CheckStateInvariants(st *State, store adt.Store) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}

	acc.Require(st.HeldBalance.GreaterThanEqual(big.Zero()), "held balance %v is negative", st.HeldBalance)
	acc.Require(st.TotalClaimed.LessThanEqual(st.TotalAllocated),
		"total claimed %v exceeds total allocated %v", st.TotalClaimed, st.TotalAllocated)
	if st.Locked && !st.AssetConfigured {
		acc.Addf("ledger locked with no asset configured")
	}
	if st.Locked {
		acc.Require(st.Outstanding().LessThanEqual(st.HeldBalance),
			"locked ledger underfunded: outstanding %v, held %v", st.Outstanding(), st.HeldBalance)
	}

	recipientCount := 0
	allocatedSum := big.Zero()
	claimedSum := big.Zero()

	if allocations, err := st.LoadAllocations(store); err != nil {
		acc.Addf("error loading allocations: %v", err)
	} else {
		var alloc Allocation
		err = allocations.ForEach(&alloc, func(key string) error {
			acc.Require(alloc.TotalAmount.GreaterThanEqual(big.Zero()), "allocation for %x is negative", key)
			acc.Require(alloc.ClaimedAmount.GreaterThanEqual(big.Zero()), "claimed amount for %x is negative", key)
			acc.Require(alloc.ClaimedAmount.LessThanEqual(alloc.TotalAmount),
				"claimed %v exceeds allocation %v for %x", alloc.ClaimedAmount, alloc.TotalAmount, key)
			recipientCount++
			allocatedSum = big.Add(allocatedSum, alloc.TotalAmount)
			claimedSum = big.Add(claimedSum, alloc.ClaimedAmount)
			return nil
		})
		acc.RequireNoError(err, "error iterating allocations")
	}

	acc.Require(allocatedSum.Equals(st.TotalAllocated),
		"allocation sum %v does not match recorded total %v", allocatedSum, st.TotalAllocated)
	acc.Require(claimedSum.Equals(st.TotalClaimed),
		"claimed sum %v does not match recorded total %v", claimedSum, st.TotalClaimed)

	return &StateSummary{
		RecipientCount: recipientCount,
		TotalAllocated: allocatedSum,
		TotalClaimed:   claimedSum,
		HeldBalance:    st.HeldBalance,
	}, acc
}
