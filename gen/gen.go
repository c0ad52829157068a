package main

import (
	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/vestlock/vesting-actors/actors/builtin"
	"github.com/vestlock/vesting-actors/actors/builtin/vesting"
)

func main() {
	// Shared types
	if err := gen.WriteTupleEncodersToFile("./actors/builtin/cbor_gen.go", "builtin",
		// token actor wire types
		builtin.TransferParams{},
		builtin.EnsureAccountParams{},
		builtin.BalanceOfParams{},
	); err != nil {
		panic(err)
	}

	// Actors
	if err := gen.WriteTupleEncodersToFile("./actors/builtin/vesting/cbor_gen.go", "vesting",
		// actor state
		vesting.State{},
		vesting.VestingSchedule{},
		vesting.Allocation{},
		// method params and returns
		vesting.DepositParams{},
		vesting.BatchWhitelistParams{},
		vesting.SetPauseParams{},
		vesting.VestingInfoReturn{},
		vesting.GetScheduleReturn{},
		vesting.NextUnlockTimeReturn{},
		vesting.RecipientAllocation{},
		vesting.AllRecipientsReturn{},
		// event payloads
		vesting.ClaimedEvent{},
	); err != nil {
		panic(err)
	}
}
