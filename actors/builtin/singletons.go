package builtin

import (
	addr "github.com/filecoin-project/go-address"
)

// Addresses of singleton actors in the host system.
var (
	SystemActorAddr = mustMakeAddress(0)
	InitActorAddr   = mustMakeAddress(1)
)

func mustMakeAddress(id uint64) addr.Address {
	address, err := addr.NewIDAddress(id)
	if err != nil {
		panic(err)
	}
	return address
}
