package builtin

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
)

// Wire types for the external fungible-token actor (the treasury adapter).
// These mirror the token actor's exported method parameters; the token actor
// itself is not part of this module.

// TransferParams instructs the token actor to move `Amount` of its asset from
// `From` to `To`. The token actor fails the message if `From` holds less than
// `Amount`, and enforces its own authorization policy for third-party moves.
type TransferParams struct {
	From   addr.Address
	To     addr.Address
	Amount abi.TokenAmount
}

// EnsureAccountParams idempotently prepares `Address` to receive the asset.
type EnsureAccountParams struct {
	Address addr.Address
}

// BalanceOfParams queries the token balance held by `Address`.
type BalanceOfParams struct {
	Address addr.Address
}
