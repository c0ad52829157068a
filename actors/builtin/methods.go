package builtin

import (
	"github.com/filecoin-project/go-state-types/abi"
)

const (
	MethodSend        = abi.MethodNum(0)
	MethodConstructor = abi.MethodNum(1)
)

type vestingMethods struct {
	Constructor        abi.MethodNum
	ConfigureVesting   abi.MethodNum
	Deposit            abi.MethodNum
	BatchWhitelist     abi.MethodNum
	StartVesting       abi.MethodNum
	Claim              abi.MethodNum
	SetPause           abi.MethodNum
	VestingInfo        abi.MethodNum
	GetSchedule        abi.MethodNum
	ContractBalance    abi.MethodNum
	AmountNeededToFund abi.MethodNum
	NextUnlockTime     abi.MethodNum
	AllRecipients      abi.MethodNum
}

var MethodsVesting = vestingMethods{MethodConstructor, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}

// Methods of the external fungible-token actor this ledger disburses.
// The token actor is the treasury adapter: it holds balances for addresses and
// moves value between them on instruction.
type tokenMethods struct {
	Constructor   abi.MethodNum
	Transfer      abi.MethodNum
	EnsureAccount abi.MethodNum
	BalanceOf     abi.MethodNum
}

var MethodsToken = tokenMethods{MethodConstructor, 2, 3, 4}
