package types

import "math/big"

// Account holds the reserve-currency balance tracked for an address. Token
// holdings are recorded per launch by the state manager, not on the account
// itself, so that launches stay independent of one another.
type Account struct {
	Nonce          uint64   `json:"nonce"`
	BalanceReserve *big.Int `json:"balanceReserve"`
}

// Clone returns a deep copy so callers can mutate the result freely.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.BalanceReserve != nil {
		clone.BalanceReserve = new(big.Int).Set(a.BalanceReserve)
	} else {
		clone.BalanceReserve = big.NewInt(0)
	}
	return &clone
}
