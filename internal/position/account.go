package position

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Account is a strategy's capital balance.
type Account struct {
	initial decimal.Decimal
	balance decimal.Decimal
}

func NewAccount(initial decimal.Decimal) *Account {
	return &Account{initial: initial, balance: initial}
}

func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Initial() decimal.Decimal { return a.initial }

// CanAfford reports whether amount fits in the balance.
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.balance.GreaterThanOrEqual(amount)
}

// Debit removes amount from the balance. It never overdraws.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit %s: negative amount", amount)
	}
	if !a.CanAfford(amount) {
		return fmt.Errorf("debit %s from %s: %w", amount, a.balance, ErrInsufficientFunds)
	}
	a.balance = a.balance.Sub(amount)
	return nil
}

// Reset restores the initial balance.
func (a *Account) Reset() {
	a.balance = a.initial
}
