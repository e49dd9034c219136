package main

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// lamportsDecimals is the number of lamports per SOL as a power of ten.
const lamportsDecimals = 9

// ParseSOL converts a decimal SOL amount such as "1.25" into lamports.
func ParseSOL(amountStr string) (uint64, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("amount must be positive")
	}

	lamports := amount.Shift(lamportsDecimals)
	if !lamports.IsInteger() {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amountStr, lamportsDecimals)
	}
	raw := lamports.BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %s is too large", amountStr)
	}
	return raw.Uint64(), nil
}

// FormatSOL renders lamports as a decimal SOL amount.
func FormatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -lamportsDecimals).String()
}
