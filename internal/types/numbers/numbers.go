// Package numbers holds the fixed-point helpers shared by every amount on the chain.
// Token amounts are 18 decimal integers; values stay in wei as decimals until they
// are about to leave the process.
package numbers

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DivisionPrecision is the number of fractional digits kept by Div.
const DivisionPrecision int32 = 20

// TokenDecimals is the fixed-point scale of ORBS amounts.
const TokenDecimals int32 = 18

// FromBigInt converts a contract integer into a decimal. A nil value reads as zero.
func FromBigInt(b *big.Int) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(b, 0)
}

// FromString parses a base 10 integer string, e.g. "1000000000000000000".
func FromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustFromString is FromString for constants and tests.
func MustFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Div divides a by b keeping DivisionPrecision fractional digits.
func Div(a decimal.Decimal, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, DivisionPrecision)
}

// MulDiv computes a * b / c; c must not be zero.
func MulDiv(a decimal.Decimal, b decimal.Decimal, c decimal.Decimal) decimal.Decimal {
	return Div(a.Mul(b), c)
}

// ToDisplay scales a wei amount down by 10^18 for presentation.
func ToDisplay(d decimal.Decimal) float64 {
	return d.Shift(-TokenDecimals).InexactFloat64()
}

// BigToDisplay is ToDisplay for raw contract integers.
func BigToDisplay(b *big.Int) float64 {
	return ToDisplay(FromBigInt(b))
}

// Tokens converts a human amount into wei, mostly for fixtures.
func Tokens(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Shift(TokenDecimals)
}
