package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
	ErrNotPositive     = errors.New("asset: amount must be positive")
)

// Amount is an immutable Value Object representing a quantity of a token.
// The raw value is always in the smallest on-chain unit.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates a new Amount from a raw big.Int value.
// The raw value must be in the smallest on-chain unit.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw), // defensive copy
		asset: asset,
	}
}

// Zero creates a zero Amount for the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, big.NewInt(0))
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// -----------------------------------------------------------------------------
// Boundary Functions (integer -> decimal/float domain)
// -----------------------------------------------------------------------------

// ToDecimal converts the amount to a token-denominated decimal.Decimal.
// The shift by 10^decimals is exact; no precision is lost here.
// This is a BOUNDARY function - the integer domain ends at this call.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return Units(a.raw, a.asset.Decimals())
}

// Units converts a raw on-chain quantity to whole-token units without
// rounding. Callers that only know the decimals use it directly.
func Units(raw *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ParseDecimal creates an Amount from a decimal value.
// This is a BOUNDARY function - use for parsing user input.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	// Scale up by decimals
	scaled := d.Shift(int32(asset.Decimals()))

	// Check if result is an integer (no fractional part lost)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(asset, scaled.BigInt()), nil
}

// ParseString creates an Amount from a string decimal value.
func ParseString(asset *Asset, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(asset, d)
}

// ParsePositive parses user input that must be strictly greater than zero,
// such as a stake or unstake amount.
func ParsePositive(asset *Asset, s string) (Amount, error) {
	a, err := ParseString(asset, s)
	if err != nil {
		return Amount{}, err
	}
	if !a.IsPositive() {
		return Amount{}, ErrNotPositive
	}
	return a, nil
}

// -----------------------------------------------------------------------------
// Display
// -----------------------------------------------------------------------------

// StringFixed returns a string with fixed decimal places.
func (a Amount) StringFixed(places int32) string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().StringFixed(places), a.asset.Symbol())
}
