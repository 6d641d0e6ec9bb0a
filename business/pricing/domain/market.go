// Package domain contains the core domain types for the pricing context.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

// UnitPrice is an optional USD value. An absent value is distinct from zero:
// the oracle may omit a key, or report 0 for a delisted token.
type UnitPrice struct {
	value   float64
	present bool
}

// SomePrice returns a present value.
func SomePrice(v float64) UnitPrice {
	return UnitPrice{value: v, present: true}
}

// NoPrice returns an absent value.
func NoPrice() UnitPrice {
	return UnitPrice{}
}

// Get returns the value and whether it is present.
func (p UnitPrice) Get() (float64, bool) {
	return p.value, p.present
}

// IsPresent reports whether a value was returned.
func (p UnitPrice) IsPresent() bool {
	return p.present
}

// OrZero returns the value, or 0 when absent.
func (p UnitPrice) OrZero() float64 {
	return p.value
}

// Decimal returns the value as a decimal, or zero when absent.
func (p UnitPrice) Decimal() decimal.Decimal {
	if !p.present {
		return decimal.Zero
	}
	return decimal.NewFromFloat(p.value)
}

func (p UnitPrice) String() string {
	if !p.present {
		return "n/a"
	}
	return fmt.Sprintf("$%g", p.value)
}

// MarketData holds unit prices and market caps for a list of oracle keys.
// All three slices are index-aligned.
type MarketData struct {
	Keys       []string
	Prices     []UnitPrice
	MarketCaps []UnitPrice
	Source     string
	FetchedAt  time.Time
}

// NewMarketData builds a MarketData and checks that every slice has the
// same length.
func NewMarketData(keys []string, prices, marketCaps []UnitPrice, source string) (*MarketData, error) {
	if len(prices) != len(keys) || len(marketCaps) != len(keys) {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("market data misaligned: %d keys, %d prices, %d market caps",
				len(keys), len(prices), len(marketCaps))))
	}

	return &MarketData{
		Keys:       append([]string(nil), keys...),
		Prices:     append([]UnitPrice(nil), prices...),
		MarketCaps: append([]UnitPrice(nil), marketCaps...),
		Source:     source,
		FetchedAt:  time.Now(),
	}, nil
}

// Len returns the number of entries.
func (m *MarketData) Len() int {
	return len(m.Keys)
}

// Price returns the unit price at index i, or NoPrice when out of range.
func (m *MarketData) Price(i int) UnitPrice {
	if i < 0 || i >= len(m.Prices) {
		return NoPrice()
	}
	return m.Prices[i]
}

// MarketCap returns the market cap at index i, or NoPrice when out of range.
func (m *MarketData) MarketCap(i int) UnitPrice {
	if i < 0 || i >= len(m.MarketCaps) {
		return NoPrice()
	}
	return m.MarketCaps[i]
}

// AlignedTo fails with INVALID_INPUT unless m was fetched for exactly keys,
// in order.
func (m *MarketData) AlignedTo(keys []string) error {
	if len(keys) != len(m.Keys) {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("expected %d keys, market data has %d", len(keys), len(m.Keys))))
	}
	for i, k := range keys {
		if !strings.EqualFold(k, m.Keys[i]) {
			return apperror.New(apperror.CodeInvalidInput,
				apperror.WithContext(fmt.Sprintf("key %d: expected %q, got %q", i, k, m.Keys[i])))
		}
	}
	return nil
}
