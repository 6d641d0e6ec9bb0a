package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	pricing "github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/asset"
)

const daysPerYear = 365

var (
	decimalDaysPerYear = decimal.NewFromInt(daysPerYear)
	decimalHundred     = decimal.NewFromInt(100)
)

// APRInput carries index-aligned inputs. Index 0 is the base token stream.
type APRInput struct {
	Schedules   []*Schedule
	Decimals    []uint8
	Prices      []pricing.UnitPrice
	TotalStaked *big.Int
	RefMs       int64
}

// APRResult holds annualized percentage yields.
// PerStream excludes the base stream; Base is its APR.
type APRResult struct {
	Total     float64
	PerStream []float64
	Base      float64
	DailyRate []*big.Int
}

// ComputeAPRs derives per-stream and total APR from one-day reward rates.
//
// Token amounts are converted to decimals exactly; float64 appears only in
// the returned percentages. A price may be absent only for a stream whose
// daily rate is zero, and never for the base stream.
func ComputeAPRs(in APRInput) (APRResult, error) {
	n := len(in.Schedules)
	if n == 0 {
		return APRResult{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("no schedules"))
	}
	if len(in.Decimals) != n || len(in.Prices) != n {
		return APRResult{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("misaligned input: %d schedules, %d decimals, %d prices",
				n, len(in.Decimals), len(in.Prices))))
	}
	if in.TotalStaked == nil || in.TotalStaked.Sign() < 0 {
		return APRResult{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("total staked must be non-negative"))
	}

	basePrice, ok := in.Prices[0].Get()
	if !ok {
		return APRResult{}, missingPrice(0)
	}

	rates := make([]*big.Int, n)
	flows := make([]decimal.Decimal, n)
	cumulated := decimal.Zero

	for i, s := range in.Schedules {
		rate, err := DailyRate(s, in.RefMs)
		if err != nil {
			return APRResult{}, err
		}
		rates[i] = rate

		price, ok := in.Prices[i].Get()
		if !ok {
			if rate.Sign() != 0 {
				return APRResult{}, missingPrice(i)
			}
			flows[i] = decimal.Zero
			continue
		}

		flows[i] = asset.Units(rate, in.Decimals[i]).
			Mul(decimalDaysPerYear).
			Mul(decimal.NewFromFloat(price))
		cumulated = cumulated.Add(flows[i])
	}

	stakedValue := asset.Units(in.TotalStaked, in.Decimals[0]).Mul(decimal.NewFromFloat(basePrice))

	all := make([]float64, n)
	total := 0.0
	if stakedValue.IsPositive() {
		total = percentOf(cumulated, stakedValue)
		for i := range flows {
			all[i] = percentOf(flows[i], stakedValue)
		}
	}

	return APRResult{
		Total:     total,
		PerStream: all[1:],
		Base:      all[0],
		DailyRate: rates,
	}, nil
}

// percentOf returns part*100/whole as the nearest float64.
func percentOf(part, whole decimal.Decimal) float64 {
	f, _ := part.Mul(decimalHundred).DivRound(whole, divisionPrecision).Float64()
	return f
}

// divisionPrecision is the number of decimal places kept by quotients before
// the final float conversion.
const divisionPrecision = 40

func missingPrice(i int) error {
	return apperror.New(apperror.CodeMissingPrice,
		apperror.WithContext(fmt.Sprintf("no unit price for stream at index %d", i)))
}
