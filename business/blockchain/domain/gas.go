package domain

import (
	"math/big"
	"time"
)

// GasPrice represents gas price information.
type GasPrice struct {
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       wei,
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei.
func (g *GasPrice) Gwei() float64 {
	gwei := new(big.Float).SetInt(g.Wei)
	gwei.Quo(gwei, big.NewFloat(1e9))
	f, _ := gwei.Float64()
	return f
}

// GasEstimate represents estimated gas costs for a transaction.
type GasEstimate struct {
	GasLimit uint64
	GasPrice *GasPrice
	TotalWei *big.Int
}

// NewGasEstimate computes the total gas cost.
func NewGasEstimate(gasLimit uint64, gasPrice *GasPrice) *GasEstimate {
	return &GasEstimate{
		GasLimit: gasLimit,
		GasPrice: gasPrice,
		TotalWei: new(big.Int).Mul(gasPrice.Wei, new(big.Int).SetUint64(gasLimit)),
	}
}
