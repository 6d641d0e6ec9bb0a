package domain

import (
	"math/big"
	"time"

	pricing "github.com/fd1az/aurora-staking/business/pricing/domain"
)

// StreamMetrics is the per-cycle view of one reward stream.
type StreamMetrics struct {
	ID               uint64
	Symbol           string
	Name             string
	Decimals         uint8
	StartTimestampMs int64
	EndTimestampMs   int64
	IsStarted        bool
	ProgressPct      float64
	DailyRate        *big.Int
	UnitPrice        pricing.UnitPrice
	APR              float64
}

// ProtocolMetrics is the protocol-wide result of one metrics cycle.
// Streams excludes the base stream; PerStreamAPR lines up with it.
type ProtocolMetrics struct {
	BaseAPR               float64
	TotalAPR              float64
	PerStreamAPR          []float64
	VoteCirculatingSupply *big.Int
	StakedPctOfSupply     float64
	StakedPctAvailable    bool

	Base        StreamMetrics
	Streams     []StreamMetrics
	TotalStaked *big.Int
	ComputedAt  time.Time
}
