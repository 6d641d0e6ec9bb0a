// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
)

// HeadWatcher follows the chain head.
type HeadWatcher interface {
	// Start begins following the head and returns a channel of new heads.
	Start(ctx context.Context) (<-chan *domain.Block, error)

	// LatestBlock fetches the current head.
	LatestBlock(ctx context.Context) (*domain.Block, error)

	// WaitForNext blocks until a head newer than after is seen.
	WaitForNext(ctx context.Context, after uint64) (*domain.Block, error)

	// ChainID returns the chain id reported by the node.
	ChainID(ctx context.Context) (*big.Int, error)

	// State returns the current connection state.
	State() domain.ConnectionState

	// Status returns detailed connection status.
	Status() domain.ConnectionStatus
}

// GasOracle defines the interface for gas price information.
type GasOracle interface {
	// GasPrice retrieves the current gas price.
	GasPrice(ctx context.Context) (*domain.GasPrice, error)

	// Estimate returns the gas limit and price for a call.
	Estimate(ctx context.Context, from, to common.Address, data []byte) (*domain.GasEstimate, error)
}
