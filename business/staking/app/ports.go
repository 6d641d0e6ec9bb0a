// Package app contains the account synchronizer, the action runner and the
// ports they depend on.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/aurora-staking/business/blockchain/domain"
	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
)

// StakingReader is the read-only view of the staking contract.
type StakingReader interface {
	UserTotalDeposit(ctx context.Context, account common.Address) (*big.Int, error)
	UserShares(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error)
	TotalShares(ctx context.Context) (*big.Int, error)
	TotalStaked(ctx context.Context) (*big.Int, error)
	Pending(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error)
	// ReleaseTime returns the unlock time of a pending amount, in seconds.
	ReleaseTime(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error)
	StreamClaimable(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error)
	Paused(ctx context.Context) (bool, error)
}

// TokenReader reads ERC20 balances and allowances.
type TokenReader interface {
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// MarketDataProvider returns prices aligned to the requested keys.
type MarketDataProvider interface {
	MarketData(ctx context.Context, keys []string) (*pricingDomain.MarketData, error)
}

// TransactionSender submits an action on behalf of account and returns once
// it is confirmed.
type TransactionSender interface {
	Send(ctx context.Context, account common.Address, action domain.Action) (*blockchainDomain.Receipt, error)
}

// WalletSession reports the chain the signer is connected to.
type WalletSession interface {
	ChainID(ctx context.Context) (uint64, error)
}

// HeadSource waits for the chain head to advance.
type HeadSource interface {
	WaitForNextBlock(ctx context.Context) (*blockchainDomain.Block, error)
}

// AccountSyncer is what the action runner needs from the synchronizer.
type AccountSyncer interface {
	Sync(ctx context.Context, account common.Address) error
	SyncAllowance(ctx context.Context, account common.Address) error
}
