// Package infra contains infrastructure adapters for the staking context.
package infra

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
)

// StakingWriter is the transaction surface of the staking contract.
type StakingWriter interface {
	Signer() common.Address
	ApproveMax(ctx context.Context, token common.Address) (*blockchainDomain.Receipt, error)
	Stake(ctx context.Context, amount *big.Int) (*blockchainDomain.Receipt, error)
	Unstake(ctx context.Context, amount *big.Int) (*blockchainDomain.Receipt, error)
	UnstakeAll(ctx context.Context) (*blockchainDomain.Receipt, error)
	Withdraw(ctx context.Context, streamID uint64) (*blockchainDomain.Receipt, error)
	WithdrawAll(ctx context.Context) (*blockchainDomain.Receipt, error)
	MoveRewardsToPending(ctx context.Context, streamID uint64) (*blockchainDomain.Receipt, error)
	MoveAllRewardsToPending(ctx context.Context) (*blockchainDomain.Receipt, error)
}

// ActionSender implements app.TransactionSender with a local signer.
type ActionSender struct {
	writer StakingWriter
	token  common.Address
}

// NewActionSender creates an ActionSender approving token for staking.
// writer may be nil when no signing key is configured; every Send then fails.
func NewActionSender(writer StakingWriter, token common.Address) *ActionSender {
	return &ActionSender{writer: writer, token: token}
}

// Send maps action onto the staking contract. The configured signer must be
// account.
func (s *ActionSender) Send(ctx context.Context, account common.Address, action domain.Action) (*blockchainDomain.Receipt, error) {
	if s.writer == nil {
		return nil, apperror.New(apperror.CodeActionFailed,
			apperror.WithContext("no signing key configured"))
	}
	if signer := s.writer.Signer(); signer != account {
		return nil, apperror.New(apperror.CodeActionFailed,
			apperror.WithContext(fmt.Sprintf("signer %s cannot act for %s", signer.Hex(), account.Hex())))
	}

	switch action.Kind {
	case domain.ActionApprove:
		return s.writer.ApproveMax(ctx, s.token)
	case domain.ActionStake:
		return s.writer.Stake(ctx, action.Amount)
	case domain.ActionUnstake:
		return s.writer.Unstake(ctx, action.Amount)
	case domain.ActionUnstakeAll:
		return s.writer.UnstakeAll(ctx)
	case domain.ActionWithdraw:
		return s.writer.Withdraw(ctx, action.StreamID)
	case domain.ActionWithdrawAll:
		return s.writer.WithdrawAll(ctx)
	case domain.ActionClaim:
		return s.writer.MoveRewardsToPending(ctx, action.StreamID)
	case domain.ActionClaimAll:
		return s.writer.MoveAllRewardsToPending(ctx)
	default:
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("unsupported action "+action.String()))
	}
}
