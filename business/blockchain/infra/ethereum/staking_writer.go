package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
	"github.com/fd1az/aurora-staking/internal/apperror"
)

// TxSender submits encoded calls and waits for the receipt.
type TxSender interface {
	From() common.Address
	Transact(ctx context.Context, to common.Address, data []byte) (*domain.Receipt, error)
}

// StakingWriter encodes and submits staking contract and ERC20 approval
// transactions.
type StakingWriter struct {
	staking common.Address
	sender  TxSender

	stakingABI abi.ABI
	erc20ABI   abi.ABI
}

// NewStakingWriter creates a writer for the staking contract at address.
func NewStakingWriter(sender TxSender, staking common.Address) (*StakingWriter, error) {
	stakingABI, err := abi.JSON(strings.NewReader(StakingABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse staking ABI: %w", err)
	}
	erc20ABI, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	return &StakingWriter{
		staking:    staking,
		sender:     sender,
		stakingABI: stakingABI,
		erc20ABI:   erc20ABI,
	}, nil
}

// Signer returns the address transactions are sent from.
func (w *StakingWriter) Signer() common.Address {
	return w.sender.From()
}

// ApproveMax grants the staking contract an unlimited allowance of token.
func (w *StakingWriter) ApproveMax(ctx context.Context, token common.Address) (*domain.Receipt, error) {
	data, err := w.erc20ABI.Pack(methodApprove, w.staking, math.MaxBig256)
	if err != nil {
		return nil, encodeError(methodApprove, err)
	}
	return w.sender.Transact(ctx, token, data)
}

// Stake deposits amount of the base token.
func (w *StakingWriter) Stake(ctx context.Context, amount *big.Int) (*domain.Receipt, error) {
	return w.send(ctx, methodStake, amount)
}

// Unstake moves amount of staked base token to pending.
func (w *StakingWriter) Unstake(ctx context.Context, amount *big.Int) (*domain.Receipt, error) {
	return w.send(ctx, methodUnstake, amount)
}

// UnstakeAll moves the whole deposit to pending.
func (w *StakingWriter) UnstakeAll(ctx context.Context) (*domain.Receipt, error) {
	return w.send(ctx, methodUnstakeAll)
}

// Withdraw transfers a released pending amount for one stream.
func (w *StakingWriter) Withdraw(ctx context.Context, streamID uint64) (*domain.Receipt, error) {
	return w.send(ctx, methodWithdraw, new(big.Int).SetUint64(streamID))
}

// WithdrawAll transfers every released pending amount.
func (w *StakingWriter) WithdrawAll(ctx context.Context) (*domain.Receipt, error) {
	return w.send(ctx, methodWithdrawAll)
}

// MoveRewardsToPending starts the release period for one stream's rewards.
func (w *StakingWriter) MoveRewardsToPending(ctx context.Context, streamID uint64) (*domain.Receipt, error) {
	return w.send(ctx, methodMoveRewardsToPending, new(big.Int).SetUint64(streamID))
}

// MoveAllRewardsToPending starts the release period for every stream.
func (w *StakingWriter) MoveAllRewardsToPending(ctx context.Context) (*domain.Receipt, error) {
	return w.send(ctx, methodMoveAllRewardsToPending)
}

func (w *StakingWriter) send(ctx context.Context, method string, args ...any) (*domain.Receipt, error) {
	data, err := w.stakingABI.Pack(method, args...)
	if err != nil {
		return nil, encodeError(method, err)
	}
	return w.sender.Transact(ctx, w.staking, data)
}

func encodeError(method string, err error) error {
	return apperror.New(apperror.CodeInvalidInput,
		apperror.WithCause(err),
		apperror.WithContext("encode "+method))
}
