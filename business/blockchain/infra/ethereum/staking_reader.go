package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/logger"
)

// StakingReader reads the staking contract's view functions.
type StakingReader struct {
	contract *boundContract
}

// NewStakingReader binds a reader to the staking contract at address.
func NewStakingReader(client ContractCaller, address common.Address, log logger.LoggerInterface) (*StakingReader, error) {
	c, err := newBoundContract("staking", address, StakingABI, client, log)
	if err != nil {
		return nil, err
	}
	return &StakingReader{contract: c}, nil
}

// Address returns the staking contract address.
func (r *StakingReader) Address() common.Address {
	return r.contract.address
}

// UserTotalDeposit returns the base-token amount deposited by account.
func (r *StakingReader) UserTotalDeposit(ctx context.Context, account common.Address) (*big.Int, error) {
	return r.contract.callUint(ctx, methodUserTotalDeposit, account)
}

// UserShares returns account's shares in a stream.
func (r *StakingReader) UserShares(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error) {
	return r.contract.callUint(ctx, methodAmountOfShares, new(big.Int).SetUint64(streamID), account)
}

// TotalShares returns the total base-stream shares.
func (r *StakingReader) TotalShares(ctx context.Context) (*big.Int, error) {
	return r.contract.callUint(ctx, methodTotalShares)
}

// TotalStaked returns the total staked base token, including compounded rewards.
func (r *StakingReader) TotalStaked(ctx context.Context) (*big.Int, error) {
	return r.contract.callUint(ctx, methodTotalStaked)
}

// Pending returns account's pending withdrawal amount for a stream.
func (r *StakingReader) Pending(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error) {
	return r.contract.callUint(ctx, methodPending, new(big.Int).SetUint64(streamID), account)
}

// ReleaseTime returns the unix time in seconds at which account's pending
// amount for a stream becomes withdrawable.
func (r *StakingReader) ReleaseTime(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error) {
	return r.contract.callUint(ctx, methodReleaseTime, new(big.Int).SetUint64(streamID), account)
}

// StreamClaimable returns the amount streamed to account and not yet moved
// to pending. The contract reverts when account holds no shares.
func (r *StakingReader) StreamClaimable(ctx context.Context, streamID uint64, account common.Address) (*big.Int, error) {
	return r.contract.callUint(ctx, methodStreamClaimable, new(big.Int).SetUint64(streamID), account)
}

// StreamSchedule returns the raw schedule of a stream.
func (r *StakingReader) StreamSchedule(ctx context.Context, streamID uint64) ([]*big.Int, []*big.Int, error) {
	out, err := r.contract.call(ctx, methodStreamSchedule, new(big.Int).SetUint64(streamID))
	if err != nil {
		return nil, nil, err
	}

	if len(out) != 2 {
		return nil, nil, unexpectedOutput(r.contract.name, methodStreamSchedule, len(out))
	}

	times, ok := out[0].([]*big.Int)
	if !ok {
		return nil, nil, scheduleTypeError(streamID, out[0])
	}
	remaining, ok := out[1].([]*big.Int)
	if !ok {
		return nil, nil, scheduleTypeError(streamID, out[1])
	}

	return times, remaining, nil
}

// Paused reports whether the contract is paused. The contract encodes the
// flag as a uint256 where 1 means paused.
func (r *StakingReader) Paused(ctx context.Context) (bool, error) {
	v, err := r.contract.callUint(ctx, methodPaused)
	if err != nil {
		return false, err
	}
	return v.IsInt64() && v.Int64() == 1, nil
}

func scheduleTypeError(streamID uint64, got any) error {
	return apperror.New(apperror.CodeContractCallFailed,
		apperror.WithContext(fmt.Sprintf("stream %d schedule: unexpected type %T", streamID, got)))
}
