// Package domain contains the account-scoped staking model.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	pricing "github.com/fd1az/aurora-staking/business/pricing/domain"
)

// StreamBalance is an account's streamed (claimable) amount for one stream.
type StreamBalance struct {
	StreamID       uint64
	Symbol         string
	Decimals       uint8
	StreamedAmount *big.Int
	UnitPrice      pricing.UnitPrice
}

// PendingWithdrawal is an amount moved to pending and locked until ReleaseTimeMs.
type PendingWithdrawal struct {
	StreamID      uint64
	Symbol        string
	Amount        *big.Int
	Decimals      uint8
	ReleaseTimeMs int64
}

// IsReleased reports whether the amount can be withdrawn at nowMs.
func (p PendingWithdrawal) IsReleased(nowMs int64) bool {
	return nowMs >= p.ReleaseTimeMs
}

// AccountSnapshot is the complete view of one account at the end of a
// sync cycle. A published snapshot is never mutated.
type AccountSnapshot struct {
	Account common.Address

	BaseBalance *big.Int
	VoteBalance *big.Int
	Allowance   *big.Int
	Deposit     *big.Int

	UserShares  *big.Int
	TotalShares *big.Int
	TotalStaked *big.Int

	Pending []PendingWithdrawal
	Streams []StreamBalance

	BasePrice pricing.UnitPrice
	Paused    bool

	VoteTotalBalance *big.Int
	UserSharesValue  *big.Int
	VoteWithdrawable *big.Int

	SyncedAt time.Time
}

// HasShares reports whether the account holds any base stream shares.
func (s *AccountSnapshot) HasShares() bool {
	return s.UserShares != nil && s.UserShares.Sign() > 0
}

// Stream returns the streamed balance for id.
func (s *AccountSnapshot) Stream(id uint64) (StreamBalance, bool) {
	for _, b := range s.Streams {
		if b.StreamID == id {
			return b, true
		}
	}
	return StreamBalance{}, false
}

// PendingFor returns the pending withdrawal for id.
func (s *AccountSnapshot) PendingFor(id uint64) (PendingWithdrawal, bool) {
	for _, p := range s.Pending {
		if p.StreamID == id {
			return p, true
		}
	}
	return PendingWithdrawal{}, false
}

// Withdrawable returns the pending withdrawals released at nowMs.
func (s *AccountSnapshot) Withdrawable(nowMs int64) []PendingWithdrawal {
	var out []PendingWithdrawal
	for _, p := range s.Pending {
		if p.IsReleased(nowMs) {
			out = append(out, p)
		}
	}
	return out
}

// NeedsApproval reports whether staking amount requires a larger allowance.
func (s *AccountSnapshot) NeedsApproval(amount *big.Int) bool {
	return s.Allowance == nil || s.Allowance.Cmp(amount) < 0
}

// WithAllowance returns a copy of s carrying a new allowance.
func (s *AccountSnapshot) WithAllowance(allowance *big.Int, at time.Time) *AccountSnapshot {
	cp := *s
	cp.Allowance = new(big.Int).Set(allowance)
	cp.Pending = append([]PendingWithdrawal(nil), s.Pending...)
	cp.Streams = append([]StreamBalance(nil), s.Streams...)
	cp.SyncedAt = at
	return &cp
}

// UserSharesValue converts shares to base token:
// totalStaked * userShares / totalShares, or 0 without shares.
func UserSharesValue(totalStaked, userShares, totalShares *big.Int) *big.Int {
	if totalShares == nil || totalShares.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Mul(totalStaked, userShares)
	return out.Quo(out, totalShares)
}

// VoteTotalBalance is the wallet balance plus streamed and withdrawable vote.
func VoteTotalBalance(balance, streamed, withdrawable *big.Int) *big.Int {
	out := new(big.Int)
	for _, v := range []*big.Int{balance, streamed, withdrawable} {
		if v != nil {
			out.Add(out, v)
		}
	}
	return out
}
