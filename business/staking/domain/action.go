package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

// ActionKind identifies a user-initiated staking transaction.
type ActionKind int

const (
	ActionApprove ActionKind = iota
	ActionStake
	ActionUnstake
	ActionUnstakeAll
	ActionWithdraw
	ActionWithdrawAll
	ActionClaim
	ActionClaimAll
)

var actionNames = map[ActionKind]string{
	ActionApprove:     "approve",
	ActionStake:       "stake",
	ActionUnstake:     "unstake",
	ActionUnstakeAll:  "unstake-all",
	ActionWithdraw:    "withdraw",
	ActionWithdrawAll: "withdraw-all",
	ActionClaim:       "claim",
	ActionClaimAll:    "claim-all",
}

// String returns the CLI name of the action kind.
func (k ActionKind) String() string {
	if name, ok := actionNames[k]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is one staking transaction request.
// Amount is used by Stake and Unstake, StreamID by Withdraw and Claim.
type Action struct {
	Kind     ActionKind
	Amount   *big.Int
	StreamID uint64
}

func Approve() Action                 { return Action{Kind: ActionApprove} }
func Stake(amount *big.Int) Action    { return Action{Kind: ActionStake, Amount: amount} }
func Unstake(amount *big.Int) Action  { return Action{Kind: ActionUnstake, Amount: amount} }
func UnstakeAll() Action              { return Action{Kind: ActionUnstakeAll} }
func Withdraw(streamID uint64) Action { return Action{Kind: ActionWithdraw, StreamID: streamID} }
func WithdrawAll() Action             { return Action{Kind: ActionWithdrawAll} }
func Claim(streamID uint64) Action    { return Action{Kind: ActionClaim, StreamID: streamID} }
func ClaimAll() Action                { return Action{Kind: ActionClaimAll} }

// Validate checks that amount-bearing actions carry a positive amount.
func (a Action) Validate() error {
	if _, ok := actionNames[a.Kind]; !ok {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("unknown action kind %d", int(a.Kind))))
	}
	if a.Kind == ActionStake || a.Kind == ActionUnstake {
		if a.Amount == nil || a.Amount.Sign() <= 0 {
			return apperror.New(apperror.CodeInvalidInput,
				apperror.WithContext(a.Kind.String()+" requires a positive amount"))
		}
	}
	return nil
}

// ResyncsAllowanceOnly reports whether only the allowance changes.
func (a Action) ResyncsAllowanceOnly() bool {
	return a.Kind == ActionApprove
}

func (a Action) String() string {
	switch a.Kind {
	case ActionStake, ActionUnstake:
		return fmt.Sprintf("%s(%s)", a.Kind, a.Amount)
	case ActionWithdraw, ActionClaim:
		return fmt.Sprintf("%s(stream %d)", a.Kind, a.StreamID)
	default:
		return a.Kind.String()
	}
}

// ParseAction builds an Action from its CLI name.
func ParseAction(name string, amount *big.Int, streamID uint64) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range actionNames {
		if n == name {
			a := newAction(kind, amount, streamID)
			return a, a.Validate()
		}
	}
	return Action{}, apperror.New(apperror.CodeInvalidInput,
		apperror.WithContext(fmt.Sprintf("unknown action %q", name)))
}

// newAction keeps only the fields kind uses.
func newAction(kind ActionKind, amount *big.Int, streamID uint64) Action {
	switch kind {
	case ActionApprove:
		return Approve()
	case ActionStake:
		return Stake(amount)
	case ActionUnstake:
		return Unstake(amount)
	case ActionUnstakeAll:
		return UnstakeAll()
	case ActionWithdraw:
		return Withdraw(streamID)
	case ActionWithdrawAll:
		return WithdrawAll()
	case ActionClaim:
		return Claim(streamID)
	default:
		return ClaimAll()
	}
}
