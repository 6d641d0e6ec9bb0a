package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

func TestUserSharesValue(t *testing.T) {
	tests := []struct {
		name                           string
		totalStaked, userShares, total int64
		want                           int64
	}{
		{"no shares issued", 1000, 0, 0, 0},
		{"quarter", 1000, 25, 100, 250},
		{"floors", 10, 1, 3, 3},
		{"whole pool", 777, 5, 5, 777},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UserSharesValue(big.NewInt(tt.totalStaked), big.NewInt(tt.userShares), big.NewInt(tt.total))
			if got.Int64() != tt.want {
				t.Errorf("UserSharesValue() = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestVoteTotalBalance(t *testing.T) {
	got := VoteTotalBalance(big.NewInt(5), big.NewInt(7), nil)
	if got.Int64() != 12 {
		t.Errorf("VoteTotalBalance() = %s, want 12", got)
	}
}

func TestAccountSnapshot_Withdrawable(t *testing.T) {
	s := &AccountSnapshot{
		Pending: []PendingWithdrawal{
			{StreamID: 0, Amount: big.NewInt(1), ReleaseTimeMs: 1000},
			{StreamID: 5, Amount: big.NewInt(2), ReleaseTimeMs: 3000},
		},
	}

	if got := s.Withdrawable(999); len(got) != 0 {
		t.Errorf("expected nothing released, got %v", got)
	}
	got := s.Withdrawable(1000)
	if len(got) != 1 || got[0].StreamID != 0 {
		t.Errorf("expected stream 0 released at its release time, got %v", got)
	}
	if got := s.Withdrawable(5000); len(got) != 2 {
		t.Errorf("expected both released, got %v", got)
	}

	if p, ok := s.PendingFor(5); !ok || p.Amount.Int64() != 2 {
		t.Errorf("PendingFor(5) = %v, %v", p, ok)
	}
	if _, ok := s.PendingFor(2); ok {
		t.Error("PendingFor(2) should be absent")
	}
}

func TestAccountSnapshot_WithAllowanceCopies(t *testing.T) {
	orig := &AccountSnapshot{
		Allowance:  big.NewInt(1),
		UserShares: big.NewInt(3),
		Streams:    []StreamBalance{{StreamID: 2, StreamedAmount: big.NewInt(4)}},
	}
	at := time.Unix(100, 0)

	next := orig.WithAllowance(big.NewInt(9), at)
	next.Streams[0].StreamID = 99

	if orig.Allowance.Int64() != 1 {
		t.Errorf("original allowance mutated: %s", orig.Allowance)
	}
	if orig.Streams[0].StreamID != 2 {
		t.Error("original streams mutated")
	}
	if next.Allowance.Int64() != 9 || !next.SyncedAt.Equal(at) || !next.HasShares() {
		t.Errorf("unexpected copy: %+v", next)
	}
	if next.NeedsApproval(big.NewInt(9)) || !next.NeedsApproval(big.NewInt(10)) {
		t.Error("NeedsApproval mismatch")
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		amount   *big.Int
		stream   uint64
		want     ActionKind
		wantCode apperror.Code
	}{
		{name: "approve", want: ActionApprove},
		{name: "Stake", amount: big.NewInt(10), want: ActionStake},
		{name: "stake", amount: big.NewInt(0), wantCode: apperror.CodeInvalidInput},
		{name: "unstake", wantCode: apperror.CodeInvalidInput},
		{name: "claim", stream: 3, want: ActionClaim},
		{name: " withdraw-all ", want: ActionWithdrawAll},
		{name: "bridge", wantCode: apperror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAction(tt.name, tt.amount, tt.stream)
			if tt.wantCode != "" {
				if !apperror.HasCode(err, tt.wantCode) {
					t.Errorf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Kind != tt.want || a.StreamID != tt.stream {
				t.Errorf("ParseAction() = %+v", a)
			}
		})
	}
}

func TestParseAction_DropsUnusedFields(t *testing.T) {
	tests := []struct {
		name string
		want Action
	}{
		{"approve", Approve()},
		{"claim-all", ClaimAll()},
		{"unstake-all", UnstakeAll()},
		{"withdraw", Withdraw(9)},
		{"stake", Stake(big.NewInt(5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAction(tt.name, big.NewInt(5), 9)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Kind != tt.want.Kind || a.StreamID != tt.want.StreamID {
				t.Errorf("ParseAction(%q) = %+v, want %+v", tt.name, a, tt.want)
			}
			if (a.Amount == nil) != (tt.want.Amount == nil) {
				t.Errorf("ParseAction(%q) amount = %v, want %v", tt.name, a.Amount, tt.want.Amount)
			}
		})
	}
}

func TestAction_String(t *testing.T) {
	if got := Claim(3).String(); got != "claim(stream 3)" {
		t.Errorf("Claim(3).String() = %q", got)
	}
	if got := Stake(big.NewInt(5)).String(); got != "stake(5)" {
		t.Errorf("Stake(5).String() = %q", got)
	}
	if !Approve().ResyncsAllowanceOnly() || ClaimAll().ResyncsAllowanceOnly() {
		t.Error("only approve resyncs the allowance alone")
	}
}
