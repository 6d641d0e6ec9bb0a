package main

import (
	"math/big"
	"testing"

	stakingDomain "github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/asset"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1", "1000000000000000000", false},
		{"12.5", "12500000000000000000", false},
		{"0.000000000000000001", "1", false},
		{"0.0000000000000000001", "", true},
		{"0", "", true},
		{"-3", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		got, err := parseAmount(tt.in, asset.AuroraMainnet)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseAmount(%q) expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		want, _ := new(big.Int).SetString(tt.want, 10)
		if got.Cmp(want) != 0 {
			t.Errorf("parseAmount(%q) = %s, want %s", tt.in, got, want)
		}
	}
}

func TestParseAction(t *testing.T) {
	a, err := parseAction("stake", "2", 0, asset.AuroraMainnet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Kind != stakingDomain.ActionStake {
		t.Errorf("kind = %v, want stake", a.Kind)
	}

	if _, err := parseAction("stake", "", 0, asset.AuroraMainnet); err == nil {
		t.Error("stake without an amount should fail")
	}

	a, err = parseAction("claim", "", 3, asset.AuroraMainnet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.StreamID != 3 {
		t.Errorf("stream = %d, want 3", a.StreamID)
	}
}
