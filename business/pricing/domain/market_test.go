package domain

import (
	"testing"

	"github.com/fd1az/aurora-staking/internal/apperror"
)

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name        string
		price       UnitPrice
		wantValue   float64
		wantPresent bool
		wantString  string
	}{
		{
			name:        "present_value",
			price:       SomePrice(0.135344),
			wantValue:   0.135344,
			wantPresent: true,
			wantString:  "$0.135344",
		},
		{
			name:        "present_zero_is_not_absent",
			price:       SomePrice(0),
			wantValue:   0,
			wantPresent: true,
			wantString:  "$0",
		},
		{
			name:        "absent",
			price:       NoPrice(),
			wantValue:   0,
			wantPresent: false,
			wantString:  "n/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := tt.price.Get()
			if v != tt.wantValue || ok != tt.wantPresent {
				t.Errorf("Get() = (%v, %v), want (%v, %v)", v, ok, tt.wantValue, tt.wantPresent)
			}
			if tt.price.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", tt.price.String(), tt.wantString)
			}
		})
	}
}

func TestNewMarketData_Alignment(t *testing.T) {
	keys := []string{"aurora-near", "trisolaris"}

	_, err := NewMarketData(keys, []UnitPrice{SomePrice(1)}, []UnitPrice{SomePrice(1), NoPrice()}, "test")
	if !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	md, err := NewMarketData(keys,
		[]UnitPrice{SomePrice(0.13), NoPrice()},
		[]UnitPrice{SomePrice(1e8), NoPrice()}, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if md.Price(1).IsPresent() {
		t.Error("expected missing price at index 1")
	}
	if md.Price(5).IsPresent() {
		t.Error("out of range index should be absent")
	}
	if err := md.AlignedTo(keys); err != nil {
		t.Errorf("unexpected alignment error: %v", err)
	}
	if err := md.AlignedTo([]string{"trisolaris", "aurora-near"}); !apperror.HasCode(err, apperror.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for reordered keys, got %v", err)
	}
}
