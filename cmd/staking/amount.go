package main

import (
	"fmt"
	"math/big"

	stakingDomain "github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/asset"
)

// parseAmount converts a decimal token amount into base units of token.
// An empty string yields nil so ParseAction reports the missing amount.
func parseAmount(s string, token *asset.Asset) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}

	amount, err := asset.ParsePositive(token, s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount.Raw(), nil
}

func parseAction(name, amount string, streamID uint64, token *asset.Asset) (stakingDomain.Action, error) {
	units, err := parseAmount(amount, token)
	if err != nil {
		return stakingDomain.Action{}, err
	}
	return stakingDomain.ParseAction(name, units, streamID)
}
