package ethereum

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/aurora-staking/internal/logger"
)

// TokenReader reads ERC20 balances and allowances for any token address.
type TokenReader struct {
	client ContractCaller
	logger logger.LoggerInterface

	mu     sync.Mutex
	tokens map[common.Address]*boundContract
}

// NewTokenReader creates a TokenReader.
func NewTokenReader(client ContractCaller, log logger.LoggerInterface) *TokenReader {
	return &TokenReader{
		client: client,
		logger: log,
		tokens: make(map[common.Address]*boundContract),
	}
}

// BalanceOf returns account's balance of token.
func (r *TokenReader) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	c, err := r.bind(token)
	if err != nil {
		return nil, err
	}
	return c.callUint(ctx, methodBalanceOf, account)
}

// Allowance returns how much of owner's token spender may transfer.
func (r *TokenReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	c, err := r.bind(token)
	if err != nil {
		return nil, err
	}
	return c.callUint(ctx, methodAllowance, owner, spender)
}

// bind returns the contract for token, creating it once per address so
// every token keeps its own breaker.
func (r *TokenReader) bind(token common.Address) (*boundContract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.tokens[token]; ok {
		return c, nil
	}

	c, err := newBoundContract("erc20-"+token.Hex()[:10], token, ERC20ABI, r.client, r.logger)
	if err != nil {
		return nil, err
	}
	r.tokens[token] = c
	return c, nil
}
