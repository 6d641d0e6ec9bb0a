package app

import (
	"context"
	"time"

	"github.com/fd1az/aurora-staking/business/blockchain/domain"
)

// BlockchainService coordinates chain head tracking and gas pricing.
type BlockchainService struct {
	watcher   HeadWatcher
	gasOracle GasOracle
}

// NewBlockchainService creates a new BlockchainService.
func NewBlockchainService(watcher HeadWatcher, gasOracle GasOracle) *BlockchainService {
	return &BlockchainService{
		watcher:   watcher,
		gasOracle: gasOracle,
	}
}

// SubscribeBlocks starts following the head and returns the channel.
func (s *BlockchainService) SubscribeBlocks(ctx context.Context) (<-chan *domain.Block, error) {
	return s.watcher.Start(ctx)
}

// LatestBlock fetches the current head.
func (s *BlockchainService) LatestBlock(ctx context.Context) (*domain.Block, error) {
	return s.watcher.LatestBlock(ctx)
}

// WaitForNextBlock waits for a head newer than the current one.
func (s *BlockchainService) WaitForNextBlock(ctx context.Context) (*domain.Block, error) {
	current, err := s.watcher.LatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	return s.watcher.WaitForNext(ctx, current.Number)
}

// ChainID returns the chain id of the connected node.
func (s *BlockchainService) ChainID(ctx context.Context) (uint64, error) {
	id, err := s.watcher.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// GasPrice retrieves the current gas price.
func (s *BlockchainService) GasPrice(ctx context.Context) (*domain.GasPrice, error) {
	return s.gasOracle.GasPrice(ctx)
}

// ConnectionState returns the current connection state.
func (s *BlockchainService) ConnectionState() domain.ConnectionState {
	return s.watcher.State()
}

// HeadAge returns how long ago a head was last seen. ok is false when no
// head has been seen yet.
func (s *BlockchainService) HeadAge(now time.Time) (age time.Duration, ok bool) {
	status := s.watcher.Status()
	if status.LastSeen.IsZero() {
		return 0, false
	}
	return now.Sub(status.LastSeen), true
}

// Status returns detailed connection status.
func (s *BlockchainService) Status() domain.ConnectionStatus {
	return s.watcher.Status()
}

// Close stops the head watcher and releases the gas oracle cache.
func (s *BlockchainService) Close() error {
	if c, ok := s.watcher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}
	if c, ok := s.gasOracle.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
