// Package network holds the immutable per-deployment configuration:
// contract addresses, RPC endpoint, chain id and the ordered reward streams.
package network

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/asset"
)

const (
	// VoteSymbol marks the stream that drives supply and voting power.
	VoteSymbol = "VOTE"

	// BaseStreamID is the staking contract's id for the base token stream.
	BaseStreamID uint64 = 0

	// DefaultBaseOracleKey is the price-oracle key of the base token.
	DefaultBaseOracleKey = "aurora-near"
)

// StreamParams is the raw description of one reward stream.
type StreamParams struct {
	ID           uint64
	Symbol       string
	Name         string
	Decimals     uint8
	Address      string
	CoingeckoKey string
}

// Params is the raw description of a network deployment.
type Params struct {
	Name           string
	ChainID        uint64
	RPCURL         string
	WSURL          string
	TokenAddress   string
	StakingAddress string
	BaseOracleKey  string
	Streams        []StreamParams
}

// Stream is the static identity of a reward stream.
type Stream struct {
	id           uint64
	token        *asset.Asset
	coingeckoKey string
}

// ID returns the staking contract stream id.
func (s Stream) ID() uint64 { return s.id }

// Asset returns the reward token.
func (s Stream) Asset() *asset.Asset { return s.token }

// Symbol returns the stream symbol.
func (s Stream) Symbol() string { return s.token.Symbol() }

// Name returns the display name.
func (s Stream) Name() string { return s.token.Name() }

// Decimals returns the token decimals.
func (s Stream) Decimals() uint8 { return s.token.Decimals() }

// Address returns the reward token contract.
func (s Stream) Address() common.Address { return s.token.Address() }

// CoingeckoKey returns the price-oracle key.
func (s Stream) CoingeckoKey() string { return s.coingeckoKey }

// IsVote reports whether this is the vote stream.
func (s Stream) IsVote() bool { return s.token.Symbol() == VoteSymbol }

// Config is an immutable network configuration.
// It is built once at startup and passed to every component constructor.
type Config struct {
	name           string
	chainID        uint64
	rpcURL         string
	wsURL          string
	stakingAddress common.Address
	base           Stream
	streams        []Stream
	voteIndex      int
}

// New validates p and builds a Config.
// A network without exactly one VOTE stream is a CONFIGURATION_ERROR.
func New(p Params) (*Config, error) {
	if p.RPCURL == "" {
		return nil, configError(p.Name, "rpc url is required")
	}
	if p.ChainID == 0 {
		return nil, configError(p.Name, "chain id is required")
	}
	if !common.IsHexAddress(p.TokenAddress) {
		return nil, configError(p.Name, fmt.Sprintf("invalid token address %q", p.TokenAddress))
	}
	if !common.IsHexAddress(p.StakingAddress) {
		return nil, configError(p.Name, fmt.Sprintf("invalid staking address %q", p.StakingAddress))
	}

	baseKey := p.BaseOracleKey
	if baseKey == "" {
		baseKey = DefaultBaseOracleKey
	}

	baseToken := asset.MustNewToken(p.ChainID, common.HexToAddress(p.TokenAddress), "AURORA", "Aurora", 18)

	c := &Config{
		name:           p.Name,
		chainID:        p.ChainID,
		rpcURL:         p.RPCURL,
		wsURL:          p.WSURL,
		stakingAddress: common.HexToAddress(p.StakingAddress),
		base:           Stream{id: BaseStreamID, token: baseToken, coingeckoKey: baseKey},
		streams:        make([]Stream, 0, len(p.Streams)),
		voteIndex:      -1,
	}

	for i, sp := range p.Streams {
		if sp.Symbol == "" {
			return nil, configError(p.Name, fmt.Sprintf("stream %d has no symbol", i))
		}
		if sp.Decimals > asset.MaxDecimals {
			return nil, configError(p.Name, fmt.Sprintf("stream %s decimals %d out of range", sp.Symbol, sp.Decimals))
		}
		if !common.IsHexAddress(sp.Address) || common.HexToAddress(sp.Address) == (common.Address{}) {
			return nil, configError(p.Name, fmt.Sprintf("stream %s has invalid address %q", sp.Symbol, sp.Address))
		}
		if sp.CoingeckoKey == "" {
			return nil, configError(p.Name, fmt.Sprintf("stream %s has no price-oracle key", sp.Symbol))
		}

		token := asset.MustNewToken(p.ChainID, common.HexToAddress(sp.Address), sp.Symbol, sp.Name, sp.Decimals)
		c.streams = append(c.streams, Stream{id: sp.ID, token: token, coingeckoKey: sp.CoingeckoKey})

		if strings.EqualFold(sp.Symbol, VoteSymbol) {
			if c.voteIndex >= 0 {
				return nil, configError(p.Name, "more than one VOTE stream")
			}
			c.voteIndex = i
		}
	}

	if c.voteIndex < 0 {
		return nil, configError(p.Name, "no VOTE stream configured")
	}

	return c, nil
}

func configError(network, msg string) error {
	return apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf("network %s: %s", network, msg)))
}

// Name returns the network name.
func (c *Config) Name() string { return c.name }

// ChainID returns the chain id.
func (c *Config) ChainID() uint64 { return c.chainID }

// RPCURL returns the HTTP RPC endpoint.
func (c *Config) RPCURL() string { return c.rpcURL }

// WSURL returns the websocket RPC endpoint, if any.
func (c *Config) WSURL() string { return c.wsURL }

// TokenAddress returns the base token contract.
func (c *Config) TokenAddress() common.Address { return c.base.Address() }

// StakingAddress returns the staking contract.
func (c *Config) StakingAddress() common.Address { return c.stakingAddress }

// BaseAsset returns the base staking token.
func (c *Config) BaseAsset() *asset.Asset { return c.base.token }

// Base returns the base token stream (id 0).
func (c *Config) Base() Stream { return c.base }

// Streams returns the reward streams, excluding the base stream.
func (c *Config) Streams() []Stream {
	out := make([]Stream, len(c.streams))
	copy(out, c.streams)
	return out
}

// AllStreams returns the base stream followed by the reward streams.
// Index i of the result lines up with index i of schedules, decimals
// and oracle keys.
func (c *Config) AllStreams() []Stream {
	out := make([]Stream, 0, len(c.streams)+1)
	out = append(out, c.base)
	return append(out, c.streams...)
}

// StreamIDs returns the ids of AllStreams.
func (c *Config) StreamIDs() []uint64 {
	all := c.AllStreams()
	ids := make([]uint64, len(all))
	for i, s := range all {
		ids[i] = s.id
	}
	return ids
}

// OracleKeys returns the price-oracle keys of AllStreams.
func (c *Config) OracleKeys() []string {
	all := c.AllStreams()
	keys := make([]string, len(all))
	for i, s := range all {
		keys[i] = s.coingeckoKey
	}
	return keys
}

// VoteStream returns the vote stream.
func (c *Config) VoteStream() Stream { return c.streams[c.voteIndex] }

// VoteIndex returns the vote stream's position within Streams().
func (c *Config) VoteIndex() int { return c.voteIndex }

// RegisterAssets adds every stream token to r.
func (c *Config) RegisterAssets(r *asset.Registry) {
	for i, s := range c.AllStreams() {
		registered := r.Ensure(s.token)
		if i == 0 {
			c.base.token = registered
			continue
		}
		c.streams[i-1].token = registered
	}
}
