package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDAuroraMainnet = 1313161554
	ChainIDAuroraTestnet = 1313161555
)

// Base staking token addresses.
var (
	AddrAuroraMainnet = common.HexToAddress("0x8bec47865ade3b172a928df8f990bc7f2a3b9f79")
	AddrAuroraTestnet = common.HexToAddress("0x9D58bDE565c43727469B5972DE5768A31e5FAf12")
)

// Base staking token assets.
var (
	AuroraMainnet = NewAssetWithName(NewTokenAssetID(ChainIDAuroraMainnet, AddrAuroraMainnet), "AURORA", "Aurora", 18)
	AuroraTestnet = NewAssetWithName(NewTokenAssetID(ChainIDAuroraTestnet, AddrAuroraTestnet), "AURORA", "Aurora", 18)
)

// DefaultRegistry returns a registry pre-populated with the base tokens.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(AuroraMainnet)
	r.Register(AuroraTestnet)
	return r
}

// MustNewToken creates a new ERC20 token asset with the given parameters.
func MustNewToken(chainID uint64, address common.Address, symbol, name string, decimals uint8) *Asset {
	id := NewTokenAssetID(chainID, address)
	return NewAssetWithName(id, symbol, name, decimals)
}
