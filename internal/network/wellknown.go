package network

import (
	"fmt"
	"strings"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/asset"
)

// Well-known network names.
const (
	Mainnet = "mainnet"
	Testnet = "testnet"
)

// MainnetParams returns the Aurora mainnet deployment.
func MainnetParams() Params {
	return Params{
		Name:           Mainnet,
		ChainID:        asset.ChainIDAuroraMainnet,
		RPCURL:         "https://mainnet.aurora.dev",
		TokenAddress:   asset.AddrAuroraMainnet.Hex(),
		StakingAddress: "0xccc2b1aD21666A5847A804a73a41F904C4a4A0Ec",
		BaseOracleKey:  DefaultBaseOracleKey,
		Streams: []StreamParams{
			{ID: 1, Symbol: "PLY", Name: "Aurigami Token", Decimals: 18, Address: "0x09C9D464b58d96837f8d8b6f4d9fE4aD408d3A4f", CoingeckoKey: "aurigami"},
			{ID: 2, Symbol: "TRI", Name: "Trisolaris", Decimals: 18, Address: "0xFa94348467f64D5A457F75F8bc40495D33c65aBB", CoingeckoKey: "trisolaris"},
			{ID: 3, Symbol: "BSTN", Name: "Bastion", Decimals: 18, Address: "0x9f1f933c660a1dc856f0e0fe058435879c5ccef0", CoingeckoKey: "bastion-protocol"},
			{ID: 4, Symbol: "USN", Name: "USN", Decimals: 18, Address: "0x5183e1b1091804bc2602586919e6880ac1cf2896", CoingeckoKey: "usn"},
			{ID: 5, Symbol: "VOTE", Name: "Aurora Vote Token", Decimals: 18, Address: "0x6edE987A51d7b4d3945E7a76Af59Ff2b968910A8", CoingeckoKey: "vote"},
		},
	}
}

// TestnetParams returns the Aurora testnet deployment.
// The testnet has no dedicated vote token; VOTE reuses the BSTN stream.
func TestnetParams() Params {
	return Params{
		Name:           Testnet,
		ChainID:        asset.ChainIDAuroraTestnet,
		RPCURL:         "https://testnet.aurora.dev",
		TokenAddress:   asset.AddrAuroraTestnet.Hex(),
		StakingAddress: "0xC36692270012752e209ec7d074140eb1aF9065F6",
		BaseOracleKey:  DefaultBaseOracleKey,
		Streams: []StreamParams{
			{ID: 2, Symbol: "TRI", Name: "Trisolaris", Decimals: 18, Address: "0x42Fe1195219bBD26a530c189624CB4B268527596", CoingeckoKey: "trisolaris"},
			{ID: 3, Symbol: "BSTN", Name: "Bastion", Decimals: 18, Address: "0xB8793D1c6cc0cfE9C128700dCF2b3DAA072ed7EE", CoingeckoKey: "bastion-protocol"},
			{ID: 3, Symbol: "VOTE", Name: "Aurora Vote Token", Decimals: 18, Address: "0xB8793D1c6cc0cfE9C128700dCF2b3DAA072ed7EE", CoingeckoKey: "vote"},
		},
	}
}

// KnownParams returns the built-in parameters for name.
func KnownParams(name string) (Params, error) {
	switch strings.ToLower(name) {
	case Mainnet:
		return MainnetParams(), nil
	case Testnet:
		return TestnetParams(), nil
	default:
		return Params{}, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(fmt.Sprintf("unknown network %q", name)))
	}
}
