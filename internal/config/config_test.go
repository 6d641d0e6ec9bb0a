package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fd1az/aurora-staking/internal/apperror"
	"github.com/fd1az/aurora-staking/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "app:\n  name: staking-test\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Name != "staking-test" {
		t.Errorf("expected app name from file, got %s", cfg.App.Name)
	}
	if cfg.Sync.SettleDelay != 2*time.Second {
		t.Errorf("expected 2s settle delay, got %s", cfg.Sync.SettleDelay)
	}

	params := cfg.NetworkParams()
	if params == nil {
		t.Fatal("expected network params after Load")
	}
	if params.Name() != "mainnet" || params.ChainID() != 1313161554 {
		t.Errorf("unexpected network %s/%d", params.Name(), params.ChainID())
	}
	if params.Base().CoingeckoKey() != "aurora-near" {
		t.Errorf("expected aurora-near base key, got %s", params.Base().CoingeckoKey())
	}
}

func TestLoad_NetworkOverride(t *testing.T) {
	body := `
network:
  selected: testnet
networks:
  testnet:
    rpc_url: http://localhost:8545
oracle:
  base_key: aurora-custom
sync:
  read_timeout: 3s
`
	cfg, err := config.Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := cfg.NetworkParams()
	if params.RPCURL() != "http://localhost:8545" {
		t.Errorf("expected overridden rpc url, got %s", params.RPCURL())
	}
	if params.ChainID() != 1313161555 {
		t.Errorf("expected testnet chain id, got %d", params.ChainID())
	}
	if params.Base().CoingeckoKey() != "aurora-custom" {
		t.Errorf("expected overridden base key, got %s", params.Base().CoingeckoKey())
	}
	if cfg.Sync.ReadTimeout != 3*time.Second {
		t.Errorf("expected 3s read timeout, got %s", cfg.Sync.ReadTimeout)
	}
}

func TestLoad_CustomNetworkWithoutVote(t *testing.T) {
	body := `
network:
  selected: devnet
networks:
  devnet:
    rpc_url: http://localhost:8545
    chain_id: 1337
    token_address: "0x8bec47865ade3b172a928df8f990bc7f2a3b9f79"
    staking_address: "0xccc2b1aD21666A5847A804a73a41F904C4a4A0Ec"
    streams:
      - id: 1
        symbol: TRI
        name: Trisolaris
        decimals: 18
        address: "0xFa94348467f64D5A457F75F8bc40495D33c65aBB"
        coingecko_key: trisolaris
`
	_, err := config.Load(writeConfig(t, body))
	if !errors.Is(err, apperror.New(apperror.CodeConfigurationError)) {
		t.Errorf("expected CONFIGURATION_ERROR, got %v", err)
	}
}

func TestLoad_UnknownNetwork(t *testing.T) {
	_, err := config.Load(writeConfig(t, "network:\n  selected: goerli\n"))
	if err == nil {
		t.Fatal("expected error for unknown network without definition")
	}
}

func TestTelemetryConfig_Headers(t *testing.T) {
	tc := config.TelemetryConfig{OTLPHeaders: "x-honeycomb-team=abc, api-key=k=v ,broken,=empty"}

	got := tc.Headers()
	if len(got) != 2 {
		t.Fatalf("expected 2 headers, got %v", got)
	}
	if got["x-honeycomb-team"] != "abc" {
		t.Errorf("x-honeycomb-team = %q", got["x-honeycomb-team"])
	}
	if got["api-key"] != "k=v" {
		t.Errorf("api-key = %q, want value split on the first '='", got["api-key"])
	}
}
