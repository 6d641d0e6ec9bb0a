package infra

import (
	"bytes"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/aurora-staking/business/blockchain/domain"
	pricingDomain "github.com/fd1az/aurora-staking/business/pricing/domain"
	rewardsDomain "github.com/fd1az/aurora-staking/business/rewards/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/asset"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestConsoleReporter_ReportMetrics(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, asset.DefaultRegistry(), asset.ChainIDAuroraMainnet)

	r.ReportMetrics("mainnet", &rewardsDomain.ProtocolMetrics{
		BaseAPR:               12.5,
		TotalAPR:              20,
		PerStreamAPR:          []float64{7.5},
		VoteCirculatingSupply: tokens(100),
		TotalStaked:           tokens(5000),
		Base: rewardsDomain.StreamMetrics{
			Symbol: "AURORA", Decimals: 18, DailyRate: tokens(10),
			StartTimestampMs: 1_640_000_000_000, EndTimestampMs: 1_760_000_000_000,
			IsStarted: true, ProgressPct: 50, UnitPrice: pricingDomain.SomePrice(0.1), APR: 12.5,
		},
		Streams: []rewardsDomain.StreamMetrics{{
			Symbol: "TRI", Decimals: 18, DailyRate: tokens(1),
			StartTimestampMs: 1_640_000_000_000, EndTimestampMs: 1_760_000_000_000,
			IsStarted: true, ProgressPct: 50, UnitPrice: pricingDomain.NoPrice(), APR: 7.5,
		}},
	})

	out := buf.String()
	for _, want := range []string{"mainnet", "AURORA", "TRI", "n/a", "20.00%", "5000.0000 AURORA", "2021-12-20"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_ReportAccount(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, asset.DefaultRegistry(), asset.ChainIDAuroraMainnet)
	r.now = func() time.Time { return time.UnixMilli(2_000) }

	r.ReportAccount(&domain.AccountSnapshot{
		Account:          signer,
		BaseBalance:      tokens(1),
		Deposit:          tokens(2),
		UserShares:       big.NewInt(10),
		UserSharesValue:  tokens(3),
		Allowance:        new(big.Int).Lsh(big.NewInt(1), 256),
		VoteTotalBalance: tokens(25),
		Streams: []domain.StreamBalance{
			{StreamID: 5, Symbol: "VOTE", Decimals: 18, StreamedAmount: tokens(4)},
		},
		Pending: []domain.PendingWithdrawal{
			{StreamID: 0, Symbol: "AURORA", Decimals: 18, Amount: tokens(1), ReleaseTimeMs: 1_000},
			{StreamID: 2, Symbol: "TRI", Decimals: 18, Amount: tokens(1), ReleaseTimeMs: 9_000},
		},
	}, false, tokens(100))

	out := buf.String()
	for _, want := range []string{signer.Hex(), "(stale)", "unlimited", "25.0000%", "withdrawable", "locked until", "4.0000 VOTE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleReporter_FormatsThroughRegistry(t *testing.T) {
	assets := asset.DefaultRegistry()
	six := asset.MustNewToken(asset.ChainIDAuroraMainnet,
		common.HexToAddress("0x5183e1b1091804bc2602586919e6880ac1cf2896"), "SIX", "Six Decimals", 6)
	assets.Register(six)

	r := NewConsoleReporter(&bytes.Buffer{}, assets, asset.ChainIDAuroraMainnet)

	if r.lookup("SIX", 6) != six {
		t.Error("registered asset should be used for display")
	}

	tests := []struct {
		name     string
		symbol   string
		decimals uint8
		raw      *big.Int
		want     string
	}{
		{"base token", "AURORA", 18, tokens(2), "2.0000 AURORA"},
		{"registered six decimals", "SIX", 6, big.NewInt(1_500_000), "1.5000 SIX"},
		{"unregistered symbol", "XYZ", 8, big.NewInt(250_000_000), "2.5000 XYZ"},
		{"decimals disagree with registry", "AURORA", 6, big.NewInt(3_000_000), "3.0000 AURORA"},
		{"missing value", "AURORA", 18, nil, "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.format(tt.symbol, tt.decimals, tt.raw); got != tt.want {
				t.Errorf("format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleReporter_WithoutRegistry(t *testing.T) {
	r := NewConsoleReporter(&bytes.Buffer{}, nil, asset.ChainIDAuroraMainnet)

	if got := r.formatAllowance(tokens(7)); got != "7.0000 AURORA" {
		t.Errorf("formatAllowance = %q", got)
	}
	if got := r.units("TRI", 18, tokens(3)); !got.Equal(asset.Units(tokens(3), 18)) {
		t.Errorf("units = %s", got)
	}
}

func TestConsoleReporter_ReportConnection(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf, nil, asset.ChainIDAuroraMainnet)

	r.ReportConnection("rpc", blockchainDomain.ConnectionStatus{
		State:      blockchainDomain.StateConnected,
		LastBlock:  4242,
		LastSeen:   time.Now(),
		Reconnects: 1,
		UsingHTTP:  true,
	})

	out := buf.String()
	for _, want := range []string{"rpc", "polling", "head #4242", "1 reconnects"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
