package infra

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/shopspring/decimal"

	blockchainDomain "github.com/fd1az/aurora-staking/business/blockchain/domain"
	rewardsDomain "github.com/fd1az/aurora-staking/business/rewards/domain"
	"github.com/fd1az/aurora-staking/business/staking/domain"
	"github.com/fd1az/aurora-staking/internal/asset"
	"github.com/fd1az/aurora-staking/internal/network"
	"github.com/fd1az/aurora-staking/pkg/ui"
	"github.com/fd1az/aurora-staking/pkg/ui/components"
)

const dateLayout = "2006-01-02"

// headStaleAfter flags a chain head that has not advanced for this long.
const headStaleAfter = time.Minute

// ConsoleReporter prints protocol metrics and account snapshots. Amounts
// are rendered through the asset registry of the configured chain.
type ConsoleReporter struct {
	out     io.Writer
	now     func() time.Time
	assets  *asset.Registry
	chainID uint64

	summary *components.SummaryComponent
	streams *components.StreamsComponent
	account *components.AccountComponent
	status  *components.StatusComponent
}

// NewConsoleReporter creates a ConsoleReporter writing to out, or stdout
// when out is nil. assets may be nil.
func NewConsoleReporter(out io.Writer, assets *asset.Registry, chainID uint64) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{
		out:     out,
		now:     time.Now,
		assets:  assets,
		chainID: chainID,
		summary: components.NewSummaryComponent(),
		streams: components.NewStreamsComponent(),
		account: components.NewAccountComponent(),
		status:  components.NewStatusComponent(headStaleAfter),
	}
}

// Start prints the banner.
func (r *ConsoleReporter) Start(networkName string) {
	fmt.Fprintln(r.out, ui.Title("Aurora Staking · "+networkName))
}

// ReportMetrics prints the protocol summary and the stream table.
func (r *ConsoleReporter) ReportMetrics(networkName string, m *rewardsDomain.ProtocolMetrics) {
	r.summary.Update(components.Summary{
		Network:            networkName,
		TotalAPR:           m.TotalAPR,
		BaseAPR:            m.BaseAPR,
		TotalStaked:        r.format(m.Base.Symbol, m.Base.Decimals, m.TotalStaked),
		VoteSupply:         r.format(network.VoteSymbol, voteDecimals(m), m.VoteCirculatingSupply),
		StakedPct:          m.StakedPctOfSupply,
		StakedPctAvailable: m.StakedPctAvailable,
	})

	rows := make([]components.StreamRow, 0, len(m.Streams)+1)
	for _, s := range append([]rewardsDomain.StreamMetrics{m.Base}, m.Streams...) {
		rows = append(rows, r.streamRow(s))
	}
	r.streams.Update(rows)

	fmt.Fprintln(r.out, ui.Box(r.summary.View()))
	fmt.Fprintln(r.out, r.streams.View())
}

// ReportAccount prints a snapshot. voteSupply is the circulating VOTE
// supply used for voting power; nil reports zero power.
func (r *ConsoleReporter) ReportAccount(snap *domain.AccountSnapshot, synced bool, voteSupply *big.Int) {
	if snap == nil {
		fmt.Fprintln(r.out, ui.MutedValue.Render("Account not synced yet"))
		return
	}

	const (
		baseSymbol   = "AURORA"
		baseDecimals = 18
	)
	nowMs := r.now().UnixMilli()

	voteDec := uint8(baseDecimals)
	streamed := make([]components.BalanceRow, 0, len(snap.Streams))
	for _, s := range snap.Streams {
		if s.Symbol == network.VoteSymbol {
			voteDec = s.Decimals
		}
		value := r.format(s.Symbol, s.Decimals, s.StreamedAmount)
		if p, ok := s.UnitPrice.Get(); ok && s.StreamedAmount.Sign() > 0 {
			usd := r.units(s.Symbol, s.Decimals, s.StreamedAmount).Mul(decimal.NewFromFloat(p))
			value += ui.MutedValue.Render(" ($" + usd.StringFixed(2) + ")")
		}
		streamed = append(streamed, components.BalanceRow{Label: s.Symbol, Value: value})
	}

	pending := make([]components.PendingRow, 0, len(snap.Pending))
	for _, p := range snap.Pending {
		pending = append(pending, components.PendingRow{
			Symbol:   p.Symbol,
			Amount:   r.format(p.Symbol, p.Decimals, p.Amount),
			Release:  time.UnixMilli(p.ReleaseTimeMs).UTC().Format(time.RFC3339),
			Released: p.IsReleased(nowMs),
		})
	}

	r.account.Update(components.Account{
		Address: snap.Account.Hex(),
		Balances: []components.BalanceRow{
			{Label: "Wallet", Value: r.format(baseSymbol, baseDecimals, snap.BaseBalance)},
			{Label: "Deposit", Value: r.format(baseSymbol, baseDecimals, snap.Deposit)},
			{Label: "Stake value", Value: r.format(baseSymbol, baseDecimals, snap.UserSharesValue)},
			{Label: "Shares", Value: snap.UserShares.String()},
			{Label: "Allowance", Value: r.formatAllowance(snap.Allowance)},
			{Label: "VOTE total", Value: r.format(network.VoteSymbol, voteDec, snap.VoteTotalBalance)},
		},
		Streamed:    streamed,
		Pending:     pending,
		VotingPower: rewardsDomain.VotingPowerPct(snap.VoteTotalBalance, voteSupply, voteDec),
		Synced:      synced,
		Paused:      snap.Paused,
	})

	fmt.Fprintln(r.out, r.account.View())
}

// ReportReceipt prints the outcome of an action.
func (r *ConsoleReporter) ReportReceipt(action domain.Action, receipt *blockchainDomain.Receipt) {
	state := ui.PositiveValue.Render("confirmed")
	if !receipt.Success {
		state = ui.NegativeValue.Render("reverted")
	}
	fmt.Fprintf(r.out, "%s %s in block #%d (tx %s, gas %d)\n",
		action.String(), state, receipt.BlockNumber, receipt.TxHash.Hex(), receipt.GasUsed)
}

// ReportConnection prints the head line of an RPC endpoint.
func (r *ConsoleReporter) ReportConnection(endpoint string, status blockchainDomain.ConnectionStatus) {
	r.status.Update(components.HeadStatus{
		Endpoint:   endpoint,
		State:      string(status.State),
		Polling:    status.UsingHTTP,
		LastBlock:  status.LastBlock,
		LastSeen:   status.LastSeen,
		Reconnects: status.Reconnects,
	})
	fmt.Fprint(r.out, r.status.View())
}

// Stop prints the shutdown line.
func (r *ConsoleReporter) Stop() {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Aurora Staking Stopped")
}

func (r *ConsoleReporter) streamRow(s rewardsDomain.StreamMetrics) components.StreamRow {
	price := ""
	if p, ok := s.UnitPrice.Get(); ok {
		price = "$" + decimal.NewFromFloat(p).StringFixed(4)
	}
	return components.StreamRow{
		Symbol:    s.Symbol,
		Start:     time.UnixMilli(s.StartTimestampMs).UTC().Format(dateLayout),
		End:       time.UnixMilli(s.EndTimestampMs).UTC().Format(dateLayout),
		Started:   s.IsStarted,
		Progress:  s.ProgressPct,
		DailyRate: r.units(s.Symbol, s.Decimals, s.DailyRate),
		Price:     price,
		APR:       s.APR,
	}
}

func voteDecimals(m *rewardsDomain.ProtocolMetrics) uint8 {
	for _, s := range m.Streams {
		if s.Symbol == network.VoteSymbol {
			return s.Decimals
		}
	}
	return 18
}

// lookup returns the registered asset for symbol on the reporter's chain,
// or an unregistered stand-in when the registry does not know it.
func (r *ConsoleReporter) lookup(symbol string, decimals uint8) *asset.Asset {
	if r.assets != nil {
		if a, ok := r.assets.GetBySymbolAndChain(symbol, r.chainID); ok && a.Decimals() == decimals {
			return a
		}
	}
	if symbol == "" {
		symbol = "?"
	}
	return asset.NewAsset(asset.NewNativeAssetID(r.chainID), symbol, decimals)
}

func (r *ConsoleReporter) amount(symbol string, decimals uint8, raw *big.Int) (asset.Amount, bool) {
	if raw == nil || raw.Sign() < 0 {
		return asset.Amount{}, false
	}
	return asset.NewAmount(r.lookup(symbol, decimals), raw), true
}

func (r *ConsoleReporter) units(symbol string, decimals uint8, raw *big.Int) decimal.Decimal {
	a, ok := r.amount(symbol, decimals, raw)
	if !ok {
		return decimal.Zero
	}
	return a.ToDecimal()
}

func (r *ConsoleReporter) format(symbol string, decimals uint8, raw *big.Int) string {
	a, ok := r.amount(symbol, decimals, raw)
	if !ok {
		return "-"
	}
	return a.StringFixed(4)
}

// allowanceUnlimited is the threshold above which an allowance prints as
// unlimited.
var allowanceUnlimited = new(big.Int).Lsh(big.NewInt(1), 255)

func (r *ConsoleReporter) formatAllowance(a *big.Int) string {
	if a != nil && a.Cmp(allowanceUnlimited) >= 0 {
		return "unlimited"
	}
	return r.format("AURORA", 18, a)
}
