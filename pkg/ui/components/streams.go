// Package components renders the console views of protocol and account state.
package components

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/aurora-staking/pkg/ui"
)

// StreamRow is one reward stream, formatted by the caller.
type StreamRow struct {
	Symbol    string
	Start     string
	End       string
	Started   bool
	Progress  float64
	DailyRate decimal.Decimal
	Price     string // empty when unknown
	APR       float64
}

// StreamsComponent renders the reward stream table.
type StreamsComponent struct {
	rows []StreamRow
}

// NewStreamsComponent creates a new streams component.
func NewStreamsComponent() *StreamsComponent {
	return &StreamsComponent{}
}

// Update replaces the rows.
func (s *StreamsComponent) Update(rows []StreamRow) {
	s.rows = rows
}

// View renders the streams table.
func (s *StreamsComponent) View() string {
	if len(s.rows) == 0 {
		return ui.MutedValue.Render("No reward streams")
	}

	var b strings.Builder
	b.WriteString(ui.HeaderStyle.Render("REWARD STREAMS"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-6s  %-10s  %-10s  %8s  %16s  %12s  %9s\n",
		"Stream", "Start", "End", "Progress", "Daily", "Price", "APR")
	b.WriteString(ui.MutedValue.Render("  "+strings.Repeat("─", 82)) + "\n")

	for _, r := range s.rows {
		price := r.Price
		if price == "" {
			price = "n/a"
		}

		start := r.Start
		if !r.Started {
			start = ui.WarningValue.Render(fmt.Sprintf("%-10s", start))
		}

		apr := ui.PositiveValue.Render(fmt.Sprintf("%8.2f%%", r.APR))
		if r.APR == 0 {
			apr = ui.MutedValue.Render(fmt.Sprintf("%8.2f%%", r.APR))
		}

		fmt.Fprintf(&b, "  %-6s  %-10s  %-10s  %7.1f%%  %16s  %12s  %s\n",
			r.Symbol, start, r.End, r.Progress, r.DailyRate.StringFixed(2), price, apr)
	}

	return b.String()
}
