package components

import (
	"fmt"

	"github.com/fd1az/aurora-staking/pkg/ui"
)

// Summary holds protocol-wide figures for display.
type Summary struct {
	Network            string
	TotalAPR           float64
	BaseAPR            float64
	TotalStaked        string
	VoteSupply         string
	StakedPct          float64
	StakedPctAvailable bool
}

// SummaryComponent renders the protocol summary.
type SummaryComponent struct {
	summary Summary
}

// NewSummaryComponent creates a new summary component.
func NewSummaryComponent() *SummaryComponent {
	return &SummaryComponent{}
}

// Update updates the summary.
func (s *SummaryComponent) Update(summary Summary) {
	s.summary = summary
}

// View renders the summary component.
func (s *SummaryComponent) View() string {
	v := ui.StrongValue

	staked := ui.MutedValue.Render("n/a")
	if s.summary.StakedPctAvailable {
		staked = v.Render(fmt.Sprintf("%.2f%%", s.summary.StakedPct))
	}

	return ui.HeaderStyle.Render("PROTOCOL ("+s.summary.Network+")") + "\n" +
		fmt.Sprintf("Total APR: %s  │  Base APR: %s  │  Staked of supply: %s\n",
			ui.PositiveValue.Bold(true).Render(fmt.Sprintf("%.2f%%", s.summary.TotalAPR)),
			v.Render(fmt.Sprintf("%.2f%%", s.summary.BaseAPR)),
			staked,
		) +
		fmt.Sprintf("Total staked: %s  │  VOTE circulating: %s",
			v.Render(s.summary.TotalStaked),
			v.Render(s.summary.VoteSupply),
		)
}
