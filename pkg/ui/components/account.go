package components

import (
	"fmt"
	"strings"

	"github.com/fd1az/aurora-staking/pkg/ui"
)

// PendingRow is a pending withdrawal, formatted by the caller.
type PendingRow struct {
	Symbol   string
	Amount   string
	Release  string
	Released bool
}

// BalanceRow is a label/value pair.
type BalanceRow struct {
	Label string
	Value string
}

// Account holds account figures for display.
type Account struct {
	Address     string
	Balances    []BalanceRow
	Streamed    []BalanceRow
	Pending     []PendingRow
	VotingPower float64
	Synced      bool
	Paused      bool
}

// AccountComponent renders one account.
type AccountComponent struct {
	account *Account
}

// NewAccountComponent creates a new account component.
func NewAccountComponent() *AccountComponent {
	return &AccountComponent{}
}

// Update updates the account.
func (a *AccountComponent) Update(account Account) {
	a.account = &account
}

// View renders the account component.
func (a *AccountComponent) View() string {
	if a.account == nil {
		return ui.MutedValue.Render("No account")
	}
	acc := a.account

	var b strings.Builder
	b.WriteString(ui.HeaderStyle.Render("ACCOUNT " + acc.Address))
	if !acc.Synced {
		b.WriteString(" " + ui.WarningValue.Render("(stale)"))
	}
	if acc.Paused {
		b.WriteString(" " + ui.NegativeValue.Render("[staking paused]"))
	}
	b.WriteString("\n\n")

	for _, r := range acc.Balances {
		fmt.Fprintf(&b, "  %-18s %s\n", r.Label, ui.StrongValue.Render(r.Value))
	}
	fmt.Fprintf(&b, "  %-18s %s\n", "Voting power", ui.StrongValue.Render(fmt.Sprintf("%.4f%%", acc.VotingPower)))

	if len(acc.Streamed) > 0 {
		b.WriteString("\n" + ui.MutedValue.Render("  Streamed rewards") + "\n")
		for _, r := range acc.Streamed {
			fmt.Fprintf(&b, "  %-18s %s\n", r.Label, r.Value)
		}
	}

	if len(acc.Pending) > 0 {
		b.WriteString("\n" + ui.MutedValue.Render("  Pending withdrawals") + "\n")
		for _, p := range acc.Pending {
			state := ui.WarningValue.Render("locked until " + p.Release)
			if p.Released {
				state = ui.PositiveValue.Render("withdrawable")
			}
			fmt.Fprintf(&b, "  %-18s %s  %s\n", p.Symbol, p.Amount, state)
		}
	}

	return b.String()
}
