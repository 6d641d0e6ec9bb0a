package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/fd1az/aurora-staking/pkg/ui"
)

// HeadStatus is the chain-head view of one RPC endpoint.
type HeadStatus struct {
	Endpoint   string
	State      string
	Polling    bool
	LastBlock  uint64
	LastSeen   time.Time
	Reconnects int
}

// StatusComponent renders the head line printed before each refresh. A
// head older than staleAfter is flagged.
type StatusComponent struct {
	head       *HeadStatus
	staleAfter time.Duration
	now        func() time.Time
}

// NewStatusComponent creates a status component.
func NewStatusComponent(staleAfter time.Duration) *StatusComponent {
	return &StatusComponent{staleAfter: staleAfter, now: time.Now}
}

// Update replaces the displayed head status.
func (s *StatusComponent) Update(h HeadStatus) {
	s.head = &h
}

// View renders one line, newline terminated.
func (s *StatusComponent) View() string {
	if s.head == nil {
		return ui.MutedValue.Render("no chain head yet") + "\n"
	}
	h := s.head

	parts := []string{stateBadge(h.State) + " " + h.Endpoint}
	if h.Polling {
		parts = append(parts, ui.WarningValue.Render("polling"))
	} else {
		parts = append(parts, "ws")
	}

	if h.LastBlock > 0 {
		head := fmt.Sprintf("head #%d", h.LastBlock)
		if !h.LastSeen.IsZero() {
			age := s.now().Sub(h.LastSeen).Round(time.Second)
			if s.staleAfter > 0 && age > s.staleAfter {
				head += ui.NegativeValue.Render(fmt.Sprintf(" (stale, %s ago)", age))
			} else {
				head += ui.MutedValue.Render(fmt.Sprintf(" (%s ago)", age))
			}
		}
		parts = append(parts, head)
	}

	if h.Reconnects > 0 {
		parts = append(parts, fmt.Sprintf("%d reconnects", h.Reconnects))
	}

	return strings.Join(parts, " · ") + "\n"
}

func stateBadge(state string) string {
	switch state {
	case "connected":
		return ui.PositiveValue.Bold(true).Render("●")
	case "connecting", "reconnecting":
		return ui.WarningValue.Bold(true).Render("◐ " + state)
	default:
		return ui.NegativeValue.Bold(true).Render("○ " + state)
	}
}
