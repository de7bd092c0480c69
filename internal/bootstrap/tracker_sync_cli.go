package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobtracker_server/config"
	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/in"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	companyStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// RunSync runs one sync from the terminal. The result lands in the
// suggestion cache exactly as an API sync would.
func RunSync(ctx context.Context, cfg *config.Config, maxMessages int, w io.Writer) error {
	deps, cleanup, err := NewDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return StreamSync(ctx, deps.SyncPipeline, domain.SyncOptions{MaxMessages: maxMessages, Debug: true}, w)
}

// StreamSync renders every event of one run and returns the terminal error, if any.
func StreamSync(ctx context.Context, sync in.SyncService, opts domain.SyncOptions, w io.Writer) error {
	for ev := range sync.Sync(ctx, opts) {
		fmt.Fprintln(w, RenderEvent(ev))
		if ev.Type == domain.SyncEventError {
			return fmt.Errorf("sync failed: %s", ev.Error)
		}
	}
	return nil
}

func RenderEvent(ev domain.SyncEvent) string {
	switch ev.Type {
	case domain.SyncEventStatus:
		return statusStyle.Render("• " + ev.Message)
	case domain.SyncEventError:
		return errorStyle.Render("✗ " + ev.Error)
	case domain.SyncEventResult:
		return renderResult(ev.Result)
	}
	return ""
}

func renderResult(r *domain.SyncResult) string {
	if r == nil || !r.Connected {
		return errorStyle.Render("Gmail is not connected. Start the API and open /api/auth/gmail first.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d suggested application(s)", len(r.Suggestions))))
	if r.Debug != nil {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"listed %d · keyword %d · ai %d · summarized %d · tier %s",
			r.Debug.ListedCount, r.Debug.KeywordMatchedCount, r.Debug.AIClassifiedCount,
			r.Debug.SummarizedCount, orDash(string(r.Debug.Tier)),
		)))
		if r.Debug.Note != "" {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(r.Debug.Note))
		}
	}

	for _, s := range r.Suggestions {
		lines := []string{
			companyStyle.Render(s.Company) + " · " + s.Role,
			dimStyle.Render(fmt.Sprintf("%s · %s · %s", s.Status, s.AppliedDate, s.MessageID)),
		}
		if s.AISummary != "" {
			lines = append(lines, s.AISummary)
		}
		for _, item := range s.AIActionItems {
			lines = append(lines, "→ "+item)
		}
		b.WriteString("\n")
		b.WriteString(cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
