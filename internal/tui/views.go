package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"
)

const (
	paneWidth       = 36
	sparklineWidth  = 24
	sparklineHeight = 2
)

// View renders the whole panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderAppTabs())
	b.WriteString("\n\n")

	switch m.appTabs.Active() {
	case tabPrompts:
		b.WriteString(m.renderPrompts())
	case tabCoaches:
		b.WriteString(m.renderCoaches())
	default:
		b.WriteString(m.renderPanes())
	}

	if m.edit.active {
		b.WriteString("\n")
		b.WriteString(m.renderEditor())
	}
	if m.confirm.pending {
		b.WriteString("\n")
		b.WriteString(m.renderConfirm())
	}
	if m.toast != "" {
		b.WriteString("\n")
		style := toastStyle
		if m.toastErr {
			style = toastStyle.Background(lipgloss.Color("196")).Foreground(lipgloss.Color("15"))
		}
		b.WriteString(style.Render(m.toast))
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("WLNX Control Panel")

	status := fmt.Sprintf("%s server  %s bot",
		statusDot(m.serverUp), statusDot(m.botUp))
	if m.demo {
		status += "  " + warningStyle.Render("[demo data]")
	}

	spark := dimStyle.Render("latency: no data")
	if len(m.latency) > 0 {
		spark = "latency " + formatLatency(m.latency[len(m.latency)-1]) + " " +
			renderSparkline(m.latency)
	}

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Center, title, "   ", status, "   ", spark))
}

func renderSparkline(data []float64) string {
	spark := sparkline.New(sparklineWidth, sparklineHeight)
	for _, v := range data {
		spark.Push(v)
	}
	return sparklineStyle.Render(spark.View())
}

func (m Model) renderAppTabs() string {
	return renderTabBar(&m.appTabs, "1:Sessions  2:Prompts  3:Coaches")
}

func renderTabBar(g *TabGroup, hint string) string {
	parts := make([]string, 0, g.Len()+1)
	for _, t := range g.Tabs() {
		label := " " + t.Title + " "
		switch {
		case t.Key == g.Active():
			parts = append(parts, tabActiveStyle.Render(label))
		case g.Dirty(t.Key):
			parts = append(parts, tabDirtyStyle.Render(label+"●"))
		default:
			parts = append(parts, tabStyle.Render(label))
		}
	}
	if hint != "" {
		parts = append(parts, dimStyle.Render("  "+hint))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// --- sessions tab: the three cascading panes -----------------------

func (m Model) renderPanes() string {
	panes := []string{m.renderUsersPane()}
	if m.machine.SessionsOpen() {
		panes = append(panes, m.renderSessionsPane())
	}
	if m.machine.DetailsOpen() {
		panes = append(panes, m.renderDetailsPane())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) paneFrame(focused bool) lipgloss.Style {
	if focused {
		return paneFocusStyle
	}
	return paneStyle
}

func (m Model) renderUsersPane() string {
	var b strings.Builder
	title := "Users"
	if m.usersFlash {
		title = flashStyle.Render(title)
	} else {
		title = labelStyle.Render(title)
	}
	b.WriteString(title + dimStyle.Render(fmt.Sprintf(" (%d)", len(m.users))))
	b.WriteString("\n\n")

	switch {
	case m.usersErr != nil:
		b.WriteString(errorStyle.Render("load failed") + "\n" +
			dimStyle.Render(truncate(m.usersErr.Error(), paneWidth-4)))
	case len(m.users) == 0:
		b.WriteString(dimStyle.Render("no users"))
	default:
		now := time.Now()
		for i, u := range m.users {
			line := fmt.Sprintf("%-*s %2d", paneWidth-12, truncate(u.Email, paneWidth-12), u.SessionCount)
			line += dimStyle.Render(" " + formatAge(u.LastSession, now))
			b.WriteString(m.renderRow(line, i == m.usersCursor, u.Email == m.machine.SelectedUser()))
			b.WriteString("\n")
		}
	}
	return m.paneFrame(m.focus == focusUsers).Render(b.String())
}

func (m Model) renderSessionsPane() string {
	var b strings.Builder
	title := "Sessions"
	if m.sessionsFlash {
		title = flashStyle.Render(title)
	} else {
		title = labelStyle.Render(title)
	}
	b.WriteString(title + dimStyle.Render(" · "+m.machine.SelectedUser()))
	b.WriteString("\n\n")

	switch {
	case m.sessionsErr != nil:
		b.WriteString(errorStyle.Render("load failed") + "\n" +
			dimStyle.Render(truncate(m.sessionsErr.Error(), paneWidth-4)))
	case len(m.sessions) == 0:
		b.WriteString(dimStyle.Render("no sessions"))
	default:
		for i, s := range m.sessions {
			line := shortID(s.ID) + " " + dimStyle.Render(formatTimestamp(s.CreatedAt))
			if m.inflight[s.ID] {
				line += warningStyle.Render(" deleting…")
			}
			b.WriteString(m.renderRow(line, i == m.sessionsCursor, s.ID == m.machine.SelectedSession()))
			b.WriteString("\n")
			if s.Summary != "" {
				b.WriteString("   " + dimStyle.Render(truncate(firstLine(s.Summary), paneWidth-6)))
				b.WriteString("\n")
			}
		}
	}
	return m.paneFrame(m.focus == focusSessions).Render(b.String())
}

func (m Model) renderRow(line string, underCursor, selected bool) string {
	switch {
	case underCursor:
		return cursorStyle.Render("▸ " + line)
	case selected:
		return selectedStyle.Render("  " + line)
	default:
		return "  " + line
	}
}

func (m Model) renderDetailsPane() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Session ") + valueStyle.Render(shortID(m.machine.SelectedSession())))
	b.WriteString("\n")
	b.WriteString(renderTabBar(&m.detailTabs, ""))
	b.WriteString("\n\n")

	switch {
	case m.detailMissing:
		b.WriteString(warningStyle.Render("session no longer exists"))
	case m.detailErr != nil:
		b.WriteString(errorStyle.Render("load failed") + "\n" +
			dimStyle.Render(truncate(m.detailErr.Error(), paneWidth)))
	case m.detail == nil:
		b.WriteString(dimStyle.Render("loading…"))
	default:
		switch m.detailTabs.Active() {
		case tabTranscript:
			b.WriteString(m.renderTranscript())
		case tabWellness:
			b.WriteString(m.renderWellness())
		default:
			b.WriteString(m.renderSummary())
		}
	}
	return m.paneFrame(m.focus == focusDetails).Render(b.String())
}

func (m Model) renderSummary() string {
	s := m.detail
	var b strings.Builder
	if m.detailFlash.Summary {
		b.WriteString(flashStyle.Render("updated") + "\n")
	}
	if s.Summary == "" {
		b.WriteString(dimStyle.Render("no summary yet"))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(paneWidth).Render(s.Summary))
	}
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("created ") + dimStyle.Render(formatTimestamp(s.CreatedAt)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("updated ") + dimStyle.Render(formatTimestamp(s.UpdatedAt)))
	return b.String()
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	if m.detailFlash.Transcript {
		b.WriteString(flashStyle.Render("updated") + "\n")
	}
	if m.detail.Transcription == "" {
		b.WriteString(dimStyle.Render("no transcript yet"))
	} else {
		b.WriteString(m.transcript.View())
	}
	return b.String()
}

func (m Model) renderWellness() string {
	s := m.detail
	var b strings.Builder
	if m.detailFlash.Wellness {
		b.WriteString(flashStyle.Render("updated") + "\n")
	}
	if len(s.Wellness) == 0 {
		b.WriteString(dimStyle.Render("no wellness data yet"))
		return b.String()
	}

	// Stress gets the headline treatment with a color-banded bar.
	if level, ok := s.Wellness["stress_level"].(float64); ok {
		b.WriteString(labelStyle.Render("Stress  "))
		b.WriteString(stressStyle(level).Render(fmt.Sprintf("%.0f/10 ", level)))
		b.WriteString(m.stress.ViewAs(level / 10))
		b.WriteString("\n\n")
	}
	for _, key := range sortedKeys(s.Wellness) {
		if key == "stress_level" {
			continue
		}
		b.WriteString(labelStyle.Render(formatFieldName(key) + ": "))
		b.WriteString(valueStyle.Render(truncate(formatFieldValue(s.Wellness[key]), paneWidth-4)))
		b.WriteString("\n")
	}
	return b.String()
}

// --- prompts and coaches tabs --------------------------------------

func (m Model) renderPrompts() string {
	var b strings.Builder
	if m.promptsErr != nil {
		return errorStyle.Render("prompts load failed: ") + dimStyle.Render(m.promptsErr.Error())
	}
	if len(m.prompts) == 0 {
		return dimStyle.Render("no prompt stages")
	}

	b.WriteString(renderTabBar(&m.stageTabs, "[/] switch stage"))
	b.WriteString("\n\n")

	si := m.activeStageIndex()
	if si < 0 {
		b.WriteString(dimStyle.Render("select a stage"))
		return b.String()
	}
	for i, p := range m.prompts[si].Prompts {
		marker := "  "
		if i == m.promptCursor {
			marker = cursorStyle.Render("▸ ")
		}
		b.WriteString(marker + valueStyle.Render(truncate(p.Question, 70)))
		b.WriteString("\n")
		if p.Extraction != "" {
			b.WriteString("    " + dimStyle.Render("extracts: "+truncate(p.Extraction, 60)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderCoaches() string {
	var b strings.Builder
	if m.coachesErr != nil {
		return errorStyle.Render("coaches load failed: ") + dimStyle.Render(m.coachesErr.Error())
	}
	if len(m.coaches) == 0 {
		return dimStyle.Render("no coaches")
	}
	for i, c := range m.coaches {
		marker := "  "
		if i == m.coachCursor {
			marker = cursorStyle.Render("▸ ")
		}
		b.WriteString(marker + valueStyle.Render(c.Name))
		b.WriteString("\n")
		b.WriteString("    " + dimStyle.Render(truncate(firstLine(c.Prompt), 70)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderEditor() string {
	title := "Edit prompt"
	if m.edit.coach {
		title = "Edit coach prompt"
	}
	return confirmStyle.Render(
		labelStyle.Render(title) + "\n" +
			m.editor.View() + "\n" +
			dimStyle.Render("ctrl+s save · esc cancel"))
}

func (m Model) renderConfirm() string {
	var text string
	if m.confirm.all {
		text = fmt.Sprintf("Delete ALL sessions for %s?", m.confirm.email)
	} else {
		text = fmt.Sprintf("Delete session %s?", shortID(m.confirm.id))
	}
	return confirmStyle.Render(
		errorStyle.Render(text) + "\n" +
			dimStyle.Render("y confirm · n cancel"))
}

func (m Model) renderFooter() string {
	keys := []string{"j/k move", "enter open", "h/l pane", "esc close",
		"d delete", "D delete all", "r refresh", "1-3 tabs", "q quit"}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		i := strings.IndexByte(k, ' ')
		parts = append(parts, footerKeyStyle.Render(k[:i])+footerStyle.Render(k[i:]))
	}
	return footerStyle.Render(strings.Join(parts, "  "))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
