package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/finvoice/internal/conversation"
	"github.com/jwulff/finvoice/internal/notify"
	"github.com/jwulff/finvoice/internal/ui"
	"github.com/jwulff/finvoice/internal/voice"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.viewport.View())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	for _, n := range m.notices.Visible() {
		sections = append(sections, renderNotice(n, m.width))
	}
	if m.page == PageChat {
		sections = append(sections, m.input.View())
	} else {
		sections = append(sections, ui.DimStyle.Render("  Chat paused. Tab to return."))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("FINVOICE")

	var page string
	if m.page == PageChat {
		page = ui.PanelTitleActiveStyle.Render(" CHAT") + ui.DimStyle.Render(" · insights")
	} else {
		page = ui.DimStyle.Render(" chat · ") + ui.PanelTitleActiveStyle.Render("INSIGHTS")
	}

	var mic string
	if m.micLabel != "" {
		mic = ui.DimStyle.Render(" · mic: " + m.micLabel)
	}
	return title + page + mic
}

func (m Model) renderStatusBar() string {
	var capture string
	switch {
	case m.recorder.Requesting():
		capture = m.spinner.View() + ui.DimStyle.Render(" Requesting microphone...")
	case m.recorder.State() == voice.StateRecording:
		capture = ui.RecordingDotStyle.Render("● REC") + ui.DimStyle.Render(" "+m.elapsed().String())
	case m.recorder.State() == voice.StateTranscribing:
		capture = m.spinner.View() + ui.DimStyle.Render(" Processing voice...")
	default:
		capture = ui.IdleDotStyle.Render("○ IDLE")
	}

	playback := ui.DimStyle.Render("  🔇 playback off")
	if m.recorder.Playback() {
		playback = ui.DimStyle.Render("  🔊 playback on")
	}

	var thinking string
	if m.chat.Pending() {
		thinking = "  " + ui.SpinnerStyle.Render("⟳ Thinking")
	}

	return capture + playback + thinking
}

// renderBody builds the viewport content for the current page.
func (m Model) renderBody(width int) string {
	if m.page == PageInsights {
		return renderInsightsPage(m.chat.Log().All(), width)
	}
	return renderTranscript(m.chat.Log().All(), width)
}

func renderTranscript(entries []conversation.Exchange, width int) string {
	// Prefix: "  [HH:MM:SS] " = 13 chars visible
	prefixWidth := 13
	textWidth := max(10, width-prefixWidth-2)
	indentStr := strings.Repeat(" ", prefixWidth)

	if len(entries) == 0 {
		var lines []string
		lines = append(lines, "")
		lines = append(lines, "  "+ui.AssistantLabelStyle.Render("Assistant"))
		for _, wl := range wrapText(greeting, textWidth) {
			lines = append(lines, indentStr+wl)
		}
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  Type a question, or press ctrl+r to ask by voice"))
		return strings.Join(lines, "\n")
	}

	var lines []string
	for _, e := range entries {
		ts := ui.TimestampStyle.Render(e.CreatedAt.Format("[15:04:05]"))
		label := ui.AssistantLabelStyle.Render("Assistant")
		if e.Origin == conversation.OriginUser {
			label = ui.UserLabelStyle.Render("You")
		}
		if e.Channel == conversation.ChannelVoice {
			label += " " + ui.VoiceBadgeStyle.Render("🎙 Voice")
		}
		lines = append(lines, "")
		lines = append(lines, "  "+ts+" "+label)

		for _, wl := range wrapText(e.Content, textWidth) {
			if e.Origin == conversation.OriginUser {
				wl = ui.UserTextStyle.Render(wl)
			}
			lines = append(lines, indentStr+wl)
		}
		for _, in := range e.Insights {
			lines = append(lines, renderInsight(in, indentStr, textWidth)...)
		}
	}
	return strings.Join(lines, "\n")
}

func renderInsight(in conversation.Insight, indent string, width int) []string {
	style := ui.InsightStyle(in.Category)
	head := style.Render(ui.InsightIcon(in.Category) + " " + in.Title)
	if in.MetricValue != "" {
		head += "  " + ui.MetricStyle.Render(in.MetricValue)
	}
	lines := []string{indent + head}
	for _, wl := range wrapText(in.Description, max(10, width-2)) {
		lines = append(lines, indent+"  "+ui.DimStyle.Render(wl))
	}
	return lines
}

func renderInsightsPage(entries []conversation.Exchange, width int) string {
	counts := map[conversation.Category]int{}
	var cards []string
	for i := len(entries) - 1; i >= 0; i-- {
		for _, in := range entries[i].Insights {
			counts[in.Category]++
			cards = append(cards, renderInsight(in, "  ", max(10, width-4))...)
			cards = append(cards, "")
		}
	}

	total := counts[conversation.CategoryPositive] + counts[conversation.CategoryWarning] +
		counts[conversation.CategoryNeutral]
	header := ui.PanelTitleActiveStyle.Render(fmt.Sprintf("INSIGHTS (%d)", total))
	summary := fmt.Sprintf("  %s  %s  %s",
		ui.InsightStyle(conversation.CategoryPositive).Render(fmt.Sprintf("%s %d", ui.InsightIcon(conversation.CategoryPositive), counts[conversation.CategoryPositive])),
		ui.InsightStyle(conversation.CategoryWarning).Render(fmt.Sprintf("%s %d", ui.InsightIcon(conversation.CategoryWarning), counts[conversation.CategoryWarning])),
		ui.InsightStyle(conversation.CategoryNeutral).Render(fmt.Sprintf("%s %d", ui.InsightIcon(conversation.CategoryNeutral), counts[conversation.CategoryNeutral])))

	lines := []string{"", "  " + header, summary, ""}
	if len(cards) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No insights yet..."))
		lines = append(lines, ui.DimStyle.Render("  Insights appear as the assistant answers"))
	} else {
		lines = append(lines, cards...)
	}
	lines = append(lines, ui.DimStyle.Render("  Voice replies are not recorded while this page is open"))
	return strings.Join(lines, "\n")
}

func renderNotice(n notify.Notification, width int) string {
	line := n.Message.Title
	if n.Message.Body != "" {
		line += ": " + n.Message.Body
	}
	line = truncateToWidth(line, width)
	if n.Kind == notify.Error {
		return ui.NoticeErrorStyle.Render(line)
	}
	return ui.NoticeInfoStyle.Render(line)
}

func (m Model) renderFooter() string {
	var parts []string

	if m.page == PageChat {
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Send"))
	}
	if m.recorder.State() == voice.StateRecording {
		parts = append(parts, ui.FooterKeyStyle.Render("^R")+ui.FooterDescStyle.Render(" Stop"))
		parts = append(parts, ui.FooterKeyStyle.Render("^X")+ui.FooterDescStyle.Render(" Cancel"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("^R")+ui.FooterDescStyle.Render(" Record"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("^P")+ui.FooterDescStyle.Render(" Playback"))
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Page"))
	parts = append(parts, ui.FooterKeyStyle.Render("↑↓")+ui.FooterDescStyle.Render(" Scroll"))
	if len(m.notices.Visible()) > 0 {
		parts = append(parts, ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Dismiss"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("^C")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
