package quiz

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizladder/internal/performance"
	"github.com/abhisek/quizladder/internal/ui/components"
	"github.com/abhisek/quizladder/internal/ui/layout"
	"github.com/abhisek/quizladder/internal/ui/theme"
)

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	header := layout.RenderHeader(m.title(), m.status(), m.width)
	footer := layout.RenderFooter(m.keyHints(), m.width)
	v.SetContent(layout.RenderFrame(header, m.render(m.width), footer, m.width, m.height))
	return v
}

func (m *Model) title() string {
	if m.phase == phaseQuestion || m.phase == phaseFeedback {
		return fmt.Sprintf("Question %d", m.answered+btoi(m.phase == phaseQuestion))
	}
	return "Quiz"
}

func (m *Model) status() string {
	return fmt.Sprintf("%s · %s", strings.ToUpper(m.language), m.level)
}

func (m *Model) keyHints() []layout.KeyHint {
	switch m.phase {
	case phaseQuestion:
		if m.useChoice {
			return []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Answer"},
				{Key: "q", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Answer"},
			{Key: "Esc", Description: "Quit"},
		}
	case phaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next question"},
			{Key: "q", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "q", Description: "Quit"}}
}

// render draws the body of the current phase.
func (m *Model) render(width int) string {
	switch m.phase {
	case phaseLoading:
		return theme.Hint.Render("Loading...")
	case phaseDone:
		return m.renderDone()
	case phaseFeedback:
		return m.renderFeedback(width)
	}
	return m.renderQuestion()
}

func (m *Model) renderQuestion() string {
	var b strings.Builder
	b.WriteString(theme.LevelStyle(m.level).Render(strings.ToUpper(string(m.level))))
	b.WriteString("\n\n")
	if m.useChoice {
		b.WriteString(m.choice.View())
	} else {
		b.WriteString(theme.Body.Bold(true).Render(m.question.Question))
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	}
	return theme.Card.Render(b.String())
}

func (m *Model) renderFeedback(width int) string {
	fb := m.feedback
	res := fb.Result

	var b strings.Builder
	if res.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Incorrect."))
		b.WriteString(theme.Body.Render(fmt.Sprintf("  The answer was %s.", m.question.Answer)))
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Time taken: %s", formatElapsed(fb.Elapsed))))
	b.WriteString("\n\n")

	if fb.Tip == nil {
		b.WriteString(theme.Hint.Render("Fetching a tip..."))
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Render("Tip: " + fb.Tip.Text))
	}
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Accuracy", res.Accuracy/100, false, min(width-8, 48))
	b.WriteString(bar.View())
	b.WriteString("  " + theme.Body.Render(res.AccuracyText))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(res.Suggestion.Text))
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Render("Next difficulty: "))
	b.WriteString(theme.LevelStyle(res.NextLevel).Render(string(res.NextLevel)))
	if res.Source != "" && res.Source != "heuristic" {
		b.WriteString(theme.Hint.Render(fmt.Sprintf(" (%s)", res.Source)))
	}
	if adv := res.Advisory; adv != nil && adv.HeuristicOnly {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Models unavailable, using the difficulty ladder."))
	}

	return theme.Card.Render(b.String())
}

func (m *Model) renderDone() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(theme.Incorrect.Render(m.err.Error()))
		b.WriteString("\n\n")
	}
	if m.perf.Total() > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d, correct %d.", m.perf.Total(), m.perf.Correct)))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render("Press q to exit."))
	return b.String()
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Summary is a one-line description of the session for the terminal after
// the program exits.
func (m *Model) Summary() string {
	if m.perf.Total() == 0 {
		return "No questions answered."
	}
	return fmt.Sprintf("Answered %d (%s), accuracy %s, next level %s.",
		m.perf.Total(), m.language, performance.FormatAccuracy(m.perf.Accuracy()), m.level)
}
