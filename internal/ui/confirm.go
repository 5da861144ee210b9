package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt. Anything but "y" declines.
type ConfirmModel struct {
	prompt    string
	answered  bool
	confirmed bool
	cancelled bool
}

func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{prompt: prompt}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.answered, m.confirmed = true, true
	case "n", "N", "enter", "esc", "q":
		m.answered = true
	case "ctrl+c":
		m.cancelled = true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	if m.cancelled {
		return ""
	}
	if m.answered {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return fmt.Sprintf("%s %s\n", m.prompt, answer)
	}
	return PromptStyle.Render(m.prompt) + " " + HelpStyle.Render("[y/N]") + " "
}

func (m ConfirmModel) Confirmed() bool { return m.confirmed }

func (m ConfirmModel) Cancelled() bool { return m.cancelled }

// Confirm asks prompt on out and reads the answer from in.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(prompt),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return false, NewUserCancelledError()
		}
		return false, NewInternalError(fmt.Errorf("prompt failed: %w", err))
	}

	m, ok := final.(ConfirmModel)
	if !ok {
		return false, NewInternalError(fmt.Errorf("unexpected prompt model %T", final))
	}
	if m.Cancelled() {
		return false, NewUserCancelledError()
	}
	return m.Confirmed(), nil
}
