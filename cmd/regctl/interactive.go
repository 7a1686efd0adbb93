package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitreg/register"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	maskStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectField modelState = iota
	stateEditValue
)

type interactiveModel struct {
	err      error
	reg      *register.Register
	filename string
	fields   []register.Descriptor
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(filename string, r *register.Register) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		reg:      r,
		fields:   r.Layout().Fields(),
		state:    stateSelectField,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateEditValue {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			f := m.fields[m.selected]
			m.err = setField(m.reg, f.Name, m.input.Value(), false)
			m.state = stateSelectField
			return m, nil
		case "esc":
			m.state = stateSelectField
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.fields)-1 {
			m.selected++
		}

	case " ":
		if len(m.fields) > 0 && m.fields[m.selected].Type.Kind == register.KindBool {
			name := m.fields[m.selected].Name
			v, _ := m.reg.Bool(name)
			m.err = m.reg.SetBool(name, !v)
		}

	case "enter":
		if len(m.fields) > 0 {
			m.startEdit()
		}
	}
	return m, nil
}

func (m *interactiveModel) startEdit() {
	f := m.fields[m.selected]
	v, _ := m.reg.Get(f.Name)

	ti := textinput.New()
	ti.Prompt = f.Name + ": "
	ti.Placeholder = f.Type.String()
	ti.SetValue(fmt.Sprint(v))
	ti.Width = 40
	ti.Focus()

	m.input = ti
	m.err = nil
	m.state = stateEditValue
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	l := m.reg.Layout()

	b.WriteString(titleStyle.Render("Register " + l.Name()))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	b.WriteString(hex.EncodeToString(m.reg.Bytes()))
	b.WriteString("\n")
	if len(m.fields) > 0 {
		b.WriteString(m.bitView())
	}
	b.WriteString("\n\n")

	for i, f := range m.fields {
		v, _ := m.reg.Get(f.Name)
		line := fmt.Sprintf("%-16s %-10s %s = %s",
			f.Name, f.Span, typeStyle.Render(f.Type.String()), fieldStyle.Render(formatValue(v)))
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateEditValue {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	switch m.state {
	case stateSelectField:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • space toggle bool • q quit"))
	case stateEditValue:
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	}
	return b.String()
}

// bitView prints each byte MSB first with the selected field's bits
// highlighted.
func (m *interactiveModel) bitView() string {
	mask, _ := m.reg.Layout().Mask(m.fields[m.selected].Name)
	data := m.reg.Bytes()

	var b strings.Builder
	for i, v := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		for bit := 7; bit >= 0; bit-- {
			c := "0"
			if v&(1<<bit) != 0 {
				c = "1"
			}
			if mask[i]&(1<<bit) != 0 {
				c = maskStyle.Render(c)
			}
			b.WriteString(c)
		}
	}
	return b.String()
}

func runInteractive(filename string, r *register.Register) error {
	p := tea.NewProgram(newInteractiveModel(filename, r), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
