package repl

import (
	"context"
	"strings"

	"reaperbridge/internal/history"
	"reaperbridge/internal/model"
	"reaperbridge/internal/ui"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type planResponseMsg struct {
	command string
	resp    model.Response
}

type replModel struct {
	ctx       context.Context
	planner   model.Planner
	viewport  viewport.Model
	textInput textinput.Model
	spinner   spinner.Model
	messages  []string
	isLoading bool
	ready     bool
	width     int
	height    int

	sc      model.SelectionContext
	hist    *history.History
	// pendingCalls is a validated plan awaiting y/n confirmation.
	pendingCalls []model.ToolCall
	// pendingCommand is the command awaiting a clips/tracks answer.
	pendingCommand string
}

func initialModel(ctx context.Context, opts Options) replModel {
	ti := textinput.New()
	ti.Placeholder = "Type an edit command, :ctx <preset>, or q to quit..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 80

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ui.ClrBrand)

	sc := presetItems()
	banner := []string{
		ui.Brand.Render("reaperbridge") + ui.Dim(" dev harness"),
		ui.Dim("Context presets: " + presetNames() + " (switch with :ctx <preset>)"),
		ui.Dim("Current: " + summarizeContext(sc)),
	}

	return replModel{
		ctx:       ctx,
		planner:   opts.Planner,
		textInput: ti,
		spinner:   s,
		messages:  banner,
		sc:        sc,
		hist:      history.New(opts.HistoryLimit),
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textInput, tiCmd = m.textInput.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" {
				return m, nil
			}
			m.textInput.SetValue("")
			return m.handleInput(input)
		}

	case tea.WindowSizeMsg:
		m.applyWindowSize(msg.Width, msg.Height)

	case planResponseMsg:
		m.isLoading = false
		return m.handleResponse(msg), nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m replModel) handleInput(input string) (tea.Model, tea.Cmd) {
	switch {
	case input == "q" || input == "quit" || input == "exit":
		return m, tea.Quit

	case strings.HasPrefix(input, ":ctx"):
		m.switchContext(strings.TrimSpace(strings.TrimPrefix(input, ":ctx")))
		m.refresh()
		return m, nil

	case input == ":history":
		m.append(ui.Dim(formatHistory(m.hist)))
		m.refresh()
		return m, nil

	case len(m.pendingCalls) > 0:
		calls := m.pendingCalls
		m.pendingCalls = nil
		lowered := strings.ToLower(input)
		if lowered == "y" || lowered == "yes" {
			m.append(ui.Dim(renderExecution(calls, m.sc)))
		} else {
			m.append(ui.Dim("Canceled."))
		}
		m.refresh()
		return m, nil

	case m.pendingCommand != "":
		target := parseAnswer(input)
		if target == model.TargetNone {
			m.append(ui.Errorf("answer \"clips\" or \"tracks\""))
			m.refresh()
			return m, nil
		}
		command := m.pendingCommand
		m.pendingCommand = ""
		m.append(ui.Prompt("reaper") + input)
		return m.startPlan(command, target)

	default:
		m.append(ui.Prompt("reaper") + input)
		return m.startPlan(input, model.TargetNone)
	}
}

func (m replModel) startPlan(command string, target model.Target) (tea.Model, tea.Cmd) {
	m.isLoading = true
	m.refresh()
	sc := m.sc
	planner := m.planner
	ctx := m.ctx
	return m, tea.Batch(func() tea.Msg {
		return planResponseMsg{command: command, resp: processCommand(ctx, planner, command, sc, target)}
	}, m.spinner.Tick)
}

func (m replModel) handleResponse(msg planResponseMsg) replModel {
	resp := msg.resp
	switch {
	case resp.NeedsClarification:
		m.hist.Add(msg.command, nil)
		if resp.ClarificationQuestion != nil {
			m.append(ui.Question(*resp.ClarificationQuestion))
		}
		m.pendingCommand = msg.command
	case !resp.OK:
		if resp.Error != nil {
			m.append(ui.Error(*resp.Error))
		}
		m.append(ui.Dim("No changes were prepared."))
	default:
		m.hist.Add(msg.command, resp.ToolCalls)
		m.append(ui.Preview(resp.Preview))
		m.append(ui.Dim("Apply? (y/n)"))
		m.pendingCalls = resp.ToolCalls
	}
	m.refresh()
	return m
}

func (m *replModel) switchContext(preset string) {
	if preset == "" || preset == "show" {
		m.append(ui.Dim("Context presets: " + presetNames()))
		m.append(ui.Dim("Current: " + summarizeContext(m.sc)))
		return
	}
	builder, ok := presets[strings.ToLower(preset)]
	if !ok {
		m.append(ui.Errorf("unknown context preset: %s (available: %s)", preset, presetNames()))
		return
	}
	m.sc = builder()
	m.pendingCalls = nil
	m.pendingCommand = ""
	m.append(ui.Dim("Switched context -> " + preset + ": " + summarizeContext(m.sc)))
}

func parseAnswer(input string) model.Target {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "clip", "clips":
		return model.TargetClips
	case "track", "tracks":
		return model.TargetTracks
	}
	return model.TargetNone
}

func (m *replModel) append(line string) {
	m.messages = append(m.messages, line)
}

func (m *replModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.messages, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *replModel) applyWindowSize(width, height int) {
	m.width = width
	m.height = height
	inputHeight := 3
	if !m.ready {
		m.viewport = viewport.New(width, height-inputHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = height - inputHeight
	}
	m.textInput.Width = width - 4
	m.refresh()
}

func (m replModel) View() string {
	if !m.ready {
		return "loading..."
	}
	input := m.textInput.View()
	if m.isLoading {
		input = m.spinner.View() + " planning..."
	}
	return m.viewport.View() + "\n\n" + input
}
