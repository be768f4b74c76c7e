package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hydrolab/bodsim/internal/config"
	"github.com/hydrolab/bodsim/internal/dynamo"
	"github.com/hydrolab/bodsim/internal/integrators"
	"github.com/hydrolab/bodsim/internal/waterbody"
)

const (
	chartWidth  = 80
	chartHeight = 16
)

const (
	paramLoad = iota
	paramCB
	paramCount
)

// Model is the live view: the full simulation re-runs on every parameter
// change, mirroring an interactive slider panel.
type Model struct {
	base     *config.Config
	load     float64
	cb       float64
	selected int
	states   []dynamo.State
	final    dynamo.State
	runErr   error
	width    int
}

func NewModel(cfg *config.Config) Model {
	m := Model{
		base:     cfg,
		load:     cfg.Discharge.Load,
		cb:       cfg.Boundary.CB,
		selected: paramLoad,
		width:    chartWidth,
	}
	m.simulate()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.selected = (m.selected + 1) % paramCount
		case "up", "k":
			m.adjust(1)
			m.simulate()
		case "down", "j":
			m.adjust(-1)
			m.simulate()
		case "r":
			m.load = m.base.Discharge.Load
			m.cb = m.base.Boundary.CB
			m.simulate()
		}
	case tea.WindowSizeMsg:
		if msg.Width > 20 && msg.Width < chartWidth+10 {
			m.width = msg.Width - 10
			m.simulate()
		}
	}
	return m, nil
}

func (m *Model) adjust(dir float64) {
	switch m.selected {
	case paramLoad:
		m.load = clamp(m.load+dir*config.LoadStep, config.MinLoad, config.MaxLoad)
	case paramCB:
		m.cb = clamp(m.cb+dir*config.CBStep, config.MinCB, config.MaxCB)
	}
}

func (m *Model) simulate() {
	sys := m.base.Model()
	sys.CB = m.cb
	sys.Load = waterbody.NewPulse(m.load, m.base.Discharge.Duration)

	sim := dynamo.New(sys, integrators.NewRK4())
	result, err := sim.Run(context.Background(), m.base.GetInitState(), m.base.RunConfig())
	if err != nil {
		m.runErr = err
		return
	}

	m.runErr = nil
	m.states = result.States
	m.final = result.Final()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("BOD in interconnected water bodies"))
	b.WriteString("\n")

	if m.runErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("simulation failed: %v", m.runErr)))
		b.WriteString("\n")
	} else {
		b.WriteString(graphStyle.Render(Chart(m.states, m.cb, m.width, chartHeight)))
		b.WriteString("\n")
	}

	b.WriteString(m.paramLine(paramLoad, "discharge load", fmt.Sprintf("%.0f mg/day", m.load)))
	b.WriteString(m.paramLine(paramCB, "bay concentration", fmt.Sprintf("%.1f mg/L", m.cb)))

	if m.runErr == nil && len(m.final) == 2 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("final C1 / C2"))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%.4f / %.4f mg/L", m.final[0], m.final[1])))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("tab: select param  ↑/↓: adjust  r: reset  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) paramLine(param int, label, value string) string {
	marker := "  "
	style := valueStyle
	if m.selected == param {
		marker = "> "
		style = activeParamStyle
	}
	return marker + labelStyle.Render(label) + style.Render(value) + "\n"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
