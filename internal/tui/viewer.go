// SPDX-License-Identifier: MIT

// Package tui renders a live mission in the terminal. It follows the
// bubbletea Elm loop: the model holds the runner, tick messages advance
// the simulation, and the view draws the grid with lipgloss styles.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NEPXiss/rescue-mission/internal/sim"
	"github.com/NEPXiss/rescue-mission/internal/terrain"
)

var (
	styleNormal   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleObstacle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Bold(true)
	styleDanger   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleSurvivor = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleDrone    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	styleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	styleReport   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2)
)

type tickMsg time.Time

// Model drives one mission in the terminal.
type Model struct {
	runner   *sim.Runner
	playing  bool
	finished bool
	report   *sim.Report
	interval time.Duration
	err      error
}

// NewModel wraps a prepared runner. The mission starts paused.
func NewModel(runner *sim.Runner) Model {
	return Model{
		runner:   runner,
		interval: 150 * time.Millisecond,
	}
}

// Init schedules the first tick.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses and tick-driven stepping.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if !m.finished {
				m.playing = !m.playing
			}
		case "n":
			if !m.finished && !m.playing {
				m.step()
			}
		case "+", "=":
			if m.interval > 30*time.Millisecond {
				m.interval -= 30 * time.Millisecond
			}
		case "-":
			if m.interval < time.Second {
				m.interval += 30 * time.Millisecond
			}
		}
		return m, nil

	case tickMsg:
		if m.playing && !m.finished {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.runner.Step(context.Background())
	if m.runner.Finished() {
		m.finished = true
		m.playing = false
		m.report = m.runner.BuildReport()
	}
}

// View renders the grid, the status bar and, once finished, the report.
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	coord := m.runner.Coordinator()
	grid := coord.Grid()
	status := coord.Status()

	occupied := make(map[terrain.Point]struct{})
	for _, p := range coord.DronePositions() {
		occupied[p] = struct{}{}
	}

	var b strings.Builder
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			if x > 0 {
				b.WriteByte(' ')
			}
			p := terrain.Point{Y: y, X: x}
			if _, ok := occupied[p]; ok {
				b.WriteString(styleDrone.Render("D"))
				continue
			}
			switch grid.At(p) {
			case terrain.CellObstacle:
				b.WriteString(styleObstacle.Render("#"))
			case terrain.CellDanger:
				b.WriteString(styleDanger.Render("~"))
			case terrain.CellSurvivor:
				b.WriteString(styleSurvivor.Render("S"))
			default:
				b.WriteString(styleNormal.Render("."))
			}
		}
		b.WriteByte('\n')
	}

	state := "paused"
	if m.playing {
		state = "running"
	}
	if m.finished {
		state = "finished"
	}
	bar := styleStatus.Render(fmt.Sprintf(
		"t=%d  drones=%d  rescued=%d/%d  discovered=%d  [%s]",
		status.Time, status.DronesDeployed,
		status.RescuedSurvivors, status.TotalSurvivors,
		status.DiscoveredSurvivors, state,
	))
	b.WriteString("\n" + bar + "\n")

	if m.report != nil {
		b.WriteString(styleReport.Render(fmt.Sprintf(
			"outcome: %s\nsteps: %d\nrescued: %d/%d (%.1f%%)\ntotal distance: %.1f",
			m.report.Outcome, m.report.Status.Time,
			m.report.Status.RescuedSurvivors, m.report.Status.TotalSurvivors,
			m.report.SuccessRate, m.report.TotalDistance,
		)) + "\n")
	}

	b.WriteString(styleHelp.Render("space play/pause · n step · +/- speed · q quit") + "\n")
	return b.String()
}

// Run starts the bubbletea program and blocks until the user quits.
func Run(runner *sim.Runner) error {
	p := tea.NewProgram(NewModel(runner))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
