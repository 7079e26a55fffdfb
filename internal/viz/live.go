package viz

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Bubblyworld/slackline/internal/dynamics"
	"github.com/Bubblyworld/slackline/internal/statics"
)

const (
	playWidth  = 80
	playHeight = 18
	playFPS    = 30
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	statStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type tickMsg time.Time

// Player is a bubbletea model that plays simulated line motion frame by
// frame, with the equilibrium shape drawn underneath.
type Player struct {
	dyn *dynamics.DynamicRig
	rig *statics.Rig

	canvas  *Canvas
	frame   int
	playing bool

	yMin, yMax float64
}

func NewPlayer(dyn *dynamics.DynamicRig, rig *statics.Rig) Player {
	yMin, yMax := 0.0, 0.0
	for _, frame := range dyn.Y {
		for _, y := range frame {
			if y < yMin {
				yMin = y
			}
			if y > yMax {
				yMax = y
			}
		}
	}
	margin := 0.1 * (yMax - yMin)
	if margin == 0 {
		margin = 0.1
	}

	c := NewCanvas(playWidth, playHeight)
	c.SetWindow(0, dyn.X[len(dyn.X)-1], yMin-margin, yMax+margin)

	return Player{
		dyn:     dyn,
		rig:     rig,
		canvas:  c,
		playing: true,
		yMin:    yMin,
		yMax:    yMax,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/playFPS, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (p Player) Init() tea.Cmd {
	return tick()
}

func (p Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ":
			p.playing = !p.playing
		case "r":
			p.frame = 0
		case "left", "h":
			p.playing = false
			if p.frame > 0 {
				p.frame--
			}
		case "right", "l":
			p.playing = false
			if p.frame < len(p.dyn.Y)-1 {
				p.frame++
			}
		}
		return p, nil

	case tickMsg:
		if p.playing {
			p.frame = (p.frame + 1) % len(p.dyn.Y)
		}
		return p, tick()
	}
	return p, nil
}

func (p Player) View() string {
	p.canvas.Clear()
	p.canvas.Polyline(p.rig.X, p.rig.Y)
	p.canvas.Polyline(p.dyn.X, p.dyn.Y[p.frame])

	view := headerStyle.Render("slackline playback") + "\n"
	view += p.canvas.String()

	mid := len(p.dyn.X) / 2
	view += statStyle.Render(fmt.Sprintf(
		"t=%5.2fs  frame %d/%d  midpoint %.3f m",
		p.dyn.T[p.frame], p.frame+1, len(p.dyn.Y), p.dyn.Y[p.frame][mid],
	)) + "\n"
	for _, w := range p.dyn.Warnings {
		view += warnStyle.Render("warning: "+w) + "\n"
	}
	view += helpStyle.Render("space pause   <- -> scrub   r restart   q quit")
	return view
}

// Play runs the interactive playback until the user quits.
func Play(dyn *dynamics.DynamicRig, rig *statics.Rig) error {
	if len(dyn.Y) == 0 {
		return fmt.Errorf("no frames to play")
	}
	_, err := tea.NewProgram(NewPlayer(dyn, rig)).Run()
	return err
}
