package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/coilsim/internal/coil"
	"github.com/san-kum/coilsim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600

	radiusStep = 5.0
	speedStep  = 1.25
	gifPath    = "coil.gif"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

type TickMsg time.Time

// changes is shared between the Model copies bubbletea passes around and the
// coil observer registered in NewModel.
type changes struct {
	dirty    bool
	rebuilds int
}

// Model drives a simulator at a fixed frame rate and renders the coil.
type Model struct {
	sim           *sim.Simulator
	coil          *coil.Coil
	name          string
	dt            float64
	fps           int
	width, height int
	canvas        *Canvas
	changes       *changes
	running       bool
	indicators    []float64
	crossings     []float64
	net           int
	err           error
	notice        error
	recording     bool
	frames        []*image.Paletted
	showHelp      bool
}

// NewModel wraps s for interactive display. fps <= 0 selects 30 frames per second.
func NewModel(s *sim.Simulator, name string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	ch := &changes{dirty: true}
	s.Coil().AddObserver(coil.ObserverFuncs{
		GeometryChanged: func(*coil.Coil) {
			ch.dirty = true
			ch.rebuilds++
		},
		CarriersMoved: func(*coil.Coil) { ch.dirty = true },
	})

	return Model{
		sim:        s,
		coil:       s.Coil(),
		name:       name,
		dt:         coil.FixedDt,
		fps:        fps,
		width:      width,
		height:     height,
		canvas:     NewCanvas(width, height),
		changes:    ch,
		running:    true,
		indicators: make([]float64, 0, historyCapacity),
		crossings:  make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			m.apply(m.coil.SetNumberOfLoops(m.coil.NumberOfLoops() + 1))
		case "down", "j":
			m.apply(m.coil.SetNumberOfLoops(m.coil.NumberOfLoops() - 1))
		case "right", "l":
			m.apply(m.coil.SetLoopRadius(m.coil.LoopRadius() + radiusStep))
		case "left", "h":
			m.apply(m.coil.SetLoopRadius(m.coil.LoopRadius() - radiusStep))
		case "+", "=":
			m.apply(m.coil.SetSpeedScale(m.coil.SpeedScale() * speedStep))
		case "-", "_":
			m.apply(m.coil.SetSpeedScale(m.coil.SpeedScale() / speedStep))
		case "f":
			m.coil.SetCurrentFlow(m.coil.CurrentFlow().Toggle())
			m.changes.dirty = true
		case "v":
			m.coil.SetCarriersVisible(!m.coil.CarriersVisible())
			m.changes.dirty = true
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		if m.changes.dirty {
			m.draw()
			m.changes.dirty = false
		}
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// apply records a setter failure for display; the coil keeps its previous state.
func (m *Model) apply(err error) {
	m.notice = err
}

func (m *Model) step() {
	rec, err := m.sim.Tick(m.dt)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.net += rec.Crossings
	m.indicators = appendCapped(m.indicators, rec.Indicator)
	m.crossings = appendCapped(m.crossings, float64(rec.Crossings))
}

func appendCapped(values []float64, v float64) []float64 {
	values = append(values, v)
	if len(values) > historyCapacity {
		values = values[1:]
	}
	return values
}

// reset restores the coil defaults and restarts the drive clock.
func (m *Model) reset() {
	m.err = nil
	m.notice = m.coil.Reset()
	m.sim.Rewind()
	m.indicators = m.indicators[:0]
	m.crossings = m.crossings[:0]
	m.net = 0
	m.running = true
	m.changes.dirty = true
}

func (m *Model) draw() {
	carriers := m.coil.Carriers()
	if !m.coil.CarriersVisible() {
		carriers = nil
	}
	DrawCoil(m.canvas, m.coil.Segments(), carriers, m.coil.CurrentFlow())
}

// View renders the TUI interface.
func (m Model) View() string {
	theme := CurrentTheme
	wire := lipgloss.NewStyle().Foreground(theme.Wire)
	carrier := lipgloss.NewStyle().Foreground(theme.Carrier).Bold(true)
	canvasView := canvasStyle.Render(m.canvas.Render(wire, carrier))

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), theme.Wire, theme.Accent) + "\n\n")

	if m.recording {
		s.WriteString(StatusRecording.Render("● REC") + "  ")
	}
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING"))
	} else {
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(m.indicators) > 1 {
		chart := asciigraph.Plot(m.indicators,
			asciigraph.Height(4),
			asciigraph.Width(30),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Caption("Current"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	indicator := m.coil.CurrentIndicator()
	s.WriteString(MetricLabel.Render("Tick") + MetricValue.Render(fmt.Sprintf("%d", m.coil.Ticks())) + "\n")
	s.WriteString(MetricLabel.Render("Current") + IndicatorGauge(indicator, 20) + fmt.Sprintf(" %+.2f", indicator) + "\n")
	s.WriteString(MetricLabel.Render("Flow") + MetricValue.Render(m.coil.CurrentFlow().String()) + "\n")
	s.WriteString(MetricLabel.Render("Crossings") + SparklineChart(m.crossings, 20) + fmt.Sprintf(" net %d", m.net) + "\n")
	s.WriteString(MetricLabel.Render("Loops") + MetricValue.Render(fmt.Sprintf("%d", m.coil.NumberOfLoops())) + "\n")
	s.WriteString(MetricLabel.Render("Radius") + MetricValue.Render(fmt.Sprintf("%.0f", m.coil.LoopRadius())) + "\n")
	s.WriteString(MetricLabel.Render("Speed") + MetricValue.Render(fmt.Sprintf("x%.2f", m.coil.SpeedScale())) + "\n")
	s.WriteString(MetricLabel.Render("Carriers") + MetricValue.Render(fmt.Sprintf("%d / %d seg", m.coil.CarrierCount(), m.coil.SegmentCount())) + "\n")
	s.WriteString(MetricLabel.Render("Rebuilds") + MetricValue.Render(fmt.Sprintf("%d", m.changes.rebuilds)) + "\n")
	s.WriteString(MetricLabel.Render("Theme") + MetricValue.Render(theme.Name) + "\n")

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.notice != nil {
		s.WriteString("\n" + KeyHint.Render(m.notice.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n" + Separator(40) + "\nSP:Pause R:Reset Q:Quit\n↑↓:Loops ←→:Radius +-:Speed\nF:Flow V:Carriers T:Theme G:Record ?:Help"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset coil defaults      ║
║  Q        - Quit                     ║
║  Up/K     - Add a loop               ║
║  Down/J   - Remove a loop            ║
║  Right/L  - Grow loop radius         ║
║  Left/H   - Shrink loop radius       ║
║  + / -    - Carrier speed scale      ║
║  F        - Toggle current flow      ║
║  V        - Show/hide carriers       ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// captureFrame rasterizes the canvas, wire dots in one color and carrier
// cells as solid blocks in another.
func (m *Model) captureFrame() {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	imgW, imgH := m.width*charW, m.height*charH
	palette := color.Palette{
		color.Black,
		hexRGBA(string(CurrentTheme.Wire)),
		hexRGBA(string(CurrentTheme.Carrier)),
	}
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), palette)

	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			baseX, baseY := col*charW, row*charH
			if _, ok := m.canvas.marks[[2]int{row, col}]; ok {
				fill(img, baseX+1, baseY+4, charW-2, charH-8, 2)
				continue
			}
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if m.canvas.IsSet(col*2+dx, row*4+dy) {
						fill(img, baseX+dx*dotW, baseY+dy*dotH, dotW, dotH, 1)
					}
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func fill(img *image.Paletted, x, y, w, h int, idx uint8) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			img.SetColorIndex(px, py, idx)
		}
	}
}

func hexRGBA(hex string) color.RGBA {
	r, g, b := parseHex(hex)
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	delay := 100 / m.fps
	if delay < 1 {
		delay = 1
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(gifPath)
	if err != nil {
		m.notice = err
		return
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		m.notice = err
	}
}
