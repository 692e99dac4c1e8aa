package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/spectro/internal/audio"
	"github.com/olivier-w/spectro/internal/display"
	"github.com/olivier-w/spectro/internal/player"
	"github.com/olivier-w/spectro/internal/spectrogram"
	"github.com/olivier-w/spectro/internal/util"
)

// chrome rows around the spectrogram: header, title, progress, status, help
// and their blank separators.
const chromeRows = 9

// Model is the Bubbletea model for the spectro TUI. Each tick it reads the
// playback cursor, renders the viewport around it, and updates the status
// line, keeping the picture and the sound in lockstep.
type Model struct {
	player   *player.Player
	spec     *spectrogram.Spectrogram
	view     *spectrogram.View
	renderer *display.Renderer
	metadata audio.Metadata
	progress progress.Model

	width    int
	height   int
	frame    string
	elapsed  time.Duration
	duration time.Duration
	paused   bool
	finished bool
	quitting bool

	savePath    string
	saveMsg     string
	saveMsgTime time.Time
}

// New creates a Model. savePath is where the 's' key exports the full
// spectrogram image.
func New(p *player.Player, s *spectrogram.Spectrogram, v *spectrogram.View, meta audio.Metadata, savePath string) Model {
	bar := progress.New(progress.WithSolidFill("#888888"), progress.WithoutPercentage())
	return Model{
		player:   p,
		spec:     s,
		view:     v,
		renderer: display.NewRenderer(),
		metadata: meta,
		progress: bar,
		duration: p.Duration(),
		savePath: savePath,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), watchEnd(m.player), tea.SetWindowTitle(windowTitle(m.metadata.Title, false)))
}

func watchEnd(p *player.Player) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		return playbackEndedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.player.Close()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case " ":
			m.player.TogglePause()
			m.paused = m.player.Paused()
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, m.paused))
		case "r":
			m.player.Reverse()
			if m.player.Direction() < 0 {
				m.finished = false
			}
		case "+", "=":
			m.player.SpeedUp()
		case "-", "_":
			m.player.SlowDown()
		case "s":
			// Synchronous on purpose: the engine's column cache has a single
			// writer, the update goroutine.
			if err := spectrogram.SavePNG(m.savePath, m.spec.Image()); err != nil {
				m.saveMsg = fmt.Sprintf("Save failed: %v", err)
			} else {
				m.saveMsg = fmt.Sprintf("Saved to %s", m.savePath)
			}
			m.saveMsgTime = time.Now()
		}
		return m, nil

	case tickMsg:
		m.elapsed = m.player.Elapsed()
		m.paused = m.player.Paused()
		m.renderFrame()
		if m.saveMsg != "" && time.Since(m.saveMsgTime) > 5*time.Second {
			m.saveMsg = ""
		}
		return m, tickCmd()

	case playbackEndedMsg:
		m.finished = true
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 18
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}
		m.renderFrame()
		return m, nil
	}

	return m, nil
}

// renderFrame extracts the viewport around the playback cursor and converts
// it for the terminal.
func (m *Model) renderFrame() {
	if m.width == 0 || m.view == nil {
		return
	}
	cols := m.width - 4
	rows := m.height - chromeRows
	if cols < 8 {
		cols = 8
	}
	if rows < 3 {
		rows = 3
	}
	img := m.view.Render(m.player.Position())
	m.frame = m.renderer.Render(img, cols, rows)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render("spectro")
	title := titleStyle.Render(m.metadata.Title)
	if m.metadata.Artist != "" {
		title += artistStyle.Render("  " + m.metadata.Artist)
	}

	elapsedStr := timeStyle.Render(util.FormatDuration(m.elapsed))
	durationStr := timeStyle.Render(util.FormatDuration(m.duration))
	var ratio float64
	if m.duration > 0 {
		ratio = float64(m.elapsed) / float64(m.duration)
	}
	progressLine := fmt.Sprintf("%s %s %s", elapsedStr, m.progress.ViewAs(ratio), durationStr)

	statusLine := statusStyle.Render(m.statusText())
	if m.saveMsg != "" {
		statusLine += helpStyle.Render("  " + m.saveMsg)
	}

	help := helpStyle.Render(helpText())

	lines := "\n"
	lines += "  " + header + "  " + title + "\n"
	lines += "\n"
	if m.frame != "" {
		lines += indentBlock(m.frame) + "\n"
	}
	lines += "\n"
	lines += "  " + progressLine + "\n"
	lines += "  " + statusLine + "\n"
	lines += "\n"
	lines += "  " + help + "\n"

	return lines
}

func (m Model) statusText() string {
	icon, text := "▶", "playing"
	switch {
	case m.paused:
		icon, text = "❚❚", "paused"
	case m.finished && m.player.Direction() > 0:
		icon, text = "■", "end of track"
	case m.player.Direction() < 0:
		icon, text = "◀", "reverse"
	}
	return fmt.Sprintf("%s %s  %s", icon, text, m.player.SpeedLabel())
}

func windowTitle(title string, paused bool) string {
	if paused {
		return "⏸ " + title + " — spectro"
	}
	return "▶ " + title + " — spectro"
}
