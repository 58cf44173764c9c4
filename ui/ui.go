// Package ui provides the terminal interface of paste2audio.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/audio"
	"github.com/dgnsrekt/paste2audio/internal/clip"
	"github.com/dgnsrekt/paste2audio/internal/convert"
	"github.com/dgnsrekt/paste2audio/internal/library"
	"github.com/dgnsrekt/paste2audio/internal/tempo"
	"golang.org/x/time/rate"
)

const (
	volumeStep      = 10
	defaultSeekStep = 5 * time.Second
	chromeHeight    = 9 // title, status, progress, controls, help and gaps
)

// Player is the playback surface the UI drives.
type Player interface {
	Load(path string) error
	Loaded() string
	Play() error
	Pause() error
	Toggle() error
	Reset() error
	Seek(pos time.Duration) error
	SetVolume(v float64) error
	Position() time.Duration
	Duration() time.Duration
	State() audio.State
	Unload()
}

// Converter runs conversion jobs and changes the speed of finished ones.
type Converter interface {
	Run(ctx context.Context, text string, factor float64) (*convert.Result, error)
	Respeed(ctx context.Context, path string, factor float64) error
	Cancel()
}

// Clipboard returns trimmed clipboard text or clip.ErrEmpty.
type Clipboard interface {
	Read() (string, error)
}

// Deps are the components the UI wires together.
type Deps struct {
	Clipboard Clipboard
	Converter Converter
	Player    Player
	Library   *library.Library

	// Prepare transforms clipboard text before conversion. Optional.
	Prepare func(string) string
}

type (
	pasteMsg struct {
		text string
		err  error
	}
	convertDoneMsg struct {
		res *convert.Result
		err error
	}
	respeedDoneMsg struct {
		path     string
		from, to float64
		err      error
	}
	tickMsg time.Time

	// LibraryChangedMsg tells the UI a file vanished from disk.
	LibraryChangedMsg struct{ Path string }
)

type model struct {
	cfg  Config
	deps Deps
	ctx  context.Context

	keys     keyMap
	list     list.Model
	progress progress.Model
	spinner  spinner.Model
	help     help.Model

	width, height int

	status     string
	converting bool
	retiming   bool
	speed      float64

	// tempo each recording was produced or last retimed at
	speeds map[string]float64

	volume   int
	position time.Duration
	duration time.Duration
	state    audio.State

	// throttles logging of repeated player errors from the ticker
	errLog *rate.Limiter
}

// NewProgram returns a new Tea program.
func NewProgram(ctx context.Context, cfg Config, deps Deps) *tea.Program {
	log.Debug("Starting paste2audio", "speed", cfg.Speed, "volume", cfg.Volume, "tick", cfg.TickInterval)

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(ctx, cfg, deps), opts...)
}

func newModel(ctx context.Context, cfg Config, deps Deps) model {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 100 * time.Millisecond
	}
	if cfg.SeekStep <= 0 {
		cfg.SeekStep = defaultSeekStep
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	cfg.Volume = clampVolume(cfg.Volume)
	if deps.Prepare == nil {
		deps.Prepare = func(s string) string { return s }
	}

	l := list.New(toItems(deps.Library.Entries()), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Recordings"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipglossSpinner

	m := model{
		cfg:      cfg,
		deps:     deps,
		ctx:      ctx,
		keys:     newKeyMap(),
		list:     l,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:  sp,
		help:     help.New(),
		status:   statusReady,
		speed:    cfg.Speed,
		speeds:   make(map[string]float64),
		volume:   cfg.Volume,
		errLog:   rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
	if err := deps.Player.SetVolume(float64(m.volume) / 100); err != nil {
		log.Warn("Unable to set volume", "volume", m.volume, "err", err)
	}
	return m
}

func (m model) Init() tea.Cmd {
	return tick(m.cfg.TickInterval)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// pass through all keys if we're editing the filter
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.deps.Converter.Cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Paste):
			return m, readClipboard(m.deps.Clipboard)
		case key.Matches(msg, m.keys.PlayPause):
			m.playPause()
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			return m, m.deleteSelected()
		case key.Matches(msg, m.keys.Speed):
			m.speed = tempo.NextSpeed(m.speed).Factor
			return m, m.respeedLoaded()
		case key.Matches(msg, m.keys.VolumeUp):
			m.changeVolume(volumeStep)
			return m, nil
		case key.Matches(msg, m.keys.VolumeDown):
			m.changeVolume(-volumeStep)
			return m, nil
		case key.Matches(msg, m.keys.SeekBack):
			m.seek(-m.cfg.SeekStep)
			return m, nil
		case key.Matches(msg, m.keys.SeekFwd):
			m.seek(m.cfg.SeekStep)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.setSize(m.width, m.height)
			return m, nil
		}

	case pasteMsg:
		return m, m.handlePaste(msg)

	case convertDoneMsg:
		return m, m.handleConvertDone(msg)

	case respeedDoneMsg:
		return m, m.handleRespeedDone(msg)

	case LibraryChangedMsg:
		return m, m.handleLibraryChanged(msg.Path)

	case tickMsg:
		m.refreshPlayback()
		return m, tick(m.cfg.TickInterval)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) setSize(w, h int) {
	m.width, m.height = w, h
	m.progress.Width = max(w-20, 10)
	m.help.Width = w

	listHeight := h - chromeHeight
	if m.help.ShowAll {
		listHeight -= 2
	}
	m.list.SetSize(w, max(listHeight, 3))
}

func (m *model) handlePaste(msg pasteMsg) tea.Cmd {
	if msg.err != nil {
		if errors.Is(msg.err, clip.ErrEmpty) {
			m.status = statusEmpty
			return nil
		}
		log.Error("Clipboard read failed", "err", msg.err)
		m.status = errorStatus(msg.err)
		return nil
	}

	text := m.deps.Prepare(msg.text)
	m.status = statusConverting
	m.converting = true
	return tea.Batch(m.spinner.Tick, runConversion(m.ctx, m.deps.Converter, text, m.speed))
}

func (m *model) handleConvertDone(msg convertDoneMsg) tea.Cmd {
	if convert.IsCanceled(msg.err) {
		// superseded; the newer job reports for both
		return nil
	}
	m.converting = false
	if msg.err != nil {
		log.Error("Conversion failed", "err", msg.err)
		m.status = errorStatus(msg.err)
		return nil
	}

	if _, err := m.deps.Library.Add(msg.res.Path); err != nil {
		log.Error("Unable to add recording", "err", err)
		m.status = errorStatus(err)
		return nil
	}
	m.speeds[msg.res.Path] = msg.res.Speed
	cmd := m.list.SetItems(toItems(m.deps.Library.Entries()))
	m.list.Select(m.deps.Library.Index(msg.res.Path))

	if err := m.deps.Player.Load(msg.res.Path); err != nil {
		log.Error("Unable to load recording", "path", msg.res.Path, "err", err)
		m.status = errorStatus(err)
		return cmd
	}
	m.refreshPlayback()
	m.status = statusDone
	return cmd
}

// respeedLoaded brings the loaded recording to the selected speed. One
// retime runs at a time; a speed picked meanwhile is applied when it ends.
func (m *model) respeedLoaded() tea.Cmd {
	path := m.deps.Player.Loaded()
	if path == "" || m.retiming {
		return nil
	}
	from := m.speedOf(path)
	if from == m.speed {
		return nil
	}
	m.retiming = true
	m.status = fmt.Sprintf(statusRetiming, tempo.Label(m.speed))
	return tea.Batch(m.spinner.Tick, runRespeed(m.ctx, m.deps.Converter, path, from, m.speed))
}

func (m *model) handleRespeedDone(msg respeedDoneMsg) tea.Cmd {
	m.retiming = false
	if msg.err != nil {
		log.Error("Speed change failed", "path", msg.path, "err", msg.err)
		m.status = errorStatus(msg.err)
		return nil
	}
	m.speeds[msg.path] = msg.to

	var cmds []tea.Cmd
	if m.deps.Library.Index(msg.path) >= 0 {
		if _, err := m.deps.Library.Add(msg.path); err != nil {
			log.Warn("Unable to refresh recording", "path", msg.path, "err", err)
		}
		cmds = append(cmds, m.list.SetItems(toItems(m.deps.Library.Entries())))
	}

	p := m.deps.Player
	if p.Loaded() == msg.path {
		playing := p.State() == audio.StatePlaying
		pos := time.Duration(math.Round(float64(p.Position()) * msg.from / msg.to))
		if err := p.Load(msg.path); err != nil {
			log.Error("Unable to reload recording", "path", msg.path, "err", err)
			m.status = errorStatus(err)
			m.refreshPlayback()
			return tea.Batch(cmds...)
		}
		m.playerErr("seek", p.Seek(pos))
		if playing {
			m.playerErr("play", p.Play())
		}
	}
	m.refreshPlayback()
	m.status = fmt.Sprintf(statusRetimed, tempo.Label(msg.to))

	cmds = append(cmds, m.respeedLoaded())
	return tea.Batch(cmds...)
}

func (m model) speedOf(path string) float64 {
	if s, ok := m.speeds[path]; ok && s > 0 {
		return s
	}
	return 1.0
}

func (m model) busy() bool {
	return m.converting || m.retiming
}

func (m *model) handleLibraryChanged(path string) tea.Cmd {
	delete(m.speeds, path)
	if m.deps.Player.Loaded() == path {
		m.deps.Player.Unload()
	}
	cmd := m.list.SetItems(toItems(m.deps.Library.Entries()))
	m.refreshPlayback()
	return cmd
}

func (m model) selected() (string, bool) {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return "", false
	}
	return it.entry.Path, true
}

// ensureLoaded loads the selected file unless it already is.
func (m *model) ensureLoaded() bool {
	path, ok := m.selected()
	if !ok {
		return false
	}
	p := m.deps.Player
	if p.Loaded() == path {
		return true
	}
	if err := p.Load(path); err != nil {
		log.Error("Unable to load recording", "path", path, "err", err)
		m.status = errorStatus(err)
		return false
	}
	return true
}

func (m *model) playPause() {
	path, ok := m.selected()
	if !ok {
		return
	}
	p := m.deps.Player
	if p.Loaded() != path || p.State() == audio.StateStopped {
		if !m.ensureLoaded() {
			return
		}
		m.playerErr("play", p.Play())
	} else {
		m.playerErr("toggle", p.Toggle())
	}
	m.refreshPlayback()
}

func (m *model) reset() {
	if !m.ensureLoaded() {
		return
	}
	m.playerErr("reset", m.deps.Player.Reset())
	m.refreshPlayback()
}

func (m *model) seek(delta time.Duration) {
	p := m.deps.Player
	if p.Loaded() == "" {
		return
	}
	m.playerErr("seek", p.Seek(p.Position()+delta))
	m.refreshPlayback()
}

func (m *model) changeVolume(delta int) {
	m.volume = clampVolume(m.volume + delta)
	m.playerErr("volume", m.deps.Player.SetVolume(float64(m.volume)/100))
}

func (m *model) deleteSelected() tea.Cmd {
	path, ok := m.selected()
	if !ok {
		return nil
	}
	if m.deps.Player.Loaded() == path {
		m.deps.Player.Unload()
	}
	if err := m.deps.Library.Remove(path); err != nil {
		log.Warn("Unable to remove recording", "path", path, "err", err)
	}
	delete(m.speeds, path)
	cmd := m.list.SetItems(toItems(m.deps.Library.Entries()))
	m.refreshPlayback()
	return cmd
}

func (m *model) refreshPlayback() {
	p := m.deps.Player
	m.state = p.State()
	m.position = p.Position()
	m.duration = p.Duration()
}

func (m *model) playerErr(op string, err error) {
	if err == nil || errors.Is(err, audio.ErrNothingLoaded) {
		return
	}
	if m.errLog.Allow() {
		log.Warn("Player error", "op", op, "err", err)
	}
	m.status = errorStatus(err)
}

func clampVolume(v int) int {
	return min(max(v, 0), 100)
}

// COMMANDS

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func readClipboard(c Clipboard) tea.Cmd {
	return func() tea.Msg {
		text, err := c.Read()
		return pasteMsg{text: text, err: err}
	}
}

func runConversion(ctx context.Context, c Converter, text string, speed float64) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Run(ctx, text, speed)
		return convertDoneMsg{res: res, err: err}
	}
}

func runRespeed(ctx context.Context, c Converter, path string, from, to float64) tea.Cmd {
	return func() tea.Msg {
		err := c.Respeed(ctx, path, to/from)
		return respeedDoneMsg{path: path, from: from, to: to, err: err}
	}
}
