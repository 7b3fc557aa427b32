package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	viewport "github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jamesrr39/goutil/logpkg"

	"mapview/internal/config"
	"mapview/internal/controller"
	"mapview/internal/engine"
	"mapview/internal/presentation"
	"mapview/internal/responsive"
	"mapview/internal/urlstate"
)

// Publisher receives a snapshot of the view after every update.
type Publisher interface {
	Publish(controller.Snapshot)
}

type Options struct {
	Logger    *logpkg.Logger
	Config    *config.Config
	Factory   engine.Factory
	Location  urlstate.Location
	Publisher Publisher
}

type focusArea int

const (
	focusMap focusArea = iota
	focusLayers
	focusFeatures
)

type mountMsg struct{}

type Model struct {
	width  int
	height int

	log       *logpkg.Logger
	ctrl      *controller.Controller
	adapter   *presentation.Adapter
	detector  *responsive.Detector
	queue     *dispatchQueue
	publisher Publisher

	cellW, cellH int
	// map size last sent to the controller, in cells
	sentW, sentH int

	helpVisible bool
	status      string
	focus       focusArea

	// layer list
	layerCursor int
	layersVP    viewport.Model

	// feature list
	featureIdx int
	selVersion uint64
	tbl        table.Model

	// style picker
	picker bool
	l      list.Model

	// open-link mode
	pasteMode bool
	ta        textarea.Model
}

func New(opts Options) Model {
	cfg := opts.Config
	m := Model{
		log:         opts.Logger,
		queue:       newDispatchQueue(),
		publisher:   opts.Publisher,
		detector:    responsive.NewDetector(cfg.Breakpoints, cfg.CellWidth),
		cellW:       cfg.CellWidth,
		cellH:       cfg.CellHeight,
		helpVisible: true,
		status:      "mapview ready",
	}
	m.ctrl = controller.New(controller.Options{
		Logger:   opts.Logger,
		Factory:  opts.Factory,
		Dispatch: m.queue.Dispatch,
		Styles:   cfg.Styles,
		Codec:    cfg.Codec(),
		Location: opts.Location,
	})
	m.adapter = presentation.New(m.ctrl.Layers(), m.ctrl.Selection())

	// style picker setup
	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Map style"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste a mapview link. Press Enter to open; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.ShowLineNumbers = false
	m.ta.SetWidth(50)
	m.ta.SetHeight(3)
	// feature property table; rows follow the highlighted feature
	m.tbl = table.New(table.WithColumns(propertyColumns(36)))
	m.tbl.SetHeight(8)
	m.layersVP = viewport.New(0, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.queue.wait(), func() tea.Msg { return mountMsg{} })
}

// Controller exposes the controller for callers that drive the model outside a tea.Program.
func (m Model) Controller() *controller.Controller {
	return m.ctrl
}
