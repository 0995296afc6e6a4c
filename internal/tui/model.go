// Package tui implements the Bubble Tea TUI for smartlp.
package tui

import (
	"context"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/notify"
	"github.com/skykid17/smartlp-sub005/internal/core/panel"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/internal/core/selection"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
	"github.com/skykid17/smartlp-sub005/internal/tui/components"
	tuinotify "github.com/skykid17/smartlp-sub005/internal/tui/notify"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateSearching
	stateConfirming
	stateShowingDetail
	stateShowingHelp
)

// focusArea is the pane receiving cursor keys.
type focusArea int

const (
	focusTable focusArea = iota
	focusPanel
)

// Options configures the TUI.
type Options struct {
	// Watcher reports external edits of the JSON selection file. Nil
	// disables live reload.
	Watcher *jsonfile.Watcher
}

// Model is the main Bubble Tea model.
type Model struct {
	cfg     *config.Config
	client  *api.Client
	service *console.Service
	keys    *KeybindingResolver
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	tables []*recordTable
	active int
	focus  focusArea

	panel        *panel.Panel
	panelCursor  int
	scheduler    *selection.SyncScheduler
	syncRequests chan struct{}
	watchEvents  <-chan jsonfile.ChangeEvent

	state         UIState
	search        textinput.Model
	spinner       spinner.Model
	help          help.Model
	confirm       components.ConfirmModal
	pendingDelete string
	deleting      bool
	detail        *components.DetailDialog
	detailID      record.ID
	helpDialog    *components.HelpDialog

	notifyBus     *tuinotify.Bus
	notifications *NotificationBuffer
	toasts        *ToastController
	toastTicking  bool

	width    int
	height   int
	quitting bool
}

// New creates a Model over the console application.
func New(app *console.App, opts Options) (Model, error) {
	cfg := app.Config
	svc := app.Services()

	tables := make([]*recordTable, 0, len(console.Tables))
	for _, name := range console.Tables {
		sel, err := svc.Selection(name)
		if err != nil {
			return Model{}, err
		}
		columns := cfg.TUI.Columns.Entries
		if name == console.TableRules {
			columns = cfg.TUI.Columns.Rules
		}
		tables = append(tables, newRecordTable(name, columns, sel, cfg.Tables.PageSize))
	}
	entries := tables[0]

	syncRequests := make(chan struct{}, 1)
	scheduler := selection.NewSyncScheduler(cfg.Selection.SyncDebounce, func() {
		select {
		case syncRequests <- struct{}{}:
		default:
		}
	})
	scheduler.Subscribe(app.Bus, entries.sel.StorageKey())

	notifications := NewNotificationBuffer()
	eventbus.NewNotificationRouter(app.Bus, notifications).Register()

	toasts := NewToastController()
	notifyBus := tuinotify.NewBus(notify.NewHistory(notify.DefaultHistorySize))
	notifyBus.Subscribe(toasts.Push)

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 200
	ti.SetWidth(40)
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	inputStyles.Focused.Placeholder = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	ti.SetStyles(inputStyles)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescriptionStyle
	h.Styles.ShortSeparator = styles.HelpDescriptionStyle

	ctx, cancel := context.WithCancel(context.Background())

	var watchEvents <-chan jsonfile.ChangeEvent
	if opts.Watcher != nil {
		watchEvents = opts.Watcher.Watch(ctx)
	}

	return Model{
		cfg:           cfg,
		client:        app.Client,
		service:       svc,
		keys:          NewKeybindingResolver(cfg.Keybindings),
		log:           logging.Component("tui"),
		ctx:           ctx,
		cancel:        cancel,
		tables:        tables,
		panel:         panel.New(entries.sel, app.Client, app.Bus, panel.Options{}),
		scheduler:     scheduler,
		syncRequests:  syncRequests,
		watchEvents:   watchEvents,
		search:        ti,
		spinner:       s,
		help:          h,
		notifyBus:     notifyBus,
		notifications: notifications,
		toasts:        toasts,
	}, nil
}

// Init loads the first page of every table and starts the listeners.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.tables)+4)
	for _, t := range m.tables {
		cmds = append(cmds, t.load(m.ctx, m.client))
	}
	cmds = append(cmds,
		m.spinner.Tick,
		m.notifications.WaitForSignal(),
		listenForSyncRequest(m.syncRequests),
	)
	if m.watchEvents != nil {
		cmds = append(cmds, listenForSelectionFile(m.watchEvents))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Window
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	// Data loaded
	case pageLoadedMsg:
		return m.handlePageLoaded(msg)
	case panelSyncedMsg:
		return m.handlePanelSynced(msg)
	case matchLoadedMsg:
		return m.handleMatchLoaded(msg)
	case deleteCompleteMsg:
		return m.handleDeleteComplete(msg)

	// Background listeners
	case syncRequestMsg:
		return m.handleSyncRequest()
	case selectionFileChangedMsg:
		return m.handleSelectionFileChanged(msg)
	case drainNotificationsMsg:
		return m.handleDrainNotifications()
	case toastTickMsg:
		return m.handleToastTick()

	// Input
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateSearching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.scheduler.Stop()
	m.cancel()
	return m, tea.Quit
}

func (m Model) activeTable() *recordTable { return m.tables[m.active] }

func (m Model) table(name string) *recordTable {
	for _, t := range m.tables {
		if t.name == name {
			return t
		}
	}
	return nil
}

func (m Model) entries() *recordTable { return m.table(console.TableEntries) }

func (m Model) loadTable(t *recordTable) tea.Cmd {
	return t.load(m.ctx, m.client)
}

// panelVisible reports whether the configuration panel is shown next to
// the active table. The panel belongs to the entries table.
func (m Model) panelVisible() bool {
	return m.activeTable().name == console.TableEntries && m.panel.State() == panel.Open
}

func (m Model) openPanel() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		err := p.Open(ctx)
		return panelSyncedMsg{ran: true, err: err}
	}
}

func (m Model) syncPanel() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		ran, err := p.Sync(ctx)
		return panelSyncedMsg{ran: ran, err: err}
	}
}

// removeFromConfig drops id from the entries selection. With the panel
// open the panel re-syncs as part of the removal.
func (m Model) removeFromConfig(id record.ID) tea.Cmd {
	if m.panel.State() != panel.Open {
		m.entries().sel.RemoveIDs(id)
		return nil
	}

	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		ran, err := p.RemoveFromConfig(ctx, id)
		return panelSyncedMsg{ran: ran, err: err}
	}
}

func (m Model) deleteSelected(t *recordTable) tea.Cmd {
	svc, ctx, name, sel := m.service, m.ctx, t.name, t.sel
	return func() tea.Msg {
		res, err := svc.DeleteSelected(ctx, name, sel)
		return deleteCompleteMsg{table: name, result: res, err: err}
	}
}

func (m Model) findMatch(id record.ID, text, regex string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		spans, err := client.FindMatch(ctx, text, regex)
		return matchLoadedMsg{id: id, text: text, spans: spans, err: err}
	}
}

// ensureToastTick starts the toast countdown unless it is already running.
func (m *Model) ensureToastTick() tea.Cmd {
	if m.toastTicking || !m.toasts.HasToasts() {
		return nil
	}
	m.toastTicking = true
	return scheduleToastTick()
}

func (m *Model) notifyError(format string, args ...any) tea.Cmd {
	m.log.Error().Msgf(format, args...)
	m.notifyBus.Errorf(format, args...)
	return m.ensureToastTick()
}

// bodyHeight is the number of table rows that fit on screen.
func (m Model) bodyHeight() int {
	return max(m.height-tableBodyTop-footerLines, 1)
}

// layout splits the screen width between the table and the panel.
func (m Model) layout() (tableWidth, panelX, panelWidth int) {
	if !m.panelVisible() {
		return m.width, m.width, 0
	}
	panelWidth = max(m.width*2/5, min(panelMinWidth, m.width/2))
	tableWidth = m.width - panelWidth - 1
	return tableWidth, tableWidth + 1, panelWidth
}
