package update

import (
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/notify"
	"github.com/sandeepkv93/twodo/internal/scheduler"
	"github.com/sandeepkv93/twodo/internal/store"
)

type Mode string

const (
	ModeBrowse  Mode = "browse"
	ModeAdd     Mode = "add"
	ModeSearch  Mode = "search"
	ModePalette Mode = "palette"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// Deps wires the model to its collaborators. Only Store is required.
type Deps struct {
	Store   *store.Store
	Backend Backend
	// remote mode only
	QuickAdd      QuickAdder
	Notifications NotificationSyncer

	Scheduler *scheduler.Engine
	Center    *notify.Center

	Location      *time.Location
	ShowTimezone  bool
	DefaultFilter string
	Timeout       time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

type Model struct {
	Mode              Mode
	Query             store.Query
	Cursor            int
	Status            StatusBar
	HelpVisible       bool
	ShowNotifications bool
	// requests in flight; the spinner runs while > 0
	Pending   int
	Quitting  bool
	LastError error

	store     *store.Store
	backend   Backend
	quickAdd  QuickAdder
	syncer    NotificationSyncer
	scheduler *scheduler.Engine
	center    *notify.Center
	loc       *time.Location
	showTZ    bool
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger
	// remote backends run mutations as commands
	async bool
	// token of the newest quick add; older results are dropped
	addSeq uint64
	// task the add input edits instead of creating a new one
	editID string
	width  int

	addInput     textinput.Model
	searchInput  textinput.Model
	commandInput textinput.Model
	spinner      spinner.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

// mutationMsg carries the outcome of a backend call back into Update.
type mutationMsg struct {
	Op      string
	Task    model.Task
	Removed []string
	Err     error
}

type quickAddMsg struct {
	Seq      uint64
	Op       string
	Task     model.Task
	Feedback string
	Err      error
}

// categoryMsg reports a rename or delete of a custom category.
type categoryMsg struct {
	Op       string
	From     string
	Category model.Category
	Err      error
}

type notificationsSyncedMsg struct {
	Unread int
	Err    error
}

func NewModel(deps Deps) Model {
	m := Model{
		Mode:      ModeBrowse,
		Query:     store.ParseFilter(deps.DefaultFilter),
		store:     deps.Store,
		backend:   deps.Backend,
		quickAdd:  deps.QuickAdd,
		syncer:    deps.Notifications,
		scheduler: deps.Scheduler,
		center:    deps.Center,
		loc:       deps.Location,
		showTZ:    deps.ShowTimezone,
		timeout:   deps.Timeout,
		now:       deps.Now,
		logger:    deps.Logger,
	}
	if deps.DefaultFilter == "" {
		m.Query = store.Query{Filter: store.FilterToday}
	}
	if m.backend == nil {
		m.backend = LocalBackend{Store: deps.Store}
	} else if _, local := m.backend.(LocalBackend); !local {
		m.async = true
	}
	if m.center == nil {
		m.center = notify.New()
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.timeout <= 0 {
		m.timeout = 30 * time.Second
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m.initBubbleComponents()
	m.syncSelection()
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.Placeholder = "what needs doing?"
	m.addInput.CharLimit = 256
	m.addInput.Width = 44

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 40

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m Model) clock() time.Time {
	return m.now().In(m.loc)
}
