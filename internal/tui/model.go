// Package tui is the interactive terminal screen: pick a price and an optional term,
// then let the app choose one open restaurant nearby.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"upick/internal/location"
	"upick/internal/models"
	"upick/internal/picker"
	"upick/internal/view"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
)

type focus int

const (
	focusTerm focus = iota
	focusPrice
)

type locationMsg location.Status

type resultMsg struct {
	result *models.SearchResult
	err    error
}

type openedMsg struct{ err error }

var errNoLink = errors.New("not available for this restaurant")

const linkHelp = "c call • d directions • w website"

// Model is the bubbletea model of the pick screen.
type Model struct {
	ctx     context.Context
	where   *location.Provider
	search  picker.Searcher
	chooser picker.Chooser
	opener  Opener
	now     func() time.Time

	session  *picker.Session
	term     textinput.Model
	spinner  spinner.Model
	priceIdx int
	focus    focus
	notice   string
}

// Config holds the collaborators of the screen.
type Config struct {
	Locator location.Locator
	Search  picker.Searcher
	Chooser picker.Chooser
	Opener  Opener
	Filters models.SearchFilters
}

// New creates the pick screen. The location is resolved when the program starts.
func New(ctx context.Context, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Search term (optional)"
	ti.Prompt = "│ "
	ti.CharLimit = 80
	ti.Width = 40
	ti.SetValue(cfg.Filters.Term)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = focusedStyle

	if cfg.Chooser == nil {
		cfg.Chooser = picker.Uniform
	}
	if cfg.Opener == nil {
		cfg.Opener = SystemOpener{}
	}

	priceIdx := 0
	for i, p := range models.PriceTiers {
		if p == cfg.Filters.Price {
			priceIdx = i
		}
	}

	now := time.Now
	return Model{
		ctx:      ctx,
		where:    location.NewProvider(cfg.Locator),
		search:   cfg.Search,
		chooser:  cfg.Chooser,
		opener:   cfg.Opener,
		now:      now,
		session:  picker.NewSession("", location.Status{State: location.StatePending}, now()),
		term:     ti,
		spinner:  sp,
		priceIdx: priceIdx,
	}
}

// Init requests the location. The provider asks for permission at most once per model.
func (m Model) Init() tea.Cmd {
	ctx, where := m.ctx, m.where
	return tea.Batch(textinput.Blink, m.spinner.Tick, func() tea.Msg {
		return locationMsg(where.Status(ctx))
	})
}

// Session exposes the current workflow state.
func (m Model) Session() *picker.Session { return m.session }

func (m Model) filters() models.SearchFilters {
	return models.SearchFilters{Term: strings.TrimSpace(m.term.Value()), Price: models.PriceTiers[m.priceIdx]}
}

// Update handles input and async results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case locationMsg:
		m.session.Location = location.Status(msg)
		return m, nil

	case resultMsg:
		now := m.now()
		if msg.err != nil {
			_ = m.session.Fail(msg.err, now)
			log.Warn().Err(msg.err).Msg("pick failed")
		} else {
			_ = m.session.Complete(msg.result, m.chooser, now)
		}
		return m, nil

	case openedMsg:
		if msg.err != nil {
			m.notice = "Could not open link: " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.State != picker.StateLoading && m.session.Location.State != location.StatePending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.term, cmd = m.term.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.pick()
	case "tab", "shift+tab":
		if m.focus == focusTerm {
			m.focus = focusPrice
			m.term.Blur()
		} else {
			m.focus = focusTerm
			m.term.Focus()
		}
		return m, nil
	}

	if m.focus == focusPrice {
		switch msg.String() {
		case "left", "h":
			m.priceIdx = (m.priceIdx + len(models.PriceTiers) - 1) % len(models.PriceTiers)
		case "right", "l":
			m.priceIdx = (m.priceIdx + 1) % len(models.PriceTiers)
		case "c":
			return m, m.open(func(c view.Card) string { return c.Actions.Call })
		case "d":
			return m, m.open(func(c view.Card) string { return c.Actions.Directions })
		case "w":
			return m, m.open(func(c view.Card) string { return c.Actions.Provider })
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.term, cmd = m.term.Update(msg)
	return m, cmd
}

// pick starts a search unless the trigger is disabled.
func (m Model) pick() (tea.Model, tea.Cmd) {
	if !m.session.CanPick() {
		return m, nil
	}

	q, err := m.session.Begin(m.filters(), m.now())
	if err != nil {
		return m, nil
	}

	ctx, search := m.ctx, m.search
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		res, err := search.Search(ctx, q)
		return resultMsg{result: res, err: err}
	})
}

func (m Model) open(link func(view.Card) string) tea.Cmd {
	v := view.Render(m.session)
	if v.Business == nil {
		return nil
	}
	url := link(*v.Business)
	if url == "" {
		return func() tea.Msg { return openedMsg{err: errNoLink} }
	}
	opener := m.opener
	return func() tea.Msg { return openedMsg{err: opener.Open(url)} }
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("U-Pick"))
	b.WriteString("\nLet us know what you're in the mood for and we will pick dinner for you.\n\n")

	b.WriteString(m.term.View())
	b.WriteString("\n")
	b.WriteString(m.priceView())
	b.WriteString("\n\n")

	if m.session.CanPick() {
		b.WriteString(focusedStyle.Render("[ Pick Restaurant ]"))
	} else {
		b.WriteString(disabledStyle.Render("[ Pick Restaurant ]"))
	}
	b.WriteString("\n\n")

	v := view.Render(m.session)
	switch {
	case m.session.Location.State == location.StatePending:
		b.WriteString(m.spinner.View() + " Finding your location...")
	case v.Kind == view.KindBlocked:
		b.WriteString(errorStyle.Render(v.Message))
	case v.Kind == view.KindLoading:
		b.WriteString(m.spinner.View() + " Picking a restaurant...")
	case v.Kind == view.KindError:
		b.WriteString(errorStyle.Render(v.Message))
	case v.Kind == view.KindEmpty:
		b.WriteString(v.Message)
	case v.Kind == view.KindBusiness:
		b.WriteString(RenderCard(*v.Business))
	}
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render("\n" + m.help(v)))
	return b.String()
}

// help lists the keys that work in the current focus.
func (m Model) help(v view.View) string {
	h := "enter pick • tab switch field • ←/→ price • esc quit"
	if v.Business == nil {
		return h
	}
	if m.focus == focusTerm {
		return h + "\ntab to the price field, then: " + linkHelp
	}
	return h + "\n" + linkHelp
}

func (m Model) priceView() string {
	parts := make([]string, len(models.PriceTiers))
	for i, p := range models.PriceTiers {
		label := p.Label()
		if i == m.priceIdx {
			label = "‹" + label + "›"
			if m.focus == focusPrice {
				label = focusedStyle.Render(label)
			}
		} else {
			label = disabledStyle.Render(label)
		}
		parts[i] = label
	}
	return labelStyle.Render("Price ") + strings.Join(parts, "  ")
}
