package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperscene/pkg/layout"
	"github.com/matzehuels/hyperscene/pkg/scene"
	"github.com/matzehuels/hyperscene/pkg/session"
)

// distanceStep scales the equilibrium distance per +/- key press.
const distanceStep = 1.25

// energySettled is the tick energy below which the view reports a settled layout.
const energySettled = 0.01

var canvasStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(colorDim)

var watchStatus = lipgloss.NewStyle().Foreground(colorGray)

// watchCommand creates the watch command, a live terminal view of the scene.
func (c *CLI) watchCommand() *cobra.Command {
	var opts sessionOpts

	cmd := &cobra.Command{
		Use:   "watch [model.yaml...]",
		Short: "Watch the layout settle in the terminal",
		Long: `Open a live terminal view of a model's scene.

The layout runs at the configured tick rate. Toggle class and instance nodes,
pause the simulation and change the node spacing while it runs. Positions are
saved to the cache on exit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args, opts)
		},
	}
	opts.register(cmd)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, paths []string, opts sessionOpts) error {
	m, err := c.loadModel(paths)
	if err != nil {
		return err
	}
	sess, store, err := c.newSession(ctx, m, modelKey(paths[0]), opts)
	if err != nil {
		return err
	}
	defer store.Close()

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	model := newWatchModel(ctx, sess, paths[0], c.cfg.TickInterval())
	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if err := sess.SavePositions(context.Background()); err != nil {
		c.Logger.Warn("could not save positions", "err", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return runErr
}

// =============================================================================
// Key bindings
// =============================================================================

type watchKeys struct {
	Classes   key.Binding
	Instances key.Binding
	Pause     key.Binding
	Closer    key.Binding
	Farther   key.Binding
	Save      key.Binding
	Quit      key.Binding
}

func newWatchKeys() watchKeys {
	return watchKeys{
		Classes:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "classes")),
		Instances: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "instances")),
		Pause:     key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Closer:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "closer")),
		Farther:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "farther")),
		Save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Classes, k.Instances, k.Pause, k.Closer, k.Farther, k.Save, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Classes, k.Instances},
		{k.Pause, k.Closer, k.Farther},
		{k.Save, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

type tickMsg time.Time

type watchModel struct {
	ctx      context.Context
	sess     *session.Session
	title    string
	interval time.Duration
	keys     watchKeys
	help     help.Model

	width, height int
	last          layout.Result
	status        string
}

func newWatchModel(ctx context.Context, sess *session.Session, title string, interval time.Duration) watchModel {
	return watchModel{
		ctx:      ctx,
		sess:     sess,
		title:    title,
		interval: interval,
		keys:     newWatchKeys(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tickMsg:
		m.last = m.sess.Tick()
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.sess.Filters()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Classes):
		m.setStatus(m.sess.ShowClasses(!f.ShowClasses), onOff("classes", !f.ShowClasses))
	case key.Matches(msg, m.keys.Instances):
		m.setStatus(m.sess.ShowInstances(!f.ShowInstances), onOff("instances", !f.ShowInstances))
	case key.Matches(msg, m.keys.Pause):
		on := !m.sess.LayoutEnabled()
		m.sess.SetLayoutEnabled(on)
		m.setStatus(nil, onOff("layout", on))
	case key.Matches(msg, m.keys.Closer):
		m.sess.SetEquilibriumDistance(m.sess.EquilibriumDistance() / distanceStep)
		m.setStatus(nil, fmt.Sprintf("distance %.0f", m.sess.EquilibriumDistance()))
	case key.Matches(msg, m.keys.Farther):
		m.sess.SetEquilibriumDistance(m.sess.EquilibriumDistance() * distanceStep)
		m.setStatus(nil, fmt.Sprintf("distance %.0f", m.sess.EquilibriumDistance()))
	case key.Matches(msg, m.keys.Save):
		m.setStatus(m.sess.SavePositions(m.ctx), "positions saved")
	}
	return m, nil
}

func (m *watchModel) setStatus(err error, ok string) {
	if err != nil {
		m.status = styleIconError.Render(iconError) + " " + err.Error()
		return
	}
	m.status = styleIconSuccess.Render(iconSuccess) + " " + ok
}

func onOff(what string, on bool) string {
	if on {
		return what + " on"
	}
	return what + " off"
}

func (m watchModel) View() string {
	var b strings.Builder

	reg := m.sess.Registry()
	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("  ")
	settled := m.last.Energy < energySettled || !m.sess.LayoutEnabled()
	b.WriteString(statsLine(reg.Len(), reg.EdgeCount(), settled))
	if st, ok := m.sess.Stats(); ok {
		b.WriteString(StyleDim.Render(fmt.Sprintf(" · %d classes · %d instances · %d relations · %d facts",
			st.Classes, st.Instances, st.RelationClasses, st.Facts)))
	}
	b.WriteString("\n")

	// Title, status and help take three lines, the border two more.
	w, h := max(m.width-2, 10), max(m.height-5, 3)
	b.WriteString(canvasStyle.Render(strings.Join(plot(reg, w, h), "\n")))
	b.WriteString("\n")

	b.WriteString(watchStatus.Render(fmt.Sprintf("distance %.0f  energy %.3f  ",
		m.sess.EquilibriumDistance(), m.last.Energy)))
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

// plot draws the visible nodes of reg onto a w×h character grid, fitting
// their bounding box into it. Each node shows as its label, cut to fit.
func plot(reg *scene.Registry, w, h int) []string {
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", w))
	}

	var nodes []*scene.Node
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range reg.Nodes() {
		p := n.ScenePos()
		if !n.Visible || !p.IsFinite() {
			continue
		}
		nodes = append(nodes, n)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	spanX, spanY := math.Max(maxX-minX, 1), math.Max(maxY-minY, 1)
	for _, n := range nodes {
		p := n.ScenePos()
		label := []rune(n.Label)
		if len(label) == 0 {
			label = []rune(n.ID)
		}
		if n.Kind == scene.KindContainer {
			label = append([]rune{'['}, append(label, ']')...)
		}
		label = label[:min(len(label), w)]

		col := int((p.X - minX) / spanX * float64(w-len(label)))
		row := int((p.Y - minY) / spanY * float64(h-1))
		copy(grid[row][col:], label)
	}

	lines := make([]string, h)
	for i, r := range grid {
		lines[i] = string(r)
	}
	return lines
}
