package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ansiblegate/internal/resolver"
)

// browseCmd opens the interactive module browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse discovered modules interactively",
	Long: `Opens a filterable list of every module found on the search roots.
Selecting a module shows its embedded documentation in a side pane.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGate()
		if err != nil {
			return err
		}
		defer g.Close()
		_, err = tea.NewProgram(newBrowseModel(g.Resolver()), tea.WithAltScreen()).Run()
		return err
	},
}

// moduleItem adapts a registry entry to list.Item
type moduleItem struct {
	name string
}

func (i moduleItem) Title() string       { return i.name }
func (i moduleItem) Description() string { return "" }
func (i moduleItem) FilterValue() string { return i.name }

type browseModel struct {
	resolver *resolver.Resolver
	list     list.Model
	viewport viewport.Model
	width    int
	height   int

	focusViewport bool
}

var (
	browseTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	browsePaneStyle  = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")).
				Padding(0, 1)
	browseFocusStyle = browsePaneStyle.
				BorderForeground(lipgloss.Color("205"))
)

func newBrowseModel(res *resolver.Resolver) browseModel {
	names := res.GetModulesList("")
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = moduleItem{name: name}
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false

	l := list.New(items, delegate, 0, 0)
	l.Title = fmt.Sprintf("Ansible modules (%d)", len(names))
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = browseTitleStyle

	vp := viewport.New(0, 0)
	vp.SetContent("Select a module to view its documentation.")

	return browseModel{resolver: res, list: l, viewport: vp}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		listWidth := m.width / 3
		m.list.SetSize(listWidth-2, m.height-2)
		m.viewport.Width = m.width - listWidth - 4
		m.viewport.Height = m.height - 4

	case tea.KeyMsg:
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "tab":
				m.focusViewport = !m.focusViewport
				return m, nil
			}
		}
	}

	if m.focusViewport {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		before := m.list.SelectedItem()
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
		if after := m.list.SelectedItem(); after != nil && after != before {
			m.showDocumentation(after.(moduleItem).name)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *browseModel) showDocumentation(name string) {
	mod, err := m.resolver.LoadModule(name)
	if err != nil {
		m.viewport.SetContent(fmt.Sprintf("failed to load %s: %v", name, err))
		return
	}
	doc := strings.TrimSpace(mod.Documentation())
	if doc == "" {
		doc = "(module carries no documentation)"
	}
	m.viewport.SetContent(doc)
	m.viewport.GotoTop()
}

func (m browseModel) View() string {
	listPane := browsePaneStyle
	docPane := browsePaneStyle
	if m.focusViewport {
		docPane = browseFocusStyle
	} else {
		listPane = browseFocusStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		listPane.Render(m.list.View()),
		docPane.Render(m.viewport.View()))
}
