package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"

	"playbox/internal/gallery"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtle       = lipgloss.NewStyle().Faint(true)
	cardTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mediaMarker  = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	loadingStyle = lipgloss.NewStyle().Faint(true).Margin(1, 0)
)

type itemsMsg []gallery.Item

type errMsg struct{ err error }

// model drives the gallery viewer: one fetch at startup, then client-side
// pagination over the batch.
type model struct {
	client   *gallery.Client
	pager    *gallery.Pager
	viewport viewport.Model
	loading  bool
	err      error
	width    int
	height   int
}

func newModel(client *gallery.Client) model {
	return model{
		client:   client,
		viewport: viewport.New(80, 20),
		loading:  true,
	}
}

func (m model) Init() tea.Cmd {
	return m.fetch
}

// fetch runs the single batch load. Whatever the outcome, the resulting
// message clears the loading state.
func (m model) fetch() tea.Msg {
	items, err := m.client.LoadItems()
	if err != nil {
		return errMsg{err: err}
	}
	return itemsMsg(items)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsMsg:
		m.loading = false
		m.err = nil
		m.pager = gallery.NewPager([]gallery.Item(msg), gallery.DefaultPageSize)
		m.updateContent()
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4 // Reserve space for header/footer
		m.updateContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "p":
			if m.pager != nil {
				m.pager.Prev()
				m.updateContent()
			}
			return m, nil
		case "right", "n":
			if m.pager != nil {
				m.pager.Next()
				m.updateContent()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// updateContent refreshes the viewport with the cards of the current page.
func (m *model) updateContent() {
	if m.pager == nil {
		return
	}

	var sb strings.Builder
	for _, it := range m.pager.Visible() {
		sb.WriteString(cardTitle.Render(it.Title))
		sb.WriteString("\n")
		sb.WriteString(subtle.Render(it.Date))
		if it.MediaType == "video" {
			sb.WriteString("  ")
			sb.WriteString(mediaMarker.Render("[video]"))
		}
		sb.WriteString("\n")
		sb.WriteString(truncate(it.Explanation, 280))
		sb.WriteString("\n")
		sb.WriteString(subtle.Render(it.URL))
		if it.HDURL != "" && it.MediaType != "video" {
			sb.WriteString("\n")
			sb.WriteString(subtle.Render("HD: " + it.HDURL))
		}
		sb.WriteString("\n\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoTop()
}

// truncate cuts s to at most l runes. Slicing by rune keeps multi-byte
// characters in explanations intact.
func truncate(s string, l int) string {
	r := []rune(s)
	if len(r) > l {
		return string(r[:l-3]) + "..."
	}
	return s
}

func (m model) View() string {
	if m.loading {
		return loadingStyle.Render("Loading...")
	}
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n"
	}
	if m.pager == nil {
		return ""
	}

	header := fmt.Sprintf("%s\n%s",
		titleStyle.Render("Astronomy Picture of the Day"),
		subtle.Render(fmt.Sprintf("%d items", m.pager.Len())))
	footer := subtle.Render(fmt.Sprintf(
		"Page %d of %d • ←/→ pages • q quits", m.pager.Page(), m.pager.TotalPages()))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), footer)
}

func main() {
	viper.SetDefault("APOD_URL", "https://api.nasa.gov/planetary/apod")
	viper.SetDefault("APOD_COUNT", gallery.DefaultCount)
	viper.SetDefault("NASA_API_KEY", "")
	viper.AutomaticEnv()

	apiKey := viper.GetString("NASA_API_KEY")
	if apiKey == "" {
		log.Fatal("NASA_API_KEY must be set")
	}

	client := gallery.NewClient(gallery.Config{
		BaseURL: viper.GetString("APOD_URL"),
		APIKey:  apiKey,
		Count:   viper.GetInt("APOD_COUNT"),
	})

	if _, err := tea.NewProgram(newModel(client), tea.WithAltScreen()).Run(); err != nil {
		log.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
