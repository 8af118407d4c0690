// Package tui is the interactive front end: it runs the pipeline, presents
// the validated message, and acts on the user's choice.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/0vg/GoodGit/internal/commit"
	"github.com/0vg/GoodGit/internal/core"
	"github.com/0vg/GoodGit/internal/git"
	"github.com/0vg/GoodGit/internal/llm"
	"github.com/0vg/GoodGit/internal/utils"
)

const listHeight = 14

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

type MenuAction int

const (
	CommitThis MenuAction = iota
	CopyToClipboard
	Regenerate
	Cancel
)

type item struct {
	title  string
	action MenuAction
}

func (i item) FilterValue() string { return i.title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	str := i.title

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

type model struct {
	list     list.Model
	message  *commit.Message
	choice   MenuAction
	quitting bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch keypress := msg.String(); keypress {
		case "q", "ctrl+c":
			m.quitting = true
			m.choice = Cancel
			return m, tea.Quit

		case "enter":
			i, ok := m.list.SelectedItem().(item)
			if ok {
				m.choice = i.action
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return quitTextStyle.Render("Exiting...")
	}
	return fmt.Sprintf("%s\n\n%s", m.message.String(), m.list.View())
}

// Run drives one invocation end to end: generate, present, act.
func Run(cmd *cobra.Command, args []string, c *core.Core) {
	var subject string
	if len(args) > 0 {
		subject = args[0]
	}

	commitFlag, _ := cmd.Flags().GetBool("commit")
	pushFlag, _ := cmd.Flags().GetBool("push")

	msg, err := generate(c, subject)
	if err != nil {
		reportError(err)
		if errors.Is(err, git.ErrNoStagedChanges) {
			return
		}
		os.Exit(1)
	}

	if commitFlag {
		applyCommit(c, msg, pushFlag)
		return
	}

	if !utils.IsTTY() {
		fmt.Printf("Generated commit message:\n\n%s\n", msg.String())
		fmt.Println("\nRun with --commit to create the commit in non-interactive environments.")
		return
	}

	handleUserResponse(cmd, args, msg, c, pushFlag)
}

func generate(c *core.Core, subject string) (*commit.Message, error) {
	spinner := NewSpinner()
	spinner.Start("Generating commit message...")
	msg, err := c.Generate(context.Background(), subject)
	spinner.Stop()
	return msg, err
}

func handleUserResponse(cmd *cobra.Command, args []string, msg *commit.Message, c *core.Core, push bool) {
	commitTitle := "✅ Commit this"
	if push {
		commitTitle = "✅ Commit and push"
	}
	items := []list.Item{
		item{title: commitTitle, action: CommitThis},
		item{title: "📋 Copy to clipboard and exit", action: CopyToClipboard},
		item{title: "🔄 Regenerate", action: Regenerate},
		item{title: "❌ Cancel", action: Cancel},
	}

	const defaultWidth = 30

	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = ""
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := model{list: l, message: msg}

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		log.Error().Err(err).Msg("Error running Bubble Tea program")
		os.Exit(1)
	}

	if finalModel, ok := finalModel.(model); ok {
		switch finalModel.choice {
		case CommitThis:
			applyCommit(c, msg, push)
		case CopyToClipboard:
			if err := clipboard.WriteAll(msg.String()); err != nil {
				log.Error().Err(err).Msg("Failed to copy to clipboard")
				return
			}
			log.Info().Msg("Commit message copied to clipboard.")
		case Regenerate:
			Run(cmd, args, c)
		case Cancel:
			log.Info().Msg("Commit aborted.")
		}
	}
}

func applyCommit(c *core.Core, msg *commit.Message, push bool) {
	if err := c.Commit(msg); err != nil {
		reportError(err)
		os.Exit(1)
	}
	log.Info().Str("subject", msg.Subject()).Msg("Commit successfully created!")

	if push {
		if err := c.Push(); err != nil {
			reportError(err)
			os.Exit(1)
		}
		log.Info().Msg("Pushed to remote.")
	}
}

// reportError renders failure-kind-specific guidance, since each kind calls
// for a different user action.
func reportError(err error) {
	var authErr *llm.AuthError
	var rateErr *llm.RateLimitError
	var transportErr *llm.TransportError
	var upstreamErr *llm.UpstreamError
	var formatErr *commit.InvalidFormatError
	var commitErr *git.CommitError

	switch {
	case errors.Is(err, git.ErrNoStagedChanges):
		fmt.Println("No staged changes to commit. Stage files with `git add` and try again.")
	case errors.As(err, &authErr):
		log.Error().Err(err).Msg("The API rejected the credential. Check your API key.")
	case errors.As(err, &rateErr):
		log.Error().Err(err).Msg("Rate limited by the API. Wait a moment and try again.")
	case errors.As(err, &transportErr):
		log.Error().Err(err).Msg("Could not reach the API. Check your network connection.")
	case errors.As(err, &upstreamErr):
		log.Error().Err(err).Msg("The API returned an error.")
	case errors.As(err, &formatErr):
		log.Error().Str("raw", formatErr.Raw).Msg(formatErr.Error())
		fmt.Println("The model produced an unusable message. Regenerate, or write the commit message manually.")
	case errors.As(err, &commitErr):
		log.Error().Msg(commitErr.Error())
	default:
		log.Error().Err(err).Msg("Failed")
	}
}
