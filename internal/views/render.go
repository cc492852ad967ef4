package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Frame is one full screen: the list rail, the bucketed task column and the
// details column, framed by a title bar and a status line.
type Frame struct {
	Mode      string
	ListTitle string
	Bell      string

	Lists   string
	Tasks   string
	Details string
	// drawn above the details, e.g. the command palette or help
	Overlay string
	// bell drawer; empty when closed
	Notifications string

	Status        string
	StatusIsError bool
	Keys          string
	// terminal columns; zero means defaultWidth
	Width int
}

const (
	defaultWidth = 120
	railWidth    = 22
	// narrower terminals stack the details under the task column
	stackBelow = 96
	// rounded border plus horizontal padding
	chrome = 4
)

var (
	appNameStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	modeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	bellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	columnStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	taskColStyle = columnStyle.BorderForeground(lipgloss.Color("12"))
	drawerStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color("11"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bucketStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	doneStyle    = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func RenderFrame(f Frame) string {
	width := f.Width
	if width <= 0 {
		width = defaultWidth
	}

	lines := []string{titleBar(f, width), body(f, width)}
	if f.Notifications != "" {
		lines = append(lines, drawerStyle.Width(width).Render(f.Notifications))
	}
	if f.Status != "" {
		if f.StatusIsError {
			lines = append(lines, failStyle.Render("error: "+f.Status))
		} else {
			lines = append(lines, okStyle.Render(f.Status))
		}
	}
	if f.Keys != "" {
		lines = append(lines, hintStyle.Render(f.Keys))
	}
	return strings.Join(lines, "\n")
}

func titleBar(f Frame, width int) string {
	left := appNameStyle.Render("twodo") + " " + modeStyle.Render("["+f.Mode+"]") + " " + f.ListTitle
	right := bellStyle.Render(f.Bell)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func body(f Frame, width int) string {
	rail := columnStyle.Width(railWidth).Render(f.Lists)
	details := f.Details
	if f.Overlay != "" {
		details = f.Overlay + "\n\n" + details
	}

	rest := width - railWidth - chrome
	if width < stackBelow {
		inner := max(rest-chrome, 20)
		col := lipgloss.JoinVertical(lipgloss.Left,
			taskColStyle.Width(inner).Render(f.Tasks),
			columnStyle.Width(inner).Render(details),
		)
		return lipgloss.JoinHorizontal(lipgloss.Top, rail, col)
	}

	detailWidth := rest*2/5 - chrome
	taskWidth := rest - detailWidth - 2*chrome
	return lipgloss.JoinHorizontal(lipgloss.Top,
		rail,
		taskColStyle.Width(taskWidth).Render(f.Tasks),
		columnStyle.Width(detailWidth).Render(details),
	)
}

// RenderMarkdown renders task descriptions. Glamour failures fall back to
// the raw text.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
