package tui

import "github.com/charmbracelet/lipgloss"

// ============================================================================
// PALETTE
// ============================================================================

var (
	colorPrimary   = lipgloss.Color("#8B5CF6")
	colorSecondary = lipgloss.Color("#06B6D4")
	colorSuccess   = lipgloss.Color("#10B981")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorDimmed    = lipgloss.Color("#374151")
	colorText      = lipgloss.Color("#F8FAFC")
	colorTextMuted = lipgloss.Color("#94A3B8")
	colorBgPanel   = lipgloss.Color("#1E293B")
)

// ============================================================================
// STYLES
// ============================================================================

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(colorSuccess)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorWarning)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	codeStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgPanel).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(colorBgPanel).
			Foreground(colorText).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorPrimary)

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(colorDimmed)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

const logo = "wrangle"

func renderKeyHint(key, description string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(description)
}
