package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Error         lipgloss.Style
	Warning       lipgloss.Style
	Info          lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// Palette.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A4FCF", Dark: "#8B80F9"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#9A9A9A"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#3FB950"}
	colorRed     = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	colorYellow  = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}
	colorBlue    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"}
)

// DefaultStyles returns the colored styles used on terminals.
func DefaultStyles() *Styles {
	return &Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Underline(true),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(colorMuted),
		Success:       lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		Error:         lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		Warning:       lipgloss.NewStyle().Foreground(colorYellow),
		Info:          lipgloss.NewStyle().Foreground(colorBlue),
		StatusSuccess: lipgloss.NewStyle().Foreground(colorGreen),
		StatusFailed:  lipgloss.NewStyle().Foreground(colorRed),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header1:       plain,
		Header2:       plain,
		Bold:          plain,
		Muted:         plain,
		Success:       plain,
		Error:         plain,
		Warning:       plain,
		Info:          plain,
		StatusSuccess: plain,
		StatusFailed:  plain,
	}
}
