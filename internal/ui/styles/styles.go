// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Headers, labels
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, timestamps

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"} // Unfocused borders
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#54A0FF", Dark: "#54A0FF"} // Current panel

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Running sessions
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Warnings
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors, cancelled sessions

	// Tab bar colors
	TabActiveFgColor = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	TabActiveBgColor = lipgloss.AdaptiveColor{Light: "#FB7299", Dark: "#FB7299"} // bilibili pink
	TabInactiveColor = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#999999"}

	// Live room colors
	DanmakuUserColor = lipgloss.AdaptiveColor{Light: "#00A1D6", Dark: "#23ADE5"}
	DanmakuTextColor = lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}
	GiftColor        = lipgloss.AdaptiveColor{Light: "#FF9F43", Dark: "#FF9F43"}
	EnterColor       = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#777777"}
	PopularityColor  = lipgloss.AdaptiveColor{Light: "#FB7299", Dark: "#FB7299"}

	// Bottom line colors
	PromptColor      = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}
	NoticeInfoColor  = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	NoticeErrorColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Tab bar
	TabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(TabActiveFgColor).
			Background(TabActiveBgColor)

	TabInactiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Foreground(TabInactiveColor)

	// Session status markers
	RunningMarkerStyle   = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	FinishedMarkerStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	CancelledMarkerStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Live room events
	TimestampStyle   = lipgloss.NewStyle().Foreground(TextMutedColor)
	DanmakuUserStyle = lipgloss.NewStyle().Bold(true).Foreground(DanmakuUserColor)
	DanmakuTextStyle = lipgloss.NewStyle().Foreground(DanmakuTextColor)
	GiftStyle        = lipgloss.NewStyle().Foreground(GiftColor)
	EnterStyle       = lipgloss.NewStyle().Italic(true).Foreground(EnterColor)
	PopularityStyle  = lipgloss.NewStyle().Bold(true).Foreground(PopularityColor)

	// Bottom line
	PromptStyle      = lipgloss.NewStyle().Bold(true).Foreground(PromptColor)
	NoticeInfoStyle  = lipgloss.NewStyle().Foreground(NoticeInfoColor)
	NoticeErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(NoticeErrorColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	// Hints and overlays
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(1, 2)
)
