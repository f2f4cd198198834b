// Package styles contains Lip Gloss style definitions.
package styles

// ColorToken represents a named, themeable color.
type ColorToken string

// Color tokens organized by category.
// These are the keys users can override in their config.
const (
	// Text hierarchy
	TokenTextPrimary   ColorToken = "text.primary"
	TokenTextSecondary ColorToken = "text.secondary"
	TokenTextMuted     ColorToken = "text.muted"

	// Borders
	TokenBorderDefault ColorToken = "border.default"
	TokenBorderFocus   ColorToken = "border.focus"

	// Status indicators
	TokenStatusSuccess ColorToken = "status.success"
	TokenStatusWarning ColorToken = "status.warning"
	TokenStatusError   ColorToken = "status.error"

	// Tab bar
	TokenTabActiveFg ColorToken = "tab.active.fg"
	TokenTabActiveBg ColorToken = "tab.active.bg"
	TokenTabInactive ColorToken = "tab.inactive"

	// Live room
	TokenDanmakuUser ColorToken = "danmaku.user"
	TokenDanmakuText ColorToken = "danmaku.text"
	TokenGift        ColorToken = "gift"
	TokenEnter       ColorToken = "enter"
	TokenPopularity  ColorToken = "popularity"

	// Bottom line
	TokenPrompt      ColorToken = "prompt"
	TokenNoticeInfo  ColorToken = "notice.info"
	TokenNoticeError ColorToken = "notice.error"
)

// AllTokens returns all valid color tokens for validation.
func AllTokens() []ColorToken {
	return []ColorToken{
		// Text hierarchy
		TokenTextPrimary,
		TokenTextSecondary,
		TokenTextMuted,

		// Borders
		TokenBorderDefault,
		TokenBorderFocus,

		// Status indicators
		TokenStatusSuccess,
		TokenStatusWarning,
		TokenStatusError,

		// Tab bar
		TokenTabActiveFg,
		TokenTabActiveBg,
		TokenTabInactive,

		// Live room
		TokenDanmakuUser,
		TokenDanmakuText,
		TokenGift,
		TokenEnter,
		TokenPopularity,

		// Bottom line
		TokenPrompt,
		TokenNoticeInfo,
		TokenNoticeError,
	}
}
