// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Preset string
	Mode   string
	Colors map[string]string
}

// ApplyTheme applies a complete theme configuration.
// Order of application:
// 1. Start with default colors
// 2. Apply preset (if specified)
// 3. Apply individual color overrides
// 4. Rebuild all Style objects
func ApplyTheme(cfg ThemeConfig) error {
	colors := maps.Clone(DefaultPreset.Colors)

	if cfg.Preset != "" && cfg.Preset != "default" {
		preset, ok := Presets[cfg.Preset]
		if !ok {
			return fmt.Errorf("unknown theme preset: %s (valid: %s)", cfg.Preset, strings.Join(PresetNames(), ", "))
		}
		maps.Copy(colors, preset.Colors)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		colors[token] = value
	}

	switch cfg.Mode {
	case "":
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		return fmt.Errorf("invalid theme mode: %s (must be \"light\" or \"dark\")", cfg.Mode)
	}

	applyColors(colors)
	rebuildStyles()
	return nil
}

// PresetNames returns the built-in preset names, sorted.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(Presets))
}

// colorTargets maps each token to the color variable it sets.
func colorTargets() map[ColorToken]*lipgloss.AdaptiveColor {
	return map[ColorToken]*lipgloss.AdaptiveColor{
		TokenTextPrimary:   &TextPrimaryColor,
		TokenTextSecondary: &TextSecondaryColor,
		TokenTextMuted:     &TextMutedColor,
		TokenBorderDefault: &BorderDefaultColor,
		TokenBorderFocus:   &BorderFocusColor,
		TokenStatusSuccess: &StatusSuccessColor,
		TokenStatusWarning: &StatusWarningColor,
		TokenStatusError:   &StatusErrorColor,
		TokenTabActiveFg:   &TabActiveFgColor,
		TokenTabActiveBg:   &TabActiveBgColor,
		TokenTabInactive:   &TabInactiveColor,
		TokenDanmakuUser:   &DanmakuUserColor,
		TokenDanmakuText:   &DanmakuTextColor,
		TokenGift:          &GiftColor,
		TokenEnter:         &EnterColor,
		TokenPopularity:    &PopularityColor,
		TokenPrompt:        &PromptColor,
		TokenNoticeInfo:    &NoticeInfoColor,
		TokenNoticeError:   &NoticeErrorColor,
	}
}

func applyColors(colors map[ColorToken]string) {
	targets := colorTargets()
	for token, hex := range colors {
		if target, ok := targets[token]; ok {
			// Same color for both modes
			*target = lipgloss.AdaptiveColor{Light: hex, Dark: hex}
		}
	}
}

// rebuildStyles recreates all Style objects with updated colors.
// This is necessary because lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
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
	RunningMarkerStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)
	FinishedMarkerStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	CancelledMarkerStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Live room events
	TimestampStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	DanmakuUserStyle = lipgloss.NewStyle().Bold(true).Foreground(DanmakuUserColor)
	DanmakuTextStyle = lipgloss.NewStyle().Foreground(DanmakuTextColor)
	GiftStyle = lipgloss.NewStyle().Foreground(GiftColor)
	EnterStyle = lipgloss.NewStyle().Italic(true).Foreground(EnterColor)
	PopularityStyle = lipgloss.NewStyle().Bold(true).Foreground(PopularityColor)

	// Bottom line
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(PromptColor)
	NoticeInfoStyle = lipgloss.NewStyle().Foreground(NoticeInfoColor)
	NoticeErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(NoticeErrorColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true).
		Padding(1, 2)
}

func isValidToken(token ColorToken) bool {
	return slices.Contains(AllTokens(), token)
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
