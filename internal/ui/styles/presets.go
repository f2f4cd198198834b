// Package styles contains Lip Gloss style definitions.
package styles

// Preset represents a complete color theme.
type Preset struct {
	Name        string
	Description string
	Colors      map[ColorToken]string
}

// Presets contains all built-in theme presets.
var Presets = map[string]Preset{
	"default":          DefaultPreset,
	"catppuccin-mocha": CatppuccinMochaPreset,
	"dracula":          DraculaPreset,
	"nord":             NordPreset,
}

// DefaultPreset is the biliterm color scheme.
// Color values match the Dark values in styles.go.
var DefaultPreset = Preset{
	Name:        "default",
	Description: "Default biliterm theme",
	Colors: map[ColorToken]string{
		// Text hierarchy
		TokenTextPrimary:   "#CCCCCC",
		TokenTextSecondary: "#BBBBBB",
		TokenTextMuted:     "#696969",

		// Borders
		TokenBorderDefault: "#696969",
		TokenBorderFocus:   "#54A0FF",

		// Status indicators
		TokenStatusSuccess: "#73F59F",
		TokenStatusWarning: "#FECA57",
		TokenStatusError:   "#FF8787",

		// Tab bar
		TokenTabActiveFg: "#FFFFFF",
		TokenTabActiveBg: "#FB7299",
		TokenTabInactive: "#999999",

		// Live room
		TokenDanmakuUser: "#23ADE5",
		TokenDanmakuText: "#DDDDDD",
		TokenGift:        "#FF9F43",
		TokenEnter:       "#777777",
		TokenPopularity:  "#FB7299",

		// Bottom line
		TokenPrompt:      "#54A0FF",
		TokenNoticeInfo:  "#73F59F",
		TokenNoticeError: "#FF8787",
	},
}

// CatppuccinMochaPreset is the Catppuccin Mocha (dark) theme.
// Colors from: https://catppuccin.com/palette
var CatppuccinMochaPreset = Preset{
	Name:        "catppuccin-mocha",
	Description: "Catppuccin Mocha - warm, cozy dark theme",
	Colors: map[ColorToken]string{
		// Text hierarchy
		TokenTextPrimary:   "#CDD6F4", // text
		TokenTextSecondary: "#BAC2DE", // subtext1
		TokenTextMuted:     "#6C7086", // overlay0

		// Borders
		TokenBorderDefault: "#6C7086", // overlay0
		TokenBorderFocus:   "#89B4FA", // blue

		// Status indicators
		TokenStatusSuccess: "#A6E3A1", // green
		TokenStatusWarning: "#F9E2AF", // yellow
		TokenStatusError:   "#F38BA8", // red

		// Tab bar
		TokenTabActiveFg: "#1E1E2E", // base
		TokenTabActiveBg: "#F5C2E7", // pink
		TokenTabInactive: "#A6ADC8", // subtext0

		// Live room
		TokenDanmakuUser: "#89DCEB", // sky
		TokenDanmakuText: "#CDD6F4", // text
		TokenGift:        "#FAB387", // peach
		TokenEnter:       "#7F849C", // overlay1
		TokenPopularity:  "#F5C2E7", // pink

		// Bottom line
		TokenPrompt:      "#CBA6F7", // mauve
		TokenNoticeInfo:  "#A6E3A1", // green
		TokenNoticeError: "#F38BA8", // red
	},
}

// DraculaPreset is the Dracula theme.
// Colors from: https://draculatheme.com/contribute
var DraculaPreset = Preset{
	Name:        "dracula",
	Description: "Dracula - dark theme with vibrant colors",
	Colors: map[ColorToken]string{
		// Text hierarchy
		TokenTextPrimary:   "#F8F8F2", // foreground
		TokenTextSecondary: "#F8F8F2", // foreground
		TokenTextMuted:     "#6272A4", // comment

		// Borders
		TokenBorderDefault: "#6272A4", // comment
		TokenBorderFocus:   "#BD93F9", // purple

		// Status indicators
		TokenStatusSuccess: "#50FA7B", // green
		TokenStatusWarning: "#F1FA8C", // yellow
		TokenStatusError:   "#FF5555", // red

		// Tab bar
		TokenTabActiveFg: "#282A36", // background
		TokenTabActiveBg: "#FF79C6", // pink
		TokenTabInactive: "#6272A4", // comment

		// Live room
		TokenDanmakuUser: "#8BE9FD", // cyan
		TokenDanmakuText: "#F8F8F2", // foreground
		TokenGift:        "#FFB86C", // orange
		TokenEnter:       "#6272A4", // comment
		TokenPopularity:  "#FF79C6", // pink

		// Bottom line
		TokenPrompt:      "#BD93F9", // purple
		TokenNoticeInfo:  "#50FA7B", // green
		TokenNoticeError: "#FF5555", // red
	},
}

// NordPreset is the Nord theme.
// Colors from: https://www.nordtheme.com/docs/colors-and-palettes
var NordPreset = Preset{
	Name:        "nord",
	Description: "Nord - arctic, north-bluish palette",
	Colors: map[ColorToken]string{
		// Text hierarchy
		TokenTextPrimary:   "#ECEFF4", // snow storm 3
		TokenTextSecondary: "#E5E9F0", // snow storm 2
		TokenTextMuted:     "#4C566A", // polar night 4

		// Borders
		TokenBorderDefault: "#4C566A", // polar night 4
		TokenBorderFocus:   "#88C0D0", // frost 2

		// Status indicators
		TokenStatusSuccess: "#A3BE8C", // aurora green
		TokenStatusWarning: "#EBCB8B", // aurora yellow
		TokenStatusError:   "#BF616A", // aurora red

		// Tab bar
		TokenTabActiveFg: "#2E3440", // polar night 1
		TokenTabActiveBg: "#B48EAD", // aurora purple
		TokenTabInactive: "#D8DEE9", // snow storm 1

		// Live room
		TokenDanmakuUser: "#88C0D0", // frost 2
		TokenDanmakuText: "#ECEFF4", // snow storm 3
		TokenGift:        "#D08770", // aurora orange
		TokenEnter:       "#4C566A", // polar night 4
		TokenPopularity:  "#B48EAD", // aurora purple

		// Bottom line
		TokenPrompt:      "#81A1C1", // frost 3
		TokenNoticeInfo:  "#A3BE8C", // aurora green
		TokenNoticeError: "#BF616A", // aurora red
	},
}
