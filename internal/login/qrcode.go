package login

import (
	"strings"

	"github.com/mdp/qrterminal/v3"
)

// RenderQRCode draws url with half-block characters, two modules per cell
// row, so it fits a terminal.
func RenderQRCode(url string) string {
	if url == "" {
		return ""
	}
	var b strings.Builder
	qrterminal.GenerateHalfBlock(url, qrterminal.L, &b)
	return strings.TrimRight(b.String(), "\n")
}
