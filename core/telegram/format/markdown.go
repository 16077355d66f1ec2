package format

import "strings"

var mdV1Escaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// EscapeMarkdown escapes Telegram Markdown (V1) special characters in
// user-provided text interpolated into formatted messages.
func EscapeMarkdown(text string) string {
	return mdV1Escaper.Replace(text)
}
