// pkg/utils/text.go

package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Flatten removes every space-class character, newlines included. Label and
// value stay adjacent even when the PDF text layer spaced them out.
func Flatten(text string) string {
	return strings.Map(func(r rune) rune {
		// IsSpace covers U+3000 and U+00A0
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

// FoldWidth maps full-width forms (digits, colons, the yen sign) to their
// canonical width so one pattern covers both.
func FoldWidth(text string) string {
	return width.Fold.String(text)
}

// CleanAmount removes commas, currency glyphs and whitespace from a monetary amount
func CleanAmount(amount string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ',', r == '¥', r == '￥':
			return -1
		case unicode.IsSpace(r):
			return -1
		}
		return r
	}, amount)
}

// DigitsOnly keeps only the decimal digits of text
func DigitsOnly(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
}

// ContainsDigits checks if text contains numeric digits
func ContainsDigits(text string) bool {
	for _, r := range text {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// IsAllDigits reports whether text is non-empty and made only of digits
func IsAllDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NormalizeNewlines converts all newline variants to \n
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// TruncateText truncates text to maxRunes characters with an ellipsis
func TruncateText(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "..."
}
