package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TruncatedMarker is appended to message bodies cut at the display limit
const TruncatedMarker = "\n[... message truncated ...]"

// TextProcessor prepares backend text for terminal display
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// TruncateText cuts text to at most maxSize bytes without splitting a rune.
// A non-positive maxSize disables the limit.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", cut),
		zap.Int("max_size", maxSize))

	return text[:cut] + TruncatedMarker
}

// SanitizeUTF8 drops invalid byte sequences and control characters that would upset a terminal.
// Newlines and tabs survive.
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToValidUTF8(text, ""))

	if len(clean) != len(text) {
		tp.logger.Debug("Text sanitized",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(clean)))
	}
	return clean
}

// ProcessText sanitizes and then truncates text in one operation
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}

// OneLine collapses whitespace and shortens text to maxRunes for a table cell
func (tp *TextProcessor) OneLine(text string, maxRunes int) string {
	flat := strings.Join(strings.Fields(tp.SanitizeUTF8(text)), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(flat) <= maxRunes {
		return flat
	}
	if maxRunes <= 3 {
		return string([]rune(flat)[:maxRunes])
	}
	return string([]rune(flat)[:maxRunes-3]) + "..."
}
