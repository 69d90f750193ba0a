// Package validation holds the rules every user supplied or externally fetched
// contact field passes through before it is persisted or rendered.
package validation

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// FieldKind tags a value with the rules its sanitizer applies.
type FieldKind string

// Field kinds known to the sanitizer.
const (
	KindText  FieldKind = "text"
	KindEmail FieldKind = "email"
	KindURL   FieldKind = "url"
	KindPhone FieldKind = "phone"
	KindNotes FieldKind = "notes"
	KindTag   FieldKind = "tag"
	KindImage FieldKind = "image"
)

// DefaultMaxLength caps values sanitized without an explicit limit.
const DefaultMaxLength = 1000

// Elements whose body is never user visible text.
var droppedBodies = map[string]struct{}{
	"script":   {},
	"style":    {},
	"iframe":   {},
	"noscript": {},
}

// SanitizeText turns raw into plain text for the given field kind: markup is
// removed, whitespace trimmed and the result cut to maxLength characters.
// A maxLength <= 0 applies DefaultMaxLength.
func SanitizeText(raw string, kind FieldKind, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	clean := stripMarkup(strings.ToValidUTF8(raw, "\uFFFD"))
	if kind == KindPhone {
		clean = keepPhoneRunes(clean)
	}
	clean = strings.TrimSpace(clean)
	clean = truncate(clean, maxLength)
	return strings.TrimSpace(clean)
}

// SanitizeValue sanitizes a loosely typed value. Anything that is not a string
// yields an empty string.
func SanitizeValue(v any, kind FieldKind, maxLength int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return SanitizeText(s, kind, maxLength)
}

func stripMarkup(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}
	z := html.NewTokenizer(strings.NewReader(raw))
	var b strings.Builder
	b.Grow(len(raw))
	skipping := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// The only "<" left are ones the tokenizer kept as text. Drop them so
			// removing a tag can never glue a new one together.
			return strings.ReplaceAll(b.String(), "<", "")
		case html.TextToken:
			if skipping == 0 {
				b.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if _, ok := droppedBodies[string(name)]; ok {
				skipping++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if _, ok := droppedBodies[string(name)]; ok && skipping > 0 {
				skipping--
			}
		}
	}
}

func keepPhoneRunes(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == '+', r == '-', r == ' ', r == '(', r == ')':
			return r
		}
		return -1
	}, s)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
