package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/validation"
)

// Source says where in the model output the JSON object was found.
type Source int

const (
	SourceNone Source = iota
	SourceWhole
	SourceEmbedded
)

// ParseResult is the outcome of locating a JSON object in model output.
// Object is non-nil exactly when Source is not SourceNone.
type ParseResult struct {
	Source Source
	Object map[string]any
}

// OK reports whether an object was found.
func (p ParseResult) OK() bool {
	return p.Source != SourceNone
}

// maxEmbeddedAttempts bounds how many opening braces are tried as the start
// of an embedded object, keeping the search linear in the content length.
const maxEmbeddedAttempts = 16

// ParseModelOutput reads content as a JSON object, or failing that, the first
// balanced {...} block inside it that decodes as one. It gives up early when
// ctx is done.
func ParseModelOutput(ctx context.Context, content string) ParseResult {
	if obj, ok := decodeObject(strings.TrimSpace(content)); ok {
		return ParseResult{Source: SourceWhole, Object: obj}
	}
	attempts := 0
	for start := strings.IndexByte(content, '{'); start >= 0; {
		if attempts == maxEmbeddedAttempts || ctx.Err() != nil {
			break
		}
		attempts++
		if end := balancedEnd(content, start); end > 0 {
			if obj, ok := decodeObject(content[start:end]); ok {
				return ParseResult{Source: SourceEmbedded, Object: obj}
			}
		}
		next := strings.IndexByte(content[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return ParseResult{}
}

func decodeObject(s string) (map[string]any, bool) {
	if s == "" || s[0] != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// balancedEnd returns the index just past the brace closing the one at start,
// skipping braces inside JSON strings, or -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// MapExtracted copies the seven known keys out of obj. Every value is
// sanitized; an email or website that does not validate is dropped.
func MapExtracted(obj map[string]any) entity.ExtractedCardData {
	text := func(key string, kind validation.FieldKind, max int) string {
		return validation.SanitizeValue(obj[key], kind, max)
	}
	// Email and website are cut one past their limit so oversized values fail
	// validation instead of being shortened into a different address.
	data := entity.ExtractedCardData{
		Name:    text("name", validation.KindText, validation.MaxNameLength),
		Title:   text("title", validation.KindText, validation.MaxTitleLength),
		Company: text("company", validation.KindText, validation.MaxCompanyLength),
		Email:   text("email", validation.KindEmail, validation.MaxEmailLength+1),
		Phone:   text("phone", validation.KindPhone, validation.MaxPhoneLength),
		Website: text("website", validation.KindURL, validation.MaxURLLength+1),
		Address: text("address", validation.KindText, validation.MaxAddressLength),
	}
	if data.Email != "" && !validation.ValidateEmail(data.Email) {
		data.Email = ""
	}
	if data.Website != "" && !validation.ValidateURL(data.Website) {
		data.Website = ""
	}
	return data
}
