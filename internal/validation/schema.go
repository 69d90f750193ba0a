package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/octobees/cardshare/internal/entity"
)

// MaxImageDataLength bounds an encoded image: base64 of MaxImageBytes plus the
// data URL header.
const MaxImageDataLength = (MaxImageBytes+2)/3*4 + 64

// ErrRejected is matched by every Rejection.
var ErrRejected = errors.New("contact record rejected")

// Rejection names the field that made a candidate record unacceptable.
type Rejection struct {
	Field  string
	Reason string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s %s", r.Field, r.Reason)
}

// Unwrap lets callers match any rejection with errors.Is(err, ErrRejected).
func (r *Rejection) Unwrap() error {
	return ErrRejected
}

func reject(field, reason string) (entity.ContactRecord, error) {
	return entity.ContactRecord{}, &Rejection{Field: field, Reason: reason}
}

// Guard turns a loosely typed candidate into a ContactRecord. Known keys are
// sanitized and validated, unknown keys are dropped. A candidate failing any
// required check is rejected as a whole.
func Guard(candidate map[string]any) (entity.ContactRecord, error) {
	if candidate == nil {
		return reject("record", "is missing")
	}
	text := func(key string, kind FieldKind, max int) string {
		return SanitizeValue(candidate[key], kind, max)
	}

	// Email and website are cut one past their limit so an oversized value is
	// rejected rather than shortened into a different, valid looking one.
	rec := entity.ContactRecord{
		Name:    text("name", KindText, MaxNameLength),
		Title:   text("title", KindText, MaxTitleLength),
		Company: text("company", KindText, MaxCompanyLength),
		Email:   text("email", KindEmail, MaxEmailLength+1),
		Phone:   text("phone", KindPhone, MaxPhoneLength),
		Website: text("website", KindURL, MaxURLLength+1),
		Address: text("address", KindText, MaxAddressLength),
		Notes:   text("notes", KindNotes, MaxNotesLength),
	}

	if rec.Name == "" {
		return reject("name", "is required")
	}
	if rec.Email == "" {
		return reject("email", "is required")
	}
	if !ValidateEmail(rec.Email) {
		return reject("email", "must be a valid email address")
	}
	if rec.Website != "" && !ValidateURL(rec.Website) {
		return reject("website", "must be an https URL")
	}

	rec.CustomColor = text("customColor", KindText, len("#000000")+1)
	if IsColorSet(rec.CustomColor) && !ValidateHexColor(rec.CustomColor) {
		return reject("customColor", "must be a hex color like #A855F7")
	}

	tags, err := normalizeTags(candidate["tags"])
	if err != nil {
		return reject("tags", err.Error())
	}
	rec.Tags = tags

	rec.Template = entity.Template(strings.ToLower(text("template", KindText, 32)))
	if !rec.Template.Valid() {
		rec.Template = entity.DefaultTemplate
	}

	rec.ProfileImage = imageValue(candidate["profileImage"])
	rec.CompanyLogo = imageValue(candidate["companyLogo"])

	return rec, nil
}

// GuardRecord runs a typed record through the same rules as Guard.
func GuardRecord(r entity.ContactRecord) (entity.ContactRecord, error) {
	return Guard(r.ToMap())
}

// NormalizeTags sanitizes tags, drops blanks and duplicates and keeps the
// first MaxTags in insertion order.
func NormalizeTags(values []string) []string {
	raw := make([]any, 0, len(values))
	for _, v := range values {
		raw = append(raw, v)
	}
	tags, _ := normalizeTags(raw)
	return tags
}

func normalizeTags(v any) ([]string, error) {
	var items []any
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	default:
		return nil, errors.New("must be a list of strings")
	}

	seen := make(map[string]struct{}, len(items))
	tags := make([]string, 0, len(items))
	for _, item := range items {
		tag := SanitizeValue(item, KindTag, MaxTagLength)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags, nil
}

// Encoded images are optional; anything that is not a JPEG or PNG data URL is
// treated as unset.
func imageValue(v any) string {
	s, ok := v.(string)
	if !ok || len(s) > MaxImageDataLength {
		return ""
	}
	s = SanitizeText(s, KindImage, MaxImageDataLength)
	if !ValidateImageDataURL(s) {
		return ""
	}
	return s
}

// ValidateImageDataURL accepts base64 data URLs carrying a JPEG or PNG image.
func ValidateImageDataURL(s string) bool {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || payload == "" {
		return false
	}
	mediaType, found := strings.CutPrefix(header, "data:")
	if !found {
		return false
	}
	mediaType, isBase64 := strings.CutSuffix(mediaType, ";base64")
	if !isBase64 {
		return false
	}
	_, allowed := allowedImageTypes[strings.ToLower(mediaType)]
	return allowed
}
