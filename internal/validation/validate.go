package validation

import (
	"mime"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// Field limits of a contact record.
const (
	MaxNameLength    = 100
	MaxTitleLength   = 100
	MaxCompanyLength = 100
	MaxEmailLength   = 254
	MaxPhoneLength   = 20
	MaxURLLength     = 2000
	MaxAddressLength = 200
	MaxNotesLength   = 2000
	MaxTagLength     = 50
	MaxTags          = 20

	MaxImageBytes = 5 * 1024 * 1024
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hexColor     = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	idnaProfile  = idna.Lookup
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// Substrings that mark a file name as an executable or script payload.
var suspiciousNameParts = []string{".exe", ".js", ".html", ".php", ".asp"}

// Reasons reported by ValidateImageFile.
const (
	ReasonImageTooLarge  = "File size must be under 5MB"
	ReasonImageType      = "Only JPEG and PNG files are allowed"
	ReasonSuspiciousName = "Invalid file type detected"
)

// ValidateEmail reports whether email has a local@domain.tld shape, a host
// usable for lookups and at most MaxEmailLength characters.
func ValidateEmail(email string) bool {
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndexByte(email, '@')+1:]
	if !isDomainValid(domain) {
		return false
	}
	ascii, err := idnaProfile.ToASCII(domain)
	return err == nil && ascii != ""
}

// ValidateURL accepts absolute https URLs of at most MaxURLLength characters.
func ValidateURL(raw string) bool {
	if raw == "" || len(raw) > MaxURLLength {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "https" && u.Host != "" && u.Hostname() != ""
}

// ValidateHexColor accepts "#" followed by six hex digits in either case.
// An empty color is "not set" and is checked with IsColorSet instead.
func ValidateHexColor(color string) bool {
	return hexColor.MatchString(color)
}

// IsColorSet distinguishes an unset color from a malformed one.
func IsColorSet(color string) bool {
	return color != ""
}

// ValidateTextLength reports whether text fits in maxLength characters.
func ValidateTextLength(text string, maxLength int) bool {
	return utf8.RuneCountInString(text) <= maxLength
}

// ImageFile describes an uploaded image as declared by the client.
type ImageFile struct {
	Name      string
	Size      int64
	MediaType string
}

// ImageCheck is the outcome of ValidateImageFile.
type ImageCheck struct {
	OK     bool
	Reason string
}

// ValidateImageFile applies the upload constraints and returns the first
// failing reason. Name and media type are client supplied, so the name check
// only catches careless uploads, not spoofed ones.
func ValidateImageFile(file ImageFile) ImageCheck {
	if file.Size > MaxImageBytes {
		return ImageCheck{Reason: ReasonImageTooLarge}
	}
	if !allowedImageType(file.MediaType) {
		return ImageCheck{Reason: ReasonImageType}
	}
	name := strings.ToLower(file.Name)
	for _, part := range suspiciousNameParts {
		if strings.Contains(name, part) {
			return ImageCheck{Reason: ReasonSuspiciousName}
		}
	}
	return ImageCheck{OK: true}
}

func allowedImageType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	_, ok := allowedImageTypes[mt]
	return ok
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
