package validation

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to interpret numbers written without a country code.
const DefaultPhoneRegion = "DE"

// NormalizePhone formats raw as E.164 when it is a valid number for region,
// otherwise it returns an empty string.
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// DialablePhone prefers the E.164 form of a sanitized phone value and falls back
// to the sanitized value itself.
func DialablePhone(phone, region string) string {
	if normalized := NormalizePhone(phone, region); normalized != "" {
		return normalized
	}
	return SanitizeText(phone, KindPhone, MaxPhoneLength)
}
