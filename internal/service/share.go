package service

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/octobees/cardshare/internal/entity"
	"github.com/octobees/cardshare/internal/validation"
)

const vcardLineLimit = 75

// ShareBundle holds every share payload for one profile.
type ShareBundle struct {
	VCard     string `json:"vcard" yaml:"vcard"`
	MailtoURL string `json:"mailto" yaml:"mailto"`
	SMSURL    string `json:"sms" yaml:"sms"`
	Title     string `json:"title" yaml:"title"`
	Text      string `json:"text" yaml:"text"`
}

// Share builds all payloads for rec. Phone numbers are normalized with
// region as the default country.
func Share(rec entity.ContactRecord, region string) ShareBundle {
	return ShareBundle{
		VCard:     VCard(rec, region),
		MailtoURL: MailtoURL(rec),
		SMSURL:    SMSURL(rec),
		Title:     "Kontakt: " + rec.Name,
		Text:      rec.Name + " - " + rec.Title + " bei " + rec.Company,
	}
}

// VCard renders rec as a vCard 3.0 document with CRLF line endings. TEL is
// in E.164 when the number parses, verbatim otherwise.
func VCard(rec entity.ContactRecord, region string) string {
	tel := validation.DialablePhone(rec.Phone, region)
	family, given := splitName(rec.Name)

	lines := []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:" + escapeVCard(family) + ";" + escapeVCard(given) + ";;;",
		"FN:" + escapeVCard(rec.Name),
		"ORG:" + escapeVCard(rec.Company),
		"TITLE:" + escapeVCard(rec.Title),
		"EMAIL;TYPE=INTERNET:" + escapeVCard(rec.Email),
		"TEL:" + escapeVCard(tel),
		"URL:" + escapeVCard(rec.Website),
		"ADR:;;" + escapeVCard(rec.Address) + ";;;;",
	}
	if len(rec.Tags) > 0 {
		escaped := make([]string, len(rec.Tags))
		for i, t := range rec.Tags {
			escaped[i] = escapeVCard(t)
		}
		lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
	}
	lines = append(lines, "END:VCARD")

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(foldLine(l))
		b.WriteString("\r\n")
	}
	return b.String()
}

// MailtoURL opens a prefilled mail with the contact details.
func MailtoURL(rec entity.ContactRecord) string {
	subject := "Kontaktdaten von " + rec.Name
	body := "Hier sind meine Kontaktdaten:\n\n" +
		"Name: " + rec.Name + "\n" +
		"Position: " + rec.Title + "\n" +
		"Firma: " + rec.Company + "\n" +
		"E-Mail: " + rec.Email + "\n" +
		"Telefon: " + rec.Phone + "\n" +
		"Website: " + rec.Website + "\n" +
		"Adresse: " + rec.Address + "\n\n" +
		"Viele Grüße,\n" + rec.Name
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// SMSURL opens a prefilled text message.
func SMSURL(rec entity.ContactRecord) string {
	msg := rec.Name + " - " + rec.Title + " bei " + rec.Company + ". E-Mail: " + rec.Email + ", Tel: " + rec.Phone
	return "sms:?body=" + encodeComponent(msg)
}

// encodeComponent percent-encodes like a URI component: spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var vcardEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func escapeVCard(s string) string {
	return vcardEscaper.Replace(s)
}

// foldLine splits l into chunks of at most vcardLineLimit octets without
// breaking a UTF-8 sequence; continuation lines start with a space.
func foldLine(l string) string {
	if len(l) <= vcardLineLimit {
		return l
	}
	var b strings.Builder
	limit := vcardLineLimit
	for len(l) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(l[cut]) {
			cut--
		}
		b.WriteString(l[:cut])
		b.WriteString("\r\n ")
		l = l[cut:]
		limit = vcardLineLimit - 1
	}
	b.WriteString(l)
	return b.String()
}

func splitName(name string) (family, given string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[len(parts)-1], strings.Join(parts[:len(parts)-1], " ")
	}
}
