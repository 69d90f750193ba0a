// Package notify raises an issue-tracker ticket whenever a contact is created.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/octobees/cardshare/internal/validation"
)

const (
	TicketTo      = "issue@flexoptix.net"
	TicketFrom    = "Contact Scanner <onboarding@resend.dev>"
	TicketSubject = "Neuer Kontakt erstellt"

	dueDateLayout = "02-Jan-2006"
	dueIn         = 7 * 24 * time.Hour
	maxNameLength = 50
)

// ErrInvalidName is returned when a first or last name is empty after cleanup.
var ErrInvalidName = errors.New("first and last name are required")

// ContactNotification is the request to announce a new contact.
type ContactNotification struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Ticket is the message handed to the issue tracker's mail intake.
type Ticket struct {
	ID      string    `json:"id"`
	To      string    `json:"to"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Handle  string    `json:"handle"`
	Created time.Time `json:"created"`
}

// Notifier delivers tickets.
type Notifier interface {
	Notify(ctx context.Context, t Ticket) error
}

// BuildTicket renders the tracker directives for n. Names are reduced to
// letters, digits, apostrophes and hyphens so they cannot inject directives.
func BuildTicket(n ContactNotification, now time.Time) (Ticket, error) {
	first := handlePart(n.FirstName)
	last := handlePart(n.LastName)
	if first == "" || last == "" {
		return Ticket{}, ErrInvalidName
	}
	handle := first + "." + last

	body := strings.Join([]string{
		"@project = EO",
		"@assignee = " + handle,
		"@priority = Major",
		"@dueDate = " + now.Add(dueIn).Format(dueDateLayout),
		"@dueDateFormat = dd-MMM-yyyy",
		"@reporter = " + handle,
	}, "\n")

	return Ticket{
		To:      TicketTo,
		From:    TicketFrom,
		Subject: TicketSubject,
		Body:    body,
		Handle:  handle,
		Created: now.UTC(),
	}, nil
}

func handlePart(name string) string {
	clean := validation.SanitizeText(name, validation.KindText, maxNameLength)
	var b strings.Builder
	for _, word := range strings.Fields(clean) {
		word = strings.Trim(strings.Map(handleRune, word), "-")
		if word == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(word)
	}
	return b.String()
}

func handleRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' {
		return r
	}
	return -1
}

// Send builds and delivers the ticket for n.
func Send(ctx context.Context, notifier Notifier, n ContactNotification, now time.Time) (Ticket, error) {
	t, err := BuildTicket(n, now)
	if err != nil {
		return Ticket{}, err
	}
	if err := notifier.Notify(ctx, t); err != nil {
		return Ticket{}, fmt.Errorf("deliver ticket: %w", err)
	}
	return t, nil
}
