package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/sports-travel-platform/internal/catalog"
	"github.com/wolfman30/sports-travel-platform/internal/leads"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

// Form identifies which public form produced an inquiry.
type Form string

const (
	FormLead    Form = "lead"
	FormContact Form = "contact"
)

// Inquiry is a visitor's submission from a public form.
type Inquiry struct {
	Form          Form
	Name          string
	Email         string
	Phone         string
	EventInterest string
	Message       string
}

func (in Inquiry) interest() string {
	if s := strings.TrimSpace(in.EventInterest); s != "" {
		return s
	}
	return "General"
}

// ErrReceiverNotConfigured is returned when no agency inbox is set.
var ErrReceiverNotConfigured = errors.New("notify: receiver email not configured")

// InquiryNotifier mails inquiries to the agency inbox and confirms receipt to
// the visitor.
type InquiryNotifier struct {
	email    EmailSender
	receiver string
	logger   *logging.Logger
}

// NewInquiryNotifier creates an inquiry notifier delivering to receiver.
func NewInquiryNotifier(email EmailSender, receiver string, logger *logging.Logger) *InquiryNotifier {
	if email == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &InquiryNotifier{email: email, receiver: strings.TrimSpace(receiver), logger: logger}
}

// Notify sends the agency notification and then the visitor confirmation.
// Only a failed agency notification is returned; a failed confirmation is
// logged.
func (n *InquiryNotifier) Notify(ctx context.Context, in Inquiry) error {
	if n.receiver == "" {
		return ErrReceiverNotConfigured
	}
	if err := n.email.Send(ctx, agencyMessage(in, n.receiver)); err != nil {
		n.logger.Error("inquiry notification failed", "form", in.Form, "error", err)
		return fmt.Errorf("notify: agency email: %w", err)
	}
	n.logger.Info("inquiry forwarded", "form", in.Form, "interest", in.interest())

	if err := n.email.Send(ctx, confirmationMessage(in, n.receiver)); err != nil {
		n.logger.Warn("inquiry confirmation failed", "form", in.Form, "error", err)
	}
	return nil
}

func agencyMessage(in Inquiry, receiver string) EmailMessage {
	var subject string
	switch in.Form {
	case FormContact:
		subject = "Contact Form: " + in.Name
		if in.EventInterest != "" {
			subject += " - " + in.EventInterest
		}
	default:
		subject = "New Lead: " + in.Name
		if in.EventInterest != "" {
			subject += " (" + in.EventInterest + ")"
		}
	}
	text := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nInterested In: %s\n\n%s",
		in.Name, in.Email, in.Phone, in.interest(), in.Message)
	body := fmt.Sprintf(`<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Interested In:</strong> %s</p>
<hr/>
<p>%s</p>`,
		html.EscapeString(in.Name), html.EscapeString(in.Email), html.EscapeString(in.Phone),
		html.EscapeString(in.interest()), html.EscapeString(in.Message))
	return EmailMessage{
		To:      receiver,
		ReplyTo: in.Email,
		Subject: subject,
		Body:    text,
		HTML:    body,
	}
}

func confirmationMessage(in Inquiry, receiver string) EmailMessage {
	lead := "Thanks for your interest. Our team will get in touch shortly to discuss your request."
	if in.Form == FormContact {
		lead = "Thanks for reaching out. Our team will connect with you soon to discuss your request."
	}
	text := fmt.Sprintf("Hi %s,\n\n%s\n\nYour submission:\n%s\n\nIf you need immediate assistance, reply to this email or write to us at %s.",
		in.Name, lead, in.Message, receiver)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>%s</p>
<p><strong>Your submission:</strong></p>
<p>%s</p>
<hr/>
<p>If you need immediate assistance, reply to this email or write to us at %s.</p>`,
		html.EscapeString(in.Name), lead, html.EscapeString(in.Message), html.EscapeString(receiver))
	return EmailMessage{
		To:      in.Email,
		ToName:  in.Name,
		ReplyTo: receiver,
		Subject: "Thanks for contacting SportsTravel",
		Body:    text,
		HTML:    body,
	}
}

// EventLookup resolves event names for notifications.
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*catalog.Event, error)
}

// LeadNotifier tells the agency and the traveller about a lead entered in
// the back office.
type LeadNotifier struct {
	inquiries *InquiryNotifier
	events    EventLookup
	logger    *logging.Logger
}

var _ leads.Notifier = (*LeadNotifier)(nil)

// NewLeadNotifier creates a lead notifier. events may be nil, in which case
// the event id is shown.
func NewLeadNotifier(inquiries *InquiryNotifier, events EventLookup, logger *logging.Logger) *LeadNotifier {
	if inquiries == nil {
		panic("notify: inquiry notifier required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{inquiries: inquiries, events: events, logger: logger}
}

// LeadCreated forwards the lead as an inquiry.
func (n *LeadNotifier) LeadCreated(ctx context.Context, lead *leads.Lead) error {
	if lead == nil {
		return nil
	}
	interest := lead.EventID
	if n.events != nil && lead.EventID != "" {
		if ev, err := n.events.GetEvent(ctx, lead.EventID); err == nil {
			interest = ev.Name
		} else {
			n.logger.Debug("lead notifier: event lookup failed", "event_id", lead.EventID, "error", err)
		}
	}
	msg := fmt.Sprintf("%d traveller(s), travelling %s.", lead.NumberOfTravelers, lead.TravelDate.Format("02 Jan 2006"))
	if lead.Notes != "" {
		msg += "\n" + lead.Notes
	}
	return n.inquiries.Notify(ctx, Inquiry{
		Form:          FormLead,
		Name:          lead.Name,
		Email:         lead.Email,
		Phone:         lead.Phone,
		EventInterest: interest,
		Message:       msg,
	})
}
