package notify

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "bookings@sportstravel.in",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "bookings@sportstravel.in",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != "SportsTravel" {
		t.Errorf("expected default from name 'SportsTravel', got %q", sender.fromName)
	}
}

type fakeSendGrid struct {
	sent   []*mail.SGMailV3
	status int
	err    error
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, m)
	return &rest.Response{StatusCode: f.status}, nil
}

func TestSendGridSender_SetsReplyTo(t *testing.T) {
	fake := &fakeSendGrid{status: http.StatusAccepted}
	sender := &SendGridSender{client: fake, fromEmail: "bookings@sportstravel.in", fromName: "SportsTravel", logger: logging.Default()}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "agency@sportstravel.in",
		ReplyTo: "asha@example.com",
		Subject: "New Lead: Asha",
		Body:    "hello",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(fake.sent))
	}
	if got := fake.sent[0].ReplyTo; got == nil || got.Address != "asha@example.com" {
		t.Fatalf("unexpected reply-to %#v", got)
	}

	fake.status = http.StatusUnauthorized
	if err := sender.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})
	if err == nil {
		t.Error("expected error when client is nil")
	}
}

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sesv2.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	fake := &fakeSES{}
	sender := NewSESSender(fake, SESConfig{FromEmail: "bookings@sportstravel.in"}, nil)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "asha@example.com",
		ReplyTo: "agency@sportstravel.in",
		Subject: "Thanks for contacting SportsTravel",
		Body:    "Hi Asha",
		HTML:    "<p>Hi Asha</p>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	in := fake.inputs[0]
	if got := aws.ToString(in.FromEmailAddress); got != "SportsTravel <bookings@sportstravel.in>" {
		t.Errorf("unexpected from %q", got)
	}
	if len(in.ReplyToAddresses) != 1 || in.ReplyToAddresses[0] != "agency@sportstravel.in" {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
	if in.Content.Simple.Body.Html == nil || in.Content.Simple.Body.Text == nil {
		t.Error("expected text and html bodies")
	}

	failing := NewSESSender(&fakeSES{err: errors.New("throttled")}, SESConfig{}, nil)
	if err := failing.Send(context.Background(), EmailMessage{To: "x@example.com"}); err == nil {
		t.Error("expected SES error")
	}
}

func TestStubEmailSender_Send(t *testing.T) {
	sender := NewStubEmailSender(nil)
	if err := sender.Send(context.Background(), EmailMessage{To: "recipient@example.com", Subject: "Test Subject"}); err != nil {
		t.Errorf("stub sender should not return error, got: %v", err)
	}
}
