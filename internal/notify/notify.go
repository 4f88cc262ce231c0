package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"tutorhive/schedule/internal/schedule"
)

// SendgridNotifier emails the program coordinators when a teacher requests
// completion sign-off.
type SendgridNotifier struct {
	apiKey    string
	fromEmail string
	toEmail   string
}

var _ schedule.Notifier = (*SendgridNotifier)(nil)

func NewSendgridNotifier(apiKey, fromEmail, toEmail string) *SendgridNotifier {
	return &SendgridNotifier{apiKey: apiKey, fromEmail: fromEmail, toEmail: toEmail}
}

func (n *SendgridNotifier) CompletionRequested(_ context.Context, override schedule.Override) error {
	subject, body := completionRequestContent(override)
	from := sgmail.NewEmail("Schedule Portal", n.fromEmail)
	to := sgmail.NewEmail("Program Coordinators", n.toEmail)
	message := sgmail.NewSingleEmail(from, subject, to, body, body)

	resp, err := sendgrid.NewSendClient(n.apiKey).Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// ConsoleNotifier logs instead of sending. Used in development and when no
// SendGrid key is configured.
type ConsoleNotifier struct{}

var _ schedule.Notifier = (*ConsoleNotifier)(nil)

func (ConsoleNotifier) CompletionRequested(_ context.Context, override schedule.Override) error {
	subject, body := completionRequestContent(override)
	log.Printf("notify (console): %s: %s", subject, body)
	return nil
}

func completionRequestContent(override schedule.Override) (string, string) {
	subject := fmt.Sprintf("Completion requested: %s %s", override.Subject, override.Date)
	body := fmt.Sprintf(
		"%s (%s) requested completion sign-off for %s, batch %s, on %s (%s).",
		override.TeacherName,
		override.TeacherUID,
		override.Subject,
		override.Batch,
		override.Date,
		override.TimeRange,
	)
	return subject, body
}
