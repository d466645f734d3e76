package mailer

import (
	"context"
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/dto"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/email"
)

var _ TemplateSender = (*email.Email)(nil)

type TemplateSender interface {
	SendTemplate(ctx context.Context, to, subject string, name email.EmailTemplateType, data any) error
}

type Mailer struct {
	Sender TemplateSender
}

func New(sender TemplateSender) *Mailer {
	return &Mailer{Sender: sender}
}

// Send delivers an ad hoc email. Members may only write to their own login email.
// A plain body is wrapped in the generic template.
func (m *Mailer) Send(ctx context.Context, input *dto.SendEmailInput, requester *users.UserContextValue) error {
	if requester == nil {
		return svc.UnauthorizedError()
	}
	if !requester.IsAuthenticatedAsAdmin && !strings.EqualFold(strings.TrimSpace(input.To), requester.Email) {
		return svc.ForbiddenError("send email to other addresses")
	}

	if input.Template == "" {
		return m.Sender.SendTemplate(ctx, input.To, input.Subject, email.EmailTemplateTypeGeneric, email.GenericData{
			Subject: input.Subject,
			Body:    input.Body,
		})
	}

	if !email.IsValidTemplate(input.Template) {
		return svc.BadRequestError("unknown email template: " + input.Template)
	}

	data := map[string]any{}
	for k, v := range input.Data {
		data[k] = v
	}
	if _, ok := data["Subject"]; !ok {
		data["Subject"] = input.Subject
	}
	if _, ok := data["Body"]; !ok && input.Body != "" {
		data["Body"] = input.Body
	}

	return m.Sender.SendTemplate(ctx, input.To, input.Subject, email.EmailTemplateType(input.Template), data)
}
