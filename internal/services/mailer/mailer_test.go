package mailer

import (
	"context"
	"net/http"
	"testing"

	"github.com/Jidetireni/sanctuary-access/internal/dto"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	to       string
	template email.EmailTemplateType
	data     any
}

type recordingSender struct {
	calls []call
}

func (r *recordingSender) SendTemplate(_ context.Context, to, _ string, name email.EmailTemplateType, data any) error {
	r.calls = append(r.calls, call{to: to, template: name, data: data})
	return nil
}

func TestSend_MemberToSelf(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.Send(context.Background(), &dto.SendEmailInput{
		To:      "Ada@Example.org",
		Subject: "Hello",
		Body:    "Just checking",
	}, &users.UserContextValue{Email: "ada@example.org"})
	require.NoError(t, err)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, email.EmailTemplateTypeGeneric, sender.calls[0].template)
	assert.Equal(t, email.GenericData{Subject: "Hello", Body: "Just checking"}, sender.calls[0].data)
}

func TestSend_MemberToOthersForbidden(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.Send(context.Background(), &dto.SendEmailInput{To: "bob@example.org", Subject: "Hi", Body: "x"},
		&users.UserContextValue{Email: "ada@example.org"})

	var apiErr *svc.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Empty(t, sender.calls)
}

func TestSend_AdminWithTemplate(t *testing.T) {
	sender := &recordingSender{}
	m := New(sender)

	err := m.Send(context.Background(), &dto.SendEmailInput{
		To:       "bob@example.org",
		Subject:  "Access request",
		Template: "access_request",
		Data:     map[string]any{"FirstName": "Bob"},
	}, &users.UserContextValue{Email: "pastor@church.org", IsAuthenticatedAsAdmin: true})
	require.NoError(t, err)

	require.Len(t, sender.calls, 1)
	assert.Equal(t, email.EmailTemplateTypeAccessRequest, sender.calls[0].template)
	data := sender.calls[0].data.(map[string]any)
	assert.Equal(t, "Bob", data["FirstName"])
	assert.Equal(t, "Access request", data["Subject"])
}

func TestSend_UnknownTemplate(t *testing.T) {
	m := New(&recordingSender{})

	err := m.Send(context.Background(), &dto.SendEmailInput{To: "a@b.co", Subject: "s", Template: "nope"},
		&users.UserContextValue{Email: "a@b.co"})

	var apiErr *svc.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestSend_RequiresSession(t *testing.T) {
	err := New(&recordingSender{}).Send(context.Background(), &dto.SendEmailInput{To: "a@b.co"}, nil)
	assert.Error(t, err)
}
