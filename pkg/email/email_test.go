package email

import (
	"context"
	"errors"
	"testing"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return d.err
}

func newTestEmail(t *testing.T, isDev bool) (*Email, *recordingDialer) {
	t.Helper()
	cfg := &config.Config{
		IsDev: isDev,
		Email: config.EmailConfig{Host: "smtp.test", Port: 25, From: "office@church.test"},
	}
	e, err := New(cfg, logger.Nop())
	require.NoError(t, err)

	d := &recordingDialer{}
	return e.WithDialer(d), d
}

func TestRenderTemplates(t *testing.T) {
	cache, err := NewEmailTemplateCache(embeddedTemplates, 2)
	require.NoError(t, err)

	body, err := cache.Render(EmailTemplateTypeAccessRequest, AccessRequestData{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.org",
		UserID:    "lovelace1234",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "lovelace1234")

	body, err = cache.Render(EmailTemplateTypeGeneric, GenericData{Subject: "Hi", Body: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")

	_, err = cache.Render("missing", nil)
	assert.Error(t, err)
}

func TestSendUsesDialer(t *testing.T) {
	e, d := newTestEmail(t, false)

	err := e.SendTemplate(context.Background(), "ada@example.org", "Confirm", EmailTemplateTypeEmailVerification,
		EmailVerificationData{FirstName: "Ada", VerifyURL: "https://example.org/verify?token=abc"})
	require.NoError(t, err)
	require.Len(t, d.messages, 1)
	assert.Equal(t, []string{"ada@example.org"}, d.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"office@church.test"}, d.messages[0].GetHeader("From"))
}

func TestSendInDevelopmentSkipsDialer(t *testing.T) {
	e, d := newTestEmail(t, true)

	require.NoError(t, e.Send(context.Background(), &SendEmailInput{To: "a@b.co", Subject: "s", Body: "b"}))
	assert.Empty(t, d.messages)
}

func TestSendWrapsDialerError(t *testing.T) {
	e, d := newTestEmail(t, false)
	d.err = errors.New("connection refused")

	err := e.Send(context.Background(), &SendEmailInput{To: "a@b.co", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsValidTemplate(t *testing.T) {
	assert.True(t, IsValidTemplate("generic"))
	assert.False(t, IsValidTemplate("welcome"))
}
