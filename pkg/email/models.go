package email

type EmailTemplateType string

const (
	EmailTemplateTypeAccessRequest     EmailTemplateType = "access_request"
	EmailTemplateTypeEmailVerification EmailTemplateType = "email_verification"
	EmailTemplateTypeGeneric           EmailTemplateType = "generic"

	templateCacheSize = 10
)

type SendEmailInput struct {
	To      string
	Subject string
	Body    string
}

type AccessRequestData struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	UserID       string
	RequestedAt  string
	DashboardURL string
}

type EmailVerificationData struct {
	FirstName string
	VerifyURL string
}

type GenericData struct {
	Subject string
	Body    string
}

// IsValidTemplate reports whether name is one of the embedded templates.
func IsValidTemplate(name string) bool {
	switch EmailTemplateType(name) {
	case EmailTemplateTypeAccessRequest, EmailTemplateTypeEmailVerification, EmailTemplateTypeGeneric:
		return true
	default:
		return false
	}
}
