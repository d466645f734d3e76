package constants

import "time"

const (
	// WildcardLastName in the last name field lists every member. Admins only.
	WildcardLastName = "*"

	DeviceIDHeader = "X-Device-ID"

	OAuthStatePrefix        = "oauth_state:"
	RefreshTokenPrefix      = "refresh:"
	EmailVerificationPrefix = "email_verify:"

	OAuthStateTTL        = 10 * time.Minute
	EmailVerificationTTL = 24 * time.Hour

	UploadsPath = "/uploads/"
)
