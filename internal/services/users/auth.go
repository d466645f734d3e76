package users

import (
	"net/http"
	"time"

	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

func (u *User) SetJWTCookie(w http.ResponseWriter, pair *token.TokenPair) {
	isDevelopmentMode := u.Config.IsDev
	sameSite := http.SameSiteLaxMode

	accessExpires := pair.AccessExpiresAt
	if isDevelopmentMode {
		sameSite = http.SameSiteNoneMode
		accessExpires = time.Now().Add(time.Hour * 24 * 3) // 3 days
	}

	accessCookie := http.Cookie{
		Name:     token.AccessTokenName,
		Value:    pair.AccessToken,
		HttpOnly: true,
		Expires:  accessExpires,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
	}

	refreshCookie := http.Cookie{
		Name:     token.RefreshTokenName,
		Value:    pair.RefreshToken,
		HttpOnly: true,
		Expires:  pair.RefreshExpiresAt,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
	}

	http.SetCookie(w, &accessCookie)
	http.SetCookie(w, &refreshCookie)
}

func (u *User) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{token.AccessTokenName, token.RefreshTokenName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   true,
			Path:     "/",
		})
	}
}
