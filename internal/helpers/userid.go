package helpers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const phoneSuffixDigits = 4

// GenerateUserID derives the member user identifier from the sanitized last name
// followed by the last four digits of the phone number.
func GenerateUserID(lastName, phone string) string {
	return SanitizeName(lastName) + PhoneSuffix(phone)
}

// SanitizeName lower-cases the name, folds accented letters to their base letter and
// drops everything that is not an ASCII letter.
func SanitizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneSuffix returns the last four digits of the phone number, or all of them when
// there are fewer.
func PhoneSuffix(phone string) string {
	digits := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) > phoneSuffixDigits {
		digits = digits[len(digits)-phoneSuffixDigits:]
	}
	return string(digits)
}
