package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts a Go field name to the snake_case key used in
// validation error payloads, keeping initialisms intact: FullName becomes
// full_name and PendingOTPExpiry becomes pending_otp_expiry.
func ToLowerSnake(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)

	for i := range runes {
		r := runes[i]

		// An underscore goes in at two kinds of boundary: a lower or digit
		// followed by an upper (userID -> user_id), and the last letter of
		// an initialism before the next word (OTPCode -> otp_code).
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			var next rune
			if i+1 < len(runes) {
				next = runes[i+1]
			}

			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			} else if unicode.IsUpper(prev) && next != 0 && unicode.IsLower(next) {
				b.WriteRune('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
