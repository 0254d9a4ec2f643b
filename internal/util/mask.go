package util

import "strings"

// MaskEmail keeps the first two characters of the local part and the
// domain, enough to recognize an account in logs without leaking it.
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "****"
	}
	local := email[:at]
	if len(local) > 2 {
		local = local[:2] + "****"
	} else {
		local = "****"
	}
	return local + email[at:]
}

// MaskCode hides all but a fixed-width hint of a one-time code.
func MaskCode(code string) string {
	if len(code) <= 2 {
		return "******"
	}
	return code[:2] + "****"
}

// MaskToken truncates a bearer token for logging.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:8] + "..."
}
