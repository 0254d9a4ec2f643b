package util

import "regexp"

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	otpRegex   = regexp.MustCompile(`^[0-9]{6}$`)
)

// IsValidEmail applies the same basic format check the sign-in surface
// uses: the identifier must contain "@". Full validation is server-side.
func IsValidEmail(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c == '@' {
			return true
		}
	}
	return false
}

// IsValidPhone accepts exactly 10 digits.
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// IsValidOTP accepts exactly 6 digits.
func IsValidOTP(s string) bool {
	return otpRegex.MatchString(s)
}

func IsValidEnum(value string, validValues []string) bool {
	if value == "" {
		return true
	}
	for _, v := range validValues {
		if value == v {
			return true
		}
	}
	return false
}
