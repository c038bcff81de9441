package identity

import "unicode"

// MinPasswordLength is the shortest password the policy accepts.
const MinPasswordLength = 8

// Password policy messages.
const (
	MsgPasswordRequired  = "Password is required."
	MsgPasswordTooShort  = "Password must be at least 8 characters."
	MsgPasswordUppercase = "Password must contain at least one uppercase letter."
	MsgPasswordLowercase = "Password must contain at least one lowercase letter."
	MsgPasswordDigit     = "Password must contain at least one number."
	MsgPasswordSpecial   = "Password must contain at least one special character."
)

// PasswordViolations lists every policy rule the password breaks, in a
// stable order. An empty result means the password is acceptable.
func PasswordViolations(password string) []string {
	if password == "" {
		return []string{MsgPasswordRequired}
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}

	var out []string
	if len([]rune(password)) < MinPasswordLength {
		out = append(out, MsgPasswordTooShort)
	}
	if !upper {
		out = append(out, MsgPasswordUppercase)
	}
	if !lower {
		out = append(out, MsgPasswordLowercase)
	}
	if !digit {
		out = append(out, MsgPasswordDigit)
	}
	if !special {
		out = append(out, MsgPasswordSpecial)
	}
	return out
}
