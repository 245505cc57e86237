package shared

import (
	"net/mail"
	"strings"
)

// ValidateEmail checks the address syntax; display names are not accepted
func ValidateEmail(email string) error {
	if email == "" {
		return NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
