package identity

import (
	"errors"
	"strings"
)

// ErrInvalidPhone occurs when a phone number is not a valid Indian mobile
// number after normalization.
var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone canonicalizes Indian mobile numbers to +91XXXXXXXXXX.
// Accepted inputs: a bare 10-digit mobile number (first digit 6-9), or the
// same with a 91 country prefix, with any punctuation and spacing.
func NormalizePhone(input string) (string, error) {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if len(number) == 12 && strings.HasPrefix(number, "91") {
		number = number[2:]
	}
	if len(number) != 10 || number[0] < '6' || number[0] > '9' {
		return "", ErrInvalidPhone
	}
	return "+91" + number, nil
}
