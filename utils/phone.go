// utils/phone.go
package utils

import (
	"strings"

	"spacrm-backend/errs"
)

const (
	localPhoneLength = 10
	countryPrefix    = "84"
)

// NormalizePhone turns any accepted spelling of a national number into the
// canonical 10-digit form that starts with 0.
//
//	+84 912 345 678  -> 0912345678
//	84912345678      -> 0912345678
//	(091) 234-5678   -> 0912345678
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case strings.HasPrefix(digits, "00"+countryPrefix):
		digits = "0" + digits[len(countryPrefix)+2:]
	case strings.HasPrefix(digits, countryPrefix) && len(digits) == localPhoneLength-1+len(countryPrefix):
		digits = "0" + digits[len(countryPrefix):]
	}

	if len(digits) != localPhoneLength || digits[0] != '0' {
		return "", errs.Validation("Invalid phone number format")
	}
	return digits, nil
}

// ToE164 converts a normalized local number into international form for
// SMS gateways. countryCode is given without the plus sign.
func ToE164(local, countryCode string) string {
	if strings.HasPrefix(local, "+") {
		return local
	}
	if countryCode == "" {
		countryCode = countryPrefix
	}
	return "+" + countryCode + strings.TrimPrefix(local, "0")
}
