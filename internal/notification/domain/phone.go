package domain

import "strings"

const DefaultCountryCode = "92"

// NormalizePhone converts local or international input such as "0300-1234567"
// or "+92 300 1234567" to the gateway's digits-only form ("923001234567").
func NormalizePhone(raw, countryCode string) (string, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	cleaned = strings.TrimPrefix(cleaned, "+")

	if cleaned == "" {
		return "", ErrInvalidPhone
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	if strings.HasPrefix(cleaned, "0") {
		cleaned = countryCode + strings.TrimPrefix(cleaned, "0")
	}
	return cleaned, nil
}
