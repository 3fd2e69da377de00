package domain

import (
	"regexp"
	"strings"
)

const challanNoPrefix = "CH"

var cycleKeyPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// NormalizeCycleKey upper-cases and validates a billing period code such as FEB26.
func NormalizeCycleKey(cycleKey string) (string, error) {
	key := strings.ToUpper(strings.TrimSpace(cycleKey))
	if !cycleKeyPattern.MatchString(key) {
		return "", ErrInvalidCycleKey
	}
	return key, nil
}

// BuildChallanNo derives the challan number from the student and the cycle,
// so issuing twice for the same period yields the same number.
func BuildChallanNo(admissionNo, cycleKey string) (string, error) {
	admissionNo = strings.ToUpper(strings.TrimSpace(admissionNo))
	if admissionNo == "" || strings.ContainsAny(admissionNo, " \t\n") {
		return "", ErrInvalidAdmissionNo
	}
	key, err := NormalizeCycleKey(cycleKey)
	if err != nil {
		return "", err
	}
	return challanNoPrefix + "-" + admissionNo + "-" + key, nil
}

// NormalizeChallanNo canonicalizes operator input for lookups.
func NormalizeChallanNo(challanNo string) string {
	return strings.ToUpper(strings.TrimSpace(challanNo))
}

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(value))); m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOnline:
		return m, nil
	case "":
		return PaymentMethodCash, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
