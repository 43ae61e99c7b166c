package chatbot

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ValidationError is a corrective instruction for the user. The current
// step never advances while one is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	nonDigits       = regexp.MustCompile(`\D`)
	nonDecimalChars = regexp.MustCompile(`[^\d.]`)
)

// parseYesNo accepts "yes" and, as a legacy greeting alias, "hi". Any
// other answer is rejected. "hi" behaves as a decline wherever yes/no
// branches.
func parseYesNo(value string) (string, *ValidationError) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "hi" || normalized == "yes" {
		return normalized, nil
	}
	return "", &ValidationError{Message: "Please answer with 'hi' or 'yes'."}
}

// parseTransactionID strips non-digits and requires a 10-digit number.
func parseTransactionID(value string) (int64, *ValidationError) {
	digits := nonDigits.ReplaceAllString(value, "")
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id < 1000000000 || id > 9999999999 {
		return 0, &ValidationError{Message: "Transaction ID must be a 10-digit number."}
	}
	return id, nil
}

// parseDebitCard strips non-digits and requires exactly 16 digits.
func parseDebitCard(value string) (int64, *ValidationError) {
	digits := nonDigits.ReplaceAllString(value, "")
	if len(digits) != 16 {
		return 0, &ValidationError{Message: "Debit card number must be a 16-digit number."}
	}
	card, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ValidationError{Message: "Debit card number must be a 16-digit number."}
	}
	return card, nil
}

// parseAmount strips everything but digits and dots and requires a
// positive number.
func parseAmount(value string) (float64, *ValidationError) {
	cleaned := nonDecimalChars.ReplaceAllString(value, "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0, &ValidationError{Message: "Amount must be a positive number."}
	}
	return amount, nil
}

// requireText trims the value and rejects when nothing remains. minLen
// applies after trimming; pass 0 to only require non-empty input.
func requireText(value, fieldName string, minLen int) (string, *ValidationError) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || utf8.RuneCountInString(trimmed) < minLen {
		return "", &ValidationError{Message: fieldName + " is required."}
	}
	return trimmed, nil
}
