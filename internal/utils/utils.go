package utils

import (
	"fmt"
	"strings"
	"unicode"
)

// CamelToSnake converts a CamelCase field name to snake_case.
// "MpesaReceiptNumber" becomes "mpesa_receipt_number".
func CamelToSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (!unicode.IsUpper(runes[i-1]) || (i+1 < len(runes) && !unicode.IsUpper(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateMpesaPhoneNumber checks that a phone number is in the international
// format the payment gateway expects: 2547XXXXXXXX, digits only.
func ValidateMpesaPhoneNumber(phone string) error {
	if len(phone) != 12 {
		return fmt.Errorf("phone number must be 12 digits in the format 2547XXXXXXXX")
	}
	if !strings.HasPrefix(phone, "254") {
		return fmt.Errorf("phone number must start with the country code 254")
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return fmt.Errorf("phone number must contain digits only")
		}
	}
	return nil
}
