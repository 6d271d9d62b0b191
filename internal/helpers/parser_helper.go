package helpers

import (
	"net/mail"
	"strconv"
	"strings"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// NormalizeEmail lowercases and trims an address for comparison and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
