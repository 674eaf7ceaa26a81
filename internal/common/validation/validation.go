// Package validation holds the reusable field predicates shared by the
// entity models. Every predicate is pure: it takes a candidate value and
// returns whether it is acceptable plus a human-readable reason when it
// is not.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9-]+$`)
	phonePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	ipv4Pattern      = regexp.MustCompile(`^(?:[0-9]{1,3}\.){3}[0-9]{1,3}$`)
	ipv6Pattern      = regexp.MustCompile(`^(?i:[A-F0-9]{1,4}:){7}(?i:[A-F0-9]{1,4})$`)
	urlPattern       = regexp.MustCompile(`^https?://.+`)
	iconClassPattern = regexp.MustCompile(`^[a-z-]+$`)
	namePattern      = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	orderIDPattern   = regexp.MustCompile(`^order_[A-Za-z0-9]{14}$`)
	paymentIDPattern = regexp.MustCompile(`^pay_[A-Za-z0-9]{14}$`)
)

const passwordSymbols = "@$!%*?&"

// Slug accepts lowercase letters, digits and hyphens only.
func Slug(s string) (bool, string) {
	if !slugPattern.MatchString(s) {
		return false, "slug can only contain lowercase letters, numbers, and hyphens"
	}
	return true, ""
}

// Email validates a standard email address.
func Email(s string) (bool, string) {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false, "please provide a valid email"
	}
	return true, ""
}

// IndianPhone accepts exactly 10 digits with the first digit in 6-9.
func IndianPhone(s string) (bool, string) {
	if !phonePattern.MatchString(s) {
		return false, "please provide a valid 10-digit Indian phone number"
	}
	return true, ""
}

func IPv4(s string) (bool, string) {
	if !ipv4Pattern.MatchString(s) {
		return false, "invalid IPv4 address format"
	}
	return true, ""
}

func IPv6(s string) (bool, string) {
	if !ipv6Pattern.MatchString(s) {
		return false, "invalid IPv6 address format"
	}
	return true, ""
}

// IPAddress accepts either a dotted-quad IPv4 or a full-form IPv6 address.
func IPAddress(s string) (bool, string) {
	if ok, _ := IPv4(s); ok {
		return true, ""
	}
	if ok, _ := IPv6(s); ok {
		return true, ""
	}
	return false, "invalid IP address format"
}

// URL accepts http or https URLs only.
func URL(s string) (bool, string) {
	if !urlPattern.MatchString(s) {
		return false, "must be a valid http(s) URL"
	}
	return true, ""
}

// IconRef accepts either a URL or a kebab-case icon class name.
func IconRef(s string) (bool, string) {
	if ok, _ := URL(s); ok {
		return true, ""
	}
	if iconClassPattern.MatchString(s) {
		return true, ""
	}
	return false, "icon must be a valid URL or icon class name"
}

// PersonName accepts letters and spaces, 2 to 50 characters.
func PersonName(s string) (bool, string) {
	n := utf8.RuneCountInString(s)
	if n < 2 {
		return false, "name must be at least 2 characters long"
	}
	if n > 50 {
		return false, "name cannot exceed 50 characters"
	}
	if !namePattern.MatchString(s) {
		return false, "name can only contain letters and spaces"
	}
	return true, ""
}

// StrongPassword requires at least 8 characters with one lowercase, one
// uppercase, one digit and one symbol from the fixed set.
func StrongPassword(s string) (bool, string) {
	if utf8.RuneCountInString(s) < 8 {
		return false, "password must be at least 8 characters long"
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	if !lower || !upper || !digit || !symbol {
		return false, "password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return true, ""
}

// RazorpayOrderID matches "order_" followed by 14 alphanumerics.
func RazorpayOrderID(s string) (bool, string) {
	if !orderIDPattern.MatchString(s) {
		return false, "invalid Razorpay order ID format"
	}
	return true, ""
}

// RazorpayPaymentID matches "pay_" followed by 14 alphanumerics.
func RazorpayPaymentID(s string) (bool, string) {
	if !paymentIDPattern.MatchString(s) {
		return false, "invalid Razorpay payment ID format"
	}
	return true, ""
}
