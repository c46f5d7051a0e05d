package utils

import (
	"fmt"
	"regexp"
	"time"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Indian mobile numbers: 10 digits, leading 6-9.
	phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)
	// Indian PIN codes: 6 digits, first digit cannot be 0.
	pinCodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

func ValidateEmail(email string) bool {
	return emailRe.MatchString(email)
}

func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

func ValidatePINCode(pinCode string) bool {
	return pinCodeRe.MatchString(pinCode)
}

// OrderNumber builds a display order number from the last 8 digits of the
// current epoch-ms timestamp.
func OrderNumber(now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return "SH" + ms
}
