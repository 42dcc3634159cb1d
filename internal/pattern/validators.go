package pattern

import (
	"strconv"
	"strings"
)

// ValidSSN applies the Social Security Administration's structural rules to
// a shape-matched SSN candidate. Rejections here are not errors: the match
// is simply excluded from the result set.
//
// Rejected forms:
//   - area 000, 666, or 900-999
//   - group 00
//   - serial 0000
//   - the reserved advertising range 987-65-4320 through 987-65-4329
//   - 078-05-1120, the Woolworth wallet-card number
func ValidSSN(match string) bool {
	digits := digitsOnly(match)
	if len(digits) != 9 {
		return false
	}

	area, _ := strconv.Atoi(digits[:3])
	group, _ := strconv.Atoi(digits[3:5])
	serial, _ := strconv.Atoi(digits[5:])

	if area == 0 || area == 666 || area >= 900 {
		return false
	}
	if group == 0 || serial == 0 {
		return false
	}
	if area == 987 && group == 65 && serial >= 4320 && serial <= 4329 {
		return false
	}
	if digits == "078051120" {
		return false
	}
	return true
}

// ValidCreditCard accepts 15 or 16 digit candidates that pass the Luhn
// checksum. Separators (spaces, hyphens) are stripped before checking.
func ValidCreditCard(match string) bool {
	digits := digitsOnly(match)
	if len(digits) < 15 || len(digits) > 16 {
		return false
	}
	return luhn(digits)
}

// ValidPhone requires 10 or 11 total digits. The shape pattern already
// constrains grouping; this rejects stray digit runs the regex tolerates.
func ValidPhone(match string) bool {
	n := len(digitsOnly(match))
	return n == 10 || n == 11
}

// luhn reports whether a digit string passes the Luhn checksum.
// Doubling starts from the second-to-last digit.
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// digitsOnly strips everything but ASCII digits.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
