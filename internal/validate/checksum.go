package validate

import (
	"strconv"
	"strings"
)

// Luhn reports whether digits passes the mod-10 checksum. Non-digit input fails.
func Luhn(digits string) bool {
	if len(digits) < 2 || !isDigits(digits) {
		return false
	}
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

// CardNumber strips separators and reports whether the result is a Luhn
// valid PAN of 13 to 19 digits. Length is checked before the checksum.
func CardNumber(s string) (digits string, ok bool) {
	digits = DigitsOnly(s)
	if !LengthBetween(digits, 13, 19) {
		return digits, false
	}
	return digits, Luhn(digits)
}

type brandRule struct {
	name    string
	lo, hi  int // inclusive prefix range
	width   int // prefix width in digits
	lengths []int
}

// Ordered; narrower ranges sit ahead of the broad ones they overlap.
var brandRules = []brandRule{
	{"AMEX", 34, 34, 2, []int{15}},
	{"AMEX", 37, 37, 2, []int{15}},
	{"DINERS", 300, 305, 3, []int{14, 16, 17, 18, 19}},
	{"DINERS", 36, 36, 2, []int{14, 16, 17, 18, 19}},
	{"DINERS", 38, 39, 2, []int{14, 16, 17, 18, 19}},
	{"JCB", 3528, 3589, 4, []int{16, 17, 18, 19}},
	{"VISA", 4, 4, 1, []int{13, 16, 19}},
	{"MASTERCARD", 51, 55, 2, []int{16}},
	{"MASTERCARD", 2221, 2720, 4, []int{16}},
	{"DISCOVER", 6011, 6011, 4, []int{16, 17, 18, 19}},
	{"DISCOVER", 622126, 622925, 6, []int{16, 17, 18, 19}},
	{"DISCOVER", 644, 649, 3, []int{16, 17, 18, 19}},
	{"DISCOVER", 65, 65, 2, []int{16, 17, 18, 19}},
	{"UNIONPAY", 62, 62, 2, []int{16, 17, 18, 19}},
	{"MAESTRO", 50, 50, 2, []int{12, 13, 14, 15, 16, 17, 18, 19}},
	{"MAESTRO", 56, 58, 2, []int{12, 13, 14, 15, 16, 17, 18, 19}},
	{"MAESTRO", 6, 6, 1, []int{12, 13, 14, 15, 16, 17, 18, 19}},
}

// CardBrand infers the card scheme from leading digits and length.
// It returns "" when no scheme matches.
func CardBrand(digits string) string {
	if !isDigits(digits) {
		return ""
	}
	for _, r := range brandRules {
		if len(digits) < r.width {
			continue
		}
		p, _ := strconv.Atoi(digits[:r.width])
		if p < r.lo || p > r.hi {
			continue
		}
		for _, n := range r.lengths {
			if n == len(digits) {
				return r.name
			}
		}
	}
	return ""
}

// IBANLengths maps ISO country codes to their fixed IBAN length.
var IBANLengths = map[string]int{
	"AD": 24, "AE": 23, "AL": 28, "AT": 20, "AZ": 28, "BA": 20, "BE": 16, "BG": 22,
	"BH": 22, "BR": 29, "BY": 28, "CH": 21, "CR": 22, "CY": 28, "CZ": 24, "DE": 22,
	"DK": 18, "DO": 28, "EE": 20, "EG": 29, "ES": 24, "FI": 18, "FO": 18, "FR": 27,
	"GB": 22, "GE": 22, "GI": 23, "GL": 18, "GR": 27, "GT": 28, "HR": 21, "HU": 28,
	"IE": 22, "IL": 23, "IQ": 23, "IS": 26, "IT": 27, "JO": 30, "KW": 30, "KZ": 20,
	"LB": 28, "LC": 32, "LI": 21, "LT": 20, "LU": 20, "LV": 21, "MC": 27, "MD": 24,
	"ME": 22, "MK": 19, "MR": 27, "MT": 31, "MU": 30, "NL": 18, "NO": 15, "PK": 24,
	"PL": 28, "PS": 29, "PT": 25, "QA": 29, "RO": 24, "RS": 22, "SA": 24, "SC": 31,
	"SE": 24, "SI": 19, "SK": 24, "SM": 27, "ST": 25, "SV": 28, "TL": 23, "TN": 24,
	"TR": 26, "UA": 29, "VA": 22, "VG": 24, "XK": 20,
}

// CompactIBAN removes spaces and upper-cases s.
func CompactIBAN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// IBAN reports whether s (compact or grouped) is a well-formed IBAN whose
// ISO 7064 mod-97 remainder is 1. Countries with a known fixed length must
// match it exactly.
func IBAN(s string) bool {
	iban := CompactIBAN(s)
	if !LengthBetween(iban, 15, 34) {
		return false
	}
	if !isUpper(iban[0]) || !isUpper(iban[1]) || !isDigit(iban[2]) || !isDigit(iban[3]) {
		return false
	}
	if n, ok := IBANLengths[iban[:2]]; ok && n != len(iban) {
		return false
	}
	numeric, ok := ibanNumeric(iban[4:] + iban[:4])
	if !ok {
		return false
	}
	return Mod97(numeric) == 1
}

// ibanNumeric maps letters to ord(letter)-55 and keeps digits.
func ibanNumeric(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s) * 2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			b.WriteByte(c)
		case isUpper(c):
			b.WriteString(strconv.Itoa(int(c) - 55))
		default:
			return "", false
		}
	}
	return b.String(), true
}

// Mod97 reduces a decimal string modulo 97 in chunks of at most nine digits,
// so arbitrarily long inputs never overflow. Non-digit input yields -1.
func Mod97(numeric string) int {
	if !isDigits(numeric) {
		return -1
	}
	rem := 0
	prefix := ""
	for len(numeric) > 0 {
		n := 9 - len(prefix)
		if n > len(numeric) {
			n = len(numeric)
		}
		chunk, _ := strconv.ParseUint(prefix+numeric[:n], 10, 64)
		numeric = numeric[n:]
		rem = int(chunk % 97)
		prefix = strconv.Itoa(rem)
	}
	return rem
}

// NHSNumber validates a 10 digit NHS-style number: weights 10..2 over the
// first nine digits, check = 11 - sum%11, where 11 maps to 0 and 10 is never
// valid.
func NHSNumber(s string) bool {
	digits := DigitsOnly(s)
	if len(digits) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * (10 - i)
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		return false
	}
	return check == int(digits[9]-'0')
}

// SSN applies the structural exclusions for US social security numbers:
// area not 000, 666 or 9xx; group not 00; serial not 0000.
func SSN(s string) bool {
	digits := DigitsOnly(s)
	if len(digits) != 9 {
		return false
	}
	area, group, serial := digits[:3], digits[3:5], digits[5:]
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	return group != "00" && serial != "0000"
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
