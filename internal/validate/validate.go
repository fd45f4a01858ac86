package validate

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// Alphabets used when classifying token-shaped strings.
const (
	HexAlphabet    = "0123456789abcdefABCDEF"
	Base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	Base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/=-_"
)

// LengthBetween returns true if len(s) is within [min,max].
func LengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// IsAlphabet returns true if all characters in s are in allowed set.
func IsAlphabet(s, allowed string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(allowed, rune(s[i])) {
			return false
		}
	}
	return true
}

// IsHex returns true if s is valid, even-length hex.
func IsHex(s string) bool {
	if s == "" || len(s)%2 == 1 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// IsBase64 reports whether s decodes as standard or URL-safe base64, padded or not.
func IsBase64(s string) bool {
	if s == "" {
		return false
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if _, err := enc.DecodeString(s); err == nil {
			return true
		}
	}
	return false
}

// Charset names the narrowest token encoding s fits: "hex" (even length,
// decodable), "base58", "base64" (decodable) or "" when none applies.
func Charset(s string) string {
	switch {
	case IsAlphabet(s, HexAlphabet) && IsHex(s):
		return "hex"
	case IsAlphabet(s, Base58Alphabet):
		return "base58"
	case IsAlphabet(s, Base64Alphabet) && IsBase64(s):
		return "base64"
	default:
		return ""
	}
}

// DigitsOnly strips every non-digit byte from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
