package validate

import (
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestLuhn(t *testing.T) {
	for _, pan := range []string{"4111111111111111", "378282246310005", "5555555555554444", "6011111111111117", "3530111333300000"} {
		assert.True(t, Luhn(pan), pan)
	}
	assert.False(t, Luhn("4111111111111112"))
	assert.False(t, Luhn("41111111x1111111"))
	assert.False(t, Luhn(""))
}

func TestCardNumber_LengthBeforeChecksum(t *testing.T) {
	digits, ok := CardNumber("4111 1111 1111 1111")
	assert.True(t, ok)
	assert.Equal(t, "4111111111111111", digits)

	_, ok = CardNumber("0") // passes Luhn but far too short
	assert.False(t, ok)
	_, ok = CardNumber("41111111111111111111111")
	assert.False(t, ok)
}

func TestCardBrand(t *testing.T) {
	tests := []struct {
		pan, brand string
	}{
		{"4111111111111111", "VISA"},
		{"5555555555554444", "MASTERCARD"},
		{"2221000000000009", "MASTERCARD"},
		{"378282246310005", "AMEX"},
		{"6011111111111117", "DISCOVER"},
		{"3530111333300000", "JCB"},
		{"30569309025904", "DINERS"},
		{"6200000000000005", "UNIONPAY"},
		{"9111111111111111", ""},
	}
	for _, tt := range tests {
		t.Run(tt.pan, func(t *testing.T) {
			assert.Equal(t, tt.brand, CardBrand(tt.pan))
		})
	}
}

func TestIBAN(t *testing.T) {
	valid := []string{
		"GB82WEST12345698765432",
		"GB82 WEST 1234 5698 7654 32",
		"DE89370400440532013000",
		"FR1420041010050500013M02606",
		"gb82west12345698765432",
	}
	for _, s := range valid {
		assert.True(t, IBAN(s), s)
	}
	invalid := []string{
		"GB82WEST12345698765433", // checksum
		"GB82WEST1234569876543",  // country length
		"1B82WEST12345698765432", // shape
		"GB82WEST123456987654$2",
		"GB82",
	}
	for _, s := range invalid {
		assert.False(t, IBAN(s), s)
	}
}

func TestMod97(t *testing.T) {
	assert.Equal(t, 1, Mod97("3214282912345698765432161182"))
	assert.Equal(t, 0, Mod97("97"))
	long := strings.Repeat("1234567890", 7)
	want, _ := new(big.Int).SetString(long, 10)
	assert.Equal(t, int(new(big.Int).Mod(want, big.NewInt(97)).Int64()), Mod97(long))
	assert.Equal(t, -1, Mod97("12a"))
}

func TestNHSNumber(t *testing.T) {
	assert.True(t, NHSNumber("943 476 5919"))
	assert.True(t, NHSNumber("9434765919"))
	assert.False(t, NHSNumber("9434765918"))
	assert.False(t, NHSNumber("943476591"))
	// first nine digits yield a check value of 10, never valid
	assert.False(t, NHSNumber("1000000010"))
}

func TestSSN(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"078-05-1120", true},
		{"078051120", true},
		{"000-00-0000", false},
		{"000-12-3456", false},
		{"666-12-3456", false},
		{"912-12-3456", false},
		{"123-00-4567", false},
		{"123-45-0000", false},
		{"123-45-678", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SSN(tt.in))
		})
	}
}

func luhnComplete(body string) string {
	for d := 0; d <= 9; d++ {
		candidate := fmt.Sprintf("%s%d", body, d)
		if Luhn(candidate) {
			return candidate
		}
	}
	panic("no luhn digit for " + body)
}

func TestLuhn_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		body := rapid.StringMatching(`[0-9]{12,18}`).Draw(t, "body")
		pan := luhnComplete(body)
		if !Luhn(pan) {
			t.Fatalf("completed pan %s should pass", pan)
		}
		last := int(pan[len(pan)-1] - '0')
		bumped := pan[:len(pan)-1] + fmt.Sprint((last+rapid.IntRange(1, 9).Draw(t, "bump"))%10)
		if Luhn(bumped) {
			t.Fatalf("single digit change %s should fail", bumped)
		}
	})
}

func buildGBIBAN(bank, account string) string {
	numeric, _ := ibanNumeric(bank + account + "GB00")
	check := 98 - Mod97(numeric)
	return fmt.Sprintf("GB%02d%s%s", check, bank, account)
}

func TestIBAN_SingleEditProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bank := rapid.StringMatching(`[A-Z]{4}`).Draw(t, "bank")
		account := rapid.StringMatching(`[0-9]{14}`).Draw(t, "account")
		iban := buildGBIBAN(bank, account)
		if !IBAN(iban) {
			t.Fatalf("constructed %s should be valid", iban)
		}
		numeric, _ := ibanNumeric(iban[4:] + iban[:4])
		if Mod97(numeric) != 1 {
			t.Fatalf("mod97 of %s != 1", iban)
		}

		pos := rapid.IntRange(2, len(iban)-1).Draw(t, "pos")
		orig := iban[pos]
		var repl byte
		if isDigit(orig) {
			repl = '0' + byte((int(orig-'0')+rapid.IntRange(1, 9).Draw(t, "shift"))%10)
		} else {
			repl = 'A' + byte((int(orig-'A')+rapid.IntRange(1, 25).Draw(t, "shift"))%26)
		}
		mutated := iban[:pos] + string(repl) + iban[pos+1:]
		if IBAN(mutated) {
			t.Fatalf("single edit %s -> %s accepted", iban, mutated)
		}
	})
}
