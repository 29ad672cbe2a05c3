// Package emv encodes and decodes the BR Code payload used by Pix QR codes
// and copy-paste payment strings: a flat ASCII TLV stream with two-digit
// tags, two-digit zero-padded decimal lengths, and a trailing CRC field.
package emv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	tagPayloadFormat    = "00"
	tagInitiationMethod = "01"
	tagMerchantAccount  = "26"
	tagMerchantCategory = "52"
	tagCurrency         = "53"
	tagAmount           = "54"
	tagCountry          = "58"
	tagName             = "59"
	tagCity             = "60"
	tagAdditionalData   = "62"
	tagCRC              = "63"

	subTagGUI       = "00"
	subTagKey       = "01"
	subTagReference = "05"

	pixGUI      = "BR.GOV.BCB.PIX"
	currencyBRL = "986"

	defaultName      = "RECEBEDOR"
	defaultCity      = "SAO PAULO"
	defaultReference = "***"

	maxNameLen      = 25
	maxCityLen      = 15
	maxReferenceLen = 25

	// Lengths are two decimal digits, so no field value may exceed 99
	// bytes. The key sits inside tag 26 next to the 22-byte GUI TLV,
	// which caps it at 77.
	maxFieldLen = 99
	maxKeyLen   = maxFieldLen - 22
)

// StaticPayload describes a locally built static charge. Zero-value Amount
// means no fixed amount (the payer types one in).
type StaticPayload struct {
	Key       string
	Amount    decimal.Decimal
	Name      string
	City      string
	Reference string
}

// EncodeStatic builds a complete static BR Code string. It never fails for
// a valid key; callers reject empty keys and non-positive amounts first.
func EncodeStatic(p StaticPayload) string {
	account := tlv(subTagGUI, pixGUI) + tlv(subTagKey, truncate(p.Key, maxKeyLen))

	var b strings.Builder
	b.WriteString(tlv(tagPayloadFormat, "01"))
	b.WriteString(tlv(tagInitiationMethod, "11"))
	b.WriteString(tlv(tagMerchantAccount, account))
	b.WriteString(tlv(tagMerchantCategory, "0000"))
	b.WriteString(tlv(tagCurrency, currencyBRL))
	if p.Amount.IsPositive() {
		b.WriteString(tlv(tagAmount, p.Amount.StringFixed(2)))
	}
	b.WriteString(tlv(tagCountry, "BR"))
	b.WriteString(tlv(tagName, truncate(orDefault(p.Name, defaultName), maxNameLen)))
	b.WriteString(tlv(tagCity, truncate(orDefault(p.City, defaultCity), maxCityLen)))
	b.WriteString(tlv(tagAdditionalData, tlv(subTagReference, truncate(orDefault(p.Reference, defaultReference), maxReferenceLen))))
	b.WriteString(tagCRC + "04")

	partial := b.String()
	return partial + Checksum(partial)
}

// Decoded holds the fields recovered from a payload. HasAmount is false
// when tag 54 was absent.
type Decoded struct {
	Key       string
	Amount    decimal.Decimal
	HasAmount bool
}

// Decode extracts the receiving key and amount from a BR Code string. It is
// a best-effort parse used to pre-fill forms, not a trust boundary:
// malformed or empty input yields an empty result, never an error.
func Decode(payload string) Decoded {
	var out Decoded
	s := strings.TrimSpace(payload)

	for i := 0; i+4 <= len(s); {
		id, val, next, ok := readField(s, i)
		if !ok {
			break
		}
		switch id {
		case tagMerchantAccount:
			if out.Key == "" {
				out.Key = nestedKey(val)
			}
		case tagAmount:
			if amt, err := decimal.NewFromString(val); err == nil && !out.HasAmount {
				out.Amount = amt
				out.HasAmount = true
			}
		case tagCRC:
			return out
		}
		i = next
	}
	return out
}

// nestedKey scans the merchant account info sub-TLV for the key (sub-tag 01).
func nestedKey(account string) string {
	for i := 0; i+4 <= len(account); {
		id, val, next, ok := readField(account, i)
		if !ok {
			break
		}
		if id == subTagKey {
			return val
		}
		i = next
	}
	return ""
}

func readField(s string, i int) (id, val string, next int, ok bool) {
	id = s[i : i+2]
	length, err := strconv.Atoi(s[i+2 : i+4])
	if err != nil || length <= 0 || i+4+length > len(s) {
		return "", "", 0, false
	}
	return id, s[i+4 : i+4+length], i + 4 + length, true
}

func tlv(id, value string) string {
	value = truncate(value, maxFieldLen)
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
