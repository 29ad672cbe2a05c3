package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want KeyType
	}{
		{"email", "teste@pix.com", KeyTypeEmail},
		{"email with subdomain", "a@b.co.uk", KeyTypeEmail},
		{"phone e164", "+5531999998888", KeyTypePhone},
		{"phone short", "+551199998888", KeyTypePhone},
		{"cpf", "12345678909", KeyTypeCPF},
		{"cnpj", "11222333000181", KeyTypeCNPJ},
		{"random uuid", "123e4567-e89b-12d3-a456-426614174000", KeyTypeRandom},
		{"empty", "", KeyTypeUnknown},
		{"ten digits", "1234567890", KeyTypeUnknown},
		{"twelve digits", "123456789012", KeyTypeUnknown},
		{"phone without plus is a document length", "31999998888", KeyTypeCPF},
		{"not a key", "hello world", KeyTypeUnknown},
		{"formatted cpf", "123.456.789-09", KeyTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyKey(tt.key))
		})
	}
}

func TestClassifyKey_NoOverlap(t *testing.T) {
	// Each shape lands in exactly one class; a bare 11-digit string is a
	// CPF, never a phone, because phones require the E.164 plus sign.
	assert.Equal(t, KeyTypeCPF, ClassifyKey("31999998888"))
	assert.Equal(t, KeyTypePhone, ClassifyKey("+5531999998888"))
}

func TestNormalizeDocument(t *testing.T) {
	assert.Equal(t, "12345678909", NormalizeDocument("123.456.789-09"))
	assert.Equal(t, "11222333000181", NormalizeDocument("11.222.333/0001-81"))
	assert.Equal(t, "12345678909", NormalizeDocument("  12345678909  "))
	assert.Equal(t, "", NormalizeDocument("abc"))
}

func TestPixNotification_Amount(t *testing.T) {
	n := PixNotification{Valor: "0.01", EndToEndID: "E1234"}
	amt, err := n.Amount()
	assert.NoError(t, err)
	assert.Equal(t, "0.01", amt.StringFixed(2))

	bad := PixNotification{Valor: "not-a-number"}
	_, err = bad.Amount()
	assert.Error(t, err)
}
