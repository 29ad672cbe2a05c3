package models

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KeyType identifies the shape of a Pix receiving key.
type KeyType string

const (
	KeyTypeEmail   KeyType = "email"
	KeyTypePhone   KeyType = "phone"
	KeyTypeCPF     KeyType = "cpf"
	KeyTypeCNPJ    KeyType = "cnpj"
	KeyTypeRandom  KeyType = "random"
	KeyTypeUnknown KeyType = ""
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{9,13}$`)
	nonDigits    = regexp.MustCompile(`\D+`)
)

// ClassifyKey determines the key type from its shape alone. The four forms
// cannot overlap: random keys are 36-char UUIDs, phones always carry the
// leading + of E.164, emails contain @, and bare digit strings of length
// 11 or 14 are tax documents.
func ClassifyKey(key string) KeyType {
	k := strings.TrimSpace(key)
	if k == "" {
		return KeyTypeUnknown
	}
	if len(k) == 36 {
		if _, err := uuid.Parse(k); err == nil {
			return KeyTypeRandom
		}
	}
	if emailPattern.MatchString(k) {
		return KeyTypeEmail
	}
	if phonePattern.MatchString(k) {
		return KeyTypePhone
	}
	if digits := NormalizeDocument(k); digits == k {
		switch len(digits) {
		case 11:
			return KeyTypeCPF
		case 14:
			return KeyTypeCNPJ
		}
	}
	return KeyTypeUnknown
}

// NormalizeDocument strips everything but digits from a CPF/CNPJ.
func NormalizeDocument(doc string) string {
	return nonDigits.ReplaceAllString(strings.TrimSpace(doc), "")
}

// ChargeMode says how a charge payload was produced.
type ChargeMode string

const (
	ChargeModeDynamic ChargeMode = "dynamic"
	ChargeModeStatic  ChargeMode = "static"
)

// ChargeRequest is a request to produce a payable BR Code.
type ChargeRequest struct {
	Key       string          `json:"key"`
	Amount    decimal.Decimal `json:"amount"`
	Name      string          `json:"name,omitempty"`
	City      string          `json:"city,omitempty"`
	Reference string          `json:"txid,omitempty"`
}

// Charge is the unified result of charge creation, regardless of whether
// the payload was built locally or fetched from the PSP.
type Charge struct {
	Mode        ChargeMode `json:"mode"`
	Payload     string     `json:"payload"`
	TxID        string     `json:"txid,omitempty"`
	QRCodeImage string     `json:"qrcode_image,omitempty"`
}

// Refund is the record of an issued refund.
type Refund struct {
	EndToEndID string          `json:"e2e_id"`
	RefundID   string          `json:"refund_id"`
	RtrID      string          `json:"rtr_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
}

// KeyValidationRequest asks for proof that a key belongs to a document.
type KeyValidationRequest struct {
	Key      string          `json:"key"`
	Document string          `json:"document"`
	Amount   decimal.Decimal `json:"amount"`
}

// KeyValidation is the synchronous half of a validation attempt. The
// transfer settles asynchronously; confirmation arrives via webhook.
type KeyValidation struct {
	EnvelopeID string `json:"envelope_id"`
	EndToEndID string `json:"e2e_id,omitempty"`
	Status     string `json:"status"`
}

// PixNotification is one received-payment entry in a webhook batch.
// Field names follow the PSP wire format.
type PixNotification struct {
	Valor      string `json:"valor"`
	EndToEndID string `json:"endToEndId"`
	TxID       string `json:"txid,omitempty"`
	Horario    string `json:"horario,omitempty"`
}

// Amount parses the declared value. Malformed values yield an error so the
// ingestor can skip the entry instead of mis-refunding.
func (n *PixNotification) Amount() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(n.Valor))
}

// WebhookEvent is a batch of received-payment notifications from the PSP.
type WebhookEvent struct {
	Pix []PixNotification `json:"pix"`
}
