package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

var ErrMissingChecksumKey = errors.New("payos checksum key is not configured")

// PaymentRequestFields are the signed fields of a create-payment-link request.
type PaymentRequestFields struct {
	Amount      int64
	CancelURL   string
	Description string
	OrderCode   int64
	ReturnURL   string
}

// WebhookData are the signed fields of a gateway callback.
type WebhookData struct {
	Amount      int64
	Description string
	OrderCode   int64
}

// Signer computes and verifies HMAC-SHA256 signatures with the merchant checksum key.
type Signer struct {
	key []byte
}

func NewSigner(checksumKey string) (*Signer, error) {
	if checksumKey == "" {
		return nil, ErrMissingChecksumKey
	}
	return &Signer{key: []byte(checksumKey)}, nil
}

// SignPaymentRequest signs
// amount=<int>&cancelUrl=<url>&description=<string>&orderCode=<int>&returnUrl=<url>
func (s *Signer) SignPaymentRequest(f PaymentRequestFields) string {
	return s.sign(paymentRequestCanonical(f))
}

// SignWebhookData signs amount=<int>&description=<string>&orderCode=<long>
func (s *Signer) SignWebhookData(d WebhookData) string {
	return s.sign(webhookCanonical(d))
}

// VerifyWebhook reports whether supplied is the signature of d. Hex case is ignored.
func (s *Signer) VerifyWebhook(d WebhookData, supplied string) bool {
	expected := s.SignWebhookData(d)
	got := strings.ToLower(strings.TrimSpace(supplied))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func (s *Signer) sign(canonical string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// Field order is fixed by the gateway protocol and must not be sorted or reordered.
func paymentRequestCanonical(f PaymentRequestFields) string {
	var b strings.Builder
	b.WriteString("amount=")
	b.WriteString(strconv.FormatInt(f.Amount, 10))
	b.WriteString("&cancelUrl=")
	b.WriteString(f.CancelURL)
	b.WriteString("&description=")
	b.WriteString(f.Description)
	b.WriteString("&orderCode=")
	b.WriteString(strconv.FormatInt(f.OrderCode, 10))
	b.WriteString("&returnUrl=")
	b.WriteString(f.ReturnURL)
	return b.String()
}

func webhookCanonical(d WebhookData) string {
	var b strings.Builder
	b.WriteString("amount=")
	b.WriteString(strconv.FormatInt(d.Amount, 10))
	b.WriteString("&description=")
	b.WriteString(d.Description)
	b.WriteString("&orderCode=")
	b.WriteString(strconv.FormatInt(d.OrderCode, 10))
	return b.String()
}
