package payment

// WebhookPayload is the body the gateway posts to the payment callback.
type WebhookPayload struct {
	Code      string             `json:"code"`
	Desc      string             `json:"desc"`
	Success   bool               `json:"success"`
	Data      WebhookPayloadData `json:"data"`
	Signature string             `json:"signature"`
}

type WebhookPayloadData struct {
	OrderCode           int64  `json:"orderCode"`
	Amount              int64  `json:"amount"`
	Description         string `json:"description"`
	AccountNumber       string `json:"accountNumber,omitempty"`
	Reference           string `json:"reference"`
	TransactionDateTime string `json:"transactionDateTime,omitempty"`
	Currency            string `json:"currency,omitempty"`
	PaymentLinkID       string `json:"paymentLinkId,omitempty"`
	Code                string `json:"code,omitempty"`
	Desc                string `json:"desc,omitempty"`
}

// SignedFields returns the subset of the payload covered by the signature.
func (p WebhookPayload) SignedFields() WebhookData {
	return WebhookData{
		Amount:      p.Data.Amount,
		Description: p.Data.Description,
		OrderCode:   p.Data.OrderCode,
	}
}

// Settled reports whether the gateway reports the payment as completed.
// The data-level code is checked too when the gateway sends one.
func (p WebhookPayload) Settled() bool {
	if p.Code != CodeSuccess {
		return false
	}
	return p.Data.Code == "" || p.Data.Code == CodeSuccess
}
