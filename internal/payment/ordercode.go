package payment

import (
	"crypto/rand"
	"math/big"
	"time"
)

// OrderCodeGenerator produces gateway order codes: unix millis * 1000 plus a
// random suffix in [0, 999]. Uniqueness is finally enforced by the order_code
// unique index.
type OrderCodeGenerator struct {
	now func() time.Time
}

func NewOrderCodeGenerator() *OrderCodeGenerator {
	return &OrderCodeGenerator{now: time.Now}
}

func (g *OrderCodeGenerator) Next() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return 0, err
	}
	return g.now().UnixMilli()*1000 + n.Int64(), nil
}
