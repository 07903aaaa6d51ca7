package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalMessage(t *testing.T) {
	msg := CanonicalMessage([]Field{
		{Key: "total_amount", Value: "200.00"},
		{Key: "transaction_uuid", Value: "TXN-1"},
		{Key: "product_code", Value: "EPAYTEST"},
	})

	assert.Equal(t, "total_amount=200.00,transaction_uuid=TXN-1,product_code=EPAYTEST", msg)
}

func TestSign(t *testing.T) {
	msg := "total_amount=200.00,transaction_uuid=TXN-1,product_code=EPAYTEST"
	sig := Sign(msg, []byte("test-secret"))

	// Known vector; the gateway recomputes the same value.
	assert.Equal(t, "Bk0HOSvWoUYmtYDFDBqBL4H2sob362M/IOtpuAwi/qA=", sig)

	// Deterministic.
	assert.Equal(t, sig, Sign(msg, []byte("test-secret")))

	// Keyed: a different secret yields a different signature.
	assert.NotEqual(t, sig, Sign(msg, []byte("other-secret")))
}

func TestVerifySignature(t *testing.T) {
	msg := "total_amount=200.00,transaction_uuid=TXN-1,product_code=EPAYTEST"
	sig := Sign(msg, []byte("test-secret"))

	assert.True(t, VerifySignature(msg, sig, []byte("test-secret")))
	assert.False(t, VerifySignature(msg, sig, []byte("other-secret")))
	assert.False(t, VerifySignature(msg+"x", sig, []byte("test-secret")))
}
