package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Field is one signed key=value pair of the gateway message.
type Field struct {
	Key   string
	Value string
}

// CanonicalMessage renders the signed fields as the gateway expects
// them: comma-separated key=value pairs in declared order, no
// whitespace. The gateway recomputes the signature over this exact
// byte sequence, so formatting here is part of the wire contract.
func CanonicalMessage(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Key+"="+f.Value)
	}
	return strings.Join(parts, ",")
}

// Sign computes the base64 HMAC-SHA256 of message under secret.
func Sign(message string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches message under
// secret, in constant time.
func VerifySignature(message, signature string, secret []byte) bool {
	return hmac.Equal([]byte(Sign(message, secret)), []byte(signature))
}
