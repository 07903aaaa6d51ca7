package payment

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"pasalmart-be/internal/logger"
	"pasalmart-be/internal/money"
)

// signedFieldNames is the gateway's declared signed-field list for
// redirect payloads. Order matters; it is part of the protocol.
const signedFieldNames = "total_amount,transaction_uuid,product_code"

// Gateway models the slice of the eSewa exchange this system actually
// exercises: building the signed redirect form and decoding the
// asynchronous callback.
type Gateway interface {
	BuildRedirect(correlationToken string, total money.Amount) *RedirectPayload
	DecodeCallback(data string) (*Callback, error)
	VerifyCallback(cb *Callback) error
}

type esewaGateway struct {
	secret      []byte
	productCode string
	successURL  string
	failureURL  string
}

func NewEsewaGateway(secret, productCode, successURL, failureURL string) Gateway {
	if secret == "" {
		logger.L().Warn("eSewa secret key is empty")
	}

	return &esewaGateway{
		secret:      []byte(secret),
		productCode: productCode,
		successURL:  successURL,
		failureURL:  failureURL,
	}
}

// BuildRedirect produces the browser-forwarded form for one order. Tax
// and service charges are folded into the order total upstream, so the
// auxiliary amount fields stay zero.
func (g *esewaGateway) BuildRedirect(correlationToken string, total money.Amount) *RedirectPayload {
	totalStr := total.String()

	message := CanonicalMessage([]Field{
		{Key: "total_amount", Value: totalStr},
		{Key: "transaction_uuid", Value: correlationToken},
		{Key: "product_code", Value: g.productCode},
	})

	return &RedirectPayload{
		Amount:                totalStr,
		TaxAmount:             "0.00",
		TotalAmount:           totalStr,
		TransactionUUID:       correlationToken,
		ProductCode:           g.productCode,
		ProductServiceCharge:  "0.00",
		ProductDeliveryCharge: "0.00",
		SuccessURL:            g.successURL,
		FailureURL:            g.failureURL,
		SignedFieldNames:      signedFieldNames,
		Signature:             Sign(message, g.secret),
	}
}

// DecodeCallback unpacks the base64 JSON blob the gateway appends to
// the success redirect. Both standard and URL-safe alphabets show up in
// practice.
func (g *esewaGateway) DecodeCallback(data string) (*Callback, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: empty data", ErrMalformedCallback)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	var cb Callback
	if err := json.Unmarshal(raw, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCallback, err)
	}

	if cb.TransactionUUID == "" || cb.Status == "" {
		return nil, fmt.Errorf("%w: missing transaction_uuid or status", ErrMalformedCallback)
	}

	return &cb, nil
}

// VerifyCallback recomputes the HMAC over the callback's own signed
// field list. Callbacks without a signature are accepted; the amount
// check in settlement is the integrity guard that always runs.
func (g *esewaGateway) VerifyCallback(cb *Callback) error {
	if cb.Signature == "" {
		return nil
	}

	names := strings.Split(cb.SignedFieldNames, ",")
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Key: name, Value: g.callbackField(cb, name)})
	}

	message := CanonicalMessage(fields)
	if !VerifySignature(message, cb.Signature, g.secret) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *esewaGateway) callbackField(cb *Callback, name string) string {
	switch name {
	case "transaction_code":
		return cb.TransactionCode
	case "status":
		return cb.Status
	case "total_amount":
		return cb.TotalAmount
	case "transaction_uuid":
		return cb.TransactionUUID
	case "product_code":
		return cb.ProductCode
	case "signed_field_names":
		return cb.SignedFieldNames
	default:
		return ""
	}
}
