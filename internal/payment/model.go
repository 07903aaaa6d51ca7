package payment

// StatusComplete is the gateway's success token. Anything else on a
// callback leaves the order pending; gateways retry.
const StatusComplete = "COMPLETE"

// RedirectPayload is the form the buyer's browser posts to the gateway.
// Amount fields are fixed two-decimal strings; SignedFieldNames lists,
// in signing order, which of them the signature covers.
type RedirectPayload struct {
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount"`
	TotalAmount           string `json:"total_amount"`
	TransactionUUID       string `json:"transaction_uuid"`
	ProductCode           string `json:"product_code"`
	ProductServiceCharge  string `json:"product_service_charge"`
	ProductDeliveryCharge string `json:"product_delivery_charge"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
	SignedFieldNames      string `json:"signed_field_names"`
	Signature             string `json:"signature"`
}

// Callback is the decoded gateway callback blob.
type Callback struct {
	TransactionCode  string `json:"transaction_code"`
	Status           string `json:"status"`
	TotalAmount      string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}
