package mpesa

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// transactionTimeLayout is the gateway's YYYYMMDDHHMMSS timestamp format.
const transactionTimeLayout = "20060102150405"

// gatewayUTCOffset is how far ahead of UTC the gateway reports transaction
// times (Nairobi time). Timestamps are shifted back before being compared with
// stored UTC request-creation times.
const gatewayUTCOffset = 3 * time.Hour

// CallbackEnvelope is the payment confirmation the gateway POSTs to the
// callback URL.
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback carries the result of one checkout. CallbackMetadata is only
// present when ResultCode is zero.
type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

// Succeeded reports whether the gateway confirmed the payment.
func (c *STKCallback) Succeeded() bool {
	return c.ResultCode == 0
}

// MetadataItem is one Name/Value pair of the callback metadata. Values arrive
// as strings or JSON numbers depending on the field.
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// CallbackMetadata is the flattened, typed view of a successful callback's
// metadata items.
type CallbackMetadata struct {
	Amount             decimal.Decimal
	MpesaReceiptNumber string
	PhoneNumber        string
	TransactionDate    time.Time
}

// Metadata flattens the metadata items of a successful callback. The Balance
// item is discarded; the transaction timestamp is normalized to UTC.
func (c *STKCallback) Metadata() (*CallbackMetadata, error) {
	if !c.Succeeded() {
		return nil, fmt.Errorf("callback result code %d carries no metadata", c.ResultCode)
	}

	meta := &CallbackMetadata{}
	var haveAmount, haveDate, havePhone bool
	for _, item := range c.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			amount, err := parseDecimal(item.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid Amount value: %w", err)
			}
			meta.Amount = amount
			haveAmount = true
		case "MpesaReceiptNumber":
			meta.MpesaReceiptNumber = stringValue(item.Value)
		case "TransactionDate":
			date, err := ParseTransactionTime(item.Value)
			if err != nil {
				return nil, fmt.Errorf("invalid TransactionDate value: %w", err)
			}
			meta.TransactionDate = date
			haveDate = true
		case "PhoneNumber":
			meta.PhoneNumber = stringValue(item.Value)
			havePhone = true
		case "Balance":
			// The payer's wallet balance is none of our business.
		}
	}

	if !haveAmount || !haveDate || !havePhone {
		return nil, fmt.Errorf("callback metadata incomplete: amount=%t date=%t phone=%t", haveAmount, haveDate, havePhone)
	}
	return meta, nil
}

// ParseTransactionTime parses a gateway YYYYMMDDHHMMSS timestamp and shifts it
// to UTC.
func ParseTransactionTime(value interface{}) (time.Time, error) {
	raw := stringValue(value)
	parsed, err := time.Parse(transactionTimeLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.Add(-gatewayUTCOffset), nil
}

func parseDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported value type %T", value)
	}
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}
