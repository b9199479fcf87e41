package vnpay

import (
	"fmt"
	"strconv"
	"time"
)

// Callback parameter names defined by the gateway. These must match
// verbatim for signature compatibility.
const (
	ParamTxnRef        = "vnp_TxnRef"
	ParamResponseCode  = "vnp_ResponseCode"
	ParamTransactionNo = "vnp_TransactionNo"
	ParamBankCode      = "vnp_BankCode"
	ParamCardType      = "vnp_CardType"
	ParamAmount        = "vnp_Amount"
)

// ResponseCodeSuccess is the gateway's code for a settled payment.
const ResponseCodeSuccess = "00"

// Gateway builds signed redirect URLs for the VNPay hosted payment
// page.
type Gateway struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
	ReturnURL  string
}

func NewGateway(tmnCode, hashSecret, baseURL, returnURL string) *Gateway {
	return &Gateway{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		BaseURL:    baseURL,
		ReturnURL:  returnURL,
	}
}

// PaymentURL assembles the outbound redirect URL for an order. amount
// is in whole VND; the gateway expects it scaled by 100. Pure; no I/O.
func (g *Gateway) PaymentURL(orderNumber string, amount int64, orderInfo, ipAddr string, now time.Time) string {
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.TmnCode,
		ParamAmount:      ToGatewayAmount(amount),
		"vnp_CreateDate": now.Format("20060102150405"),
		"vnp_CurrCode":   "VND",
		"vnp_IpAddr":     ipAddr,
		"vnp_Locale":     "vn",
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_ReturnUrl":  g.ReturnURL,
		ParamTxnRef:      orderNumber,
	}

	signData := Canonicalize(params)
	signed := Sign(params, g.HashSecret)

	return g.BaseURL + "?" + signData + "&" + SecureHashParam + "=" + signed
}

// ToGatewayAmount scales a whole-VND amount by 100 for transmission.
func ToGatewayAmount(amount int64) string {
	return strconv.FormatInt(amount*100, 10)
}

// ParseGatewayAmount inverts ToGatewayAmount. Amounts that are not a
// multiple of 100 are rejected; VND has no fractional unit.
func ParseGatewayAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid gateway amount %q: %w", s, err)
	}
	if n%100 != 0 {
		return 0, fmt.Errorf("gateway amount %d is not a multiple of 100", n)
	}
	return n / 100, nil
}
