package vnpay

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	g := NewGateway("TESTCODE", "testsecret", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html", "http://localhost:8090/payment/vnpay/callback")
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	raw := g.PaymentURL("ORD-20240115-123456", 300000, "Thanh toan don hang ORD-20240115-123456", "203.0.113.7", now)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()

	t.Run("Carries Required Parameters", func(t *testing.T) {
		assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
		assert.Equal(t, "pay", q.Get("vnp_Command"))
		assert.Equal(t, "TESTCODE", q.Get("vnp_TmnCode"))
		assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
		assert.Equal(t, "vn", q.Get("vnp_Locale"))
		assert.Equal(t, "other", q.Get("vnp_OrderType"))
		assert.Equal(t, "20240115103000", q.Get("vnp_CreateDate"))
		assert.Equal(t, "203.0.113.7", q.Get("vnp_IpAddr"))
		assert.Equal(t, "ORD-20240115-123456", q.Get(ParamTxnRef))
		assert.Equal(t, g.ReturnURL, q.Get("vnp_ReturnUrl"))
	})

	t.Run("Amount Scaled By 100", func(t *testing.T) {
		assert.Equal(t, "30000000", q.Get(ParamAmount))
	})

	t.Run("URL Verifies Under Same Secret", func(t *testing.T) {
		params := map[string]string{}
		for k, vs := range q {
			params[k] = vs[0]
		}
		assert.True(t, Verify(params, q.Get(SecureHashParam), g.HashSecret))
		assert.False(t, Verify(params, q.Get(SecureHashParam), "wrongsecret"))
	})
}

func TestGatewayAmount(t *testing.T) {
	t.Run("Round Trip", func(t *testing.T) {
		for _, amount := range []int64{0, 1, 299000, 300000, 1500000} {
			got, err := ParseGatewayAmount(ToGatewayAmount(amount))
			require.NoError(t, err)
			assert.Equal(t, amount, got)
		}
	})

	t.Run("Rejects Non Multiple Of 100", func(t *testing.T) {
		_, err := ParseGatewayAmount("30000050")
		assert.Error(t, err)
	})

	t.Run("Rejects Garbage", func(t *testing.T) {
		_, err := ParseGatewayAmount("abc")
		assert.Error(t, err)
	})
}
