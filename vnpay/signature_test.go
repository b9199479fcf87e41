package vnpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	t.Run("Sorts And Encodes", func(t *testing.T) {
		params := map[string]string{
			"vnp_TxnRef":    "ORD-20240115-123456",
			"vnp_Amount":    "30000000",
			"vnp_OrderInfo": "Thanh toan don hang",
			"vnp_Command":   "pay",
		}
		assert.Equal(t,
			"vnp_Amount=30000000&vnp_Command=pay&vnp_OrderInfo=Thanh+toan+don+hang&vnp_TxnRef=ORD-20240115-123456",
			Canonicalize(params))
	})

	t.Run("Excludes Signature Fields", func(t *testing.T) {
		params := map[string]string{
			"a":                  "1",
			"vnp_SecureHash":     "deadbeef",
			"vnp_SecureHashType": "HmacSHA512",
		}
		assert.Equal(t, "a=1", Canonicalize(params))
	})

	t.Run("Spaces Become Plus", func(t *testing.T) {
		assert.Equal(t, "a=1&b=2&c=hello+world", Canonicalize(map[string]string{
			"c": "hello world",
			"a": "1",
			"b": "2",
		}))
	})

	t.Run("Empty Params", func(t *testing.T) {
		assert.Equal(t, "", Canonicalize(map[string]string{}))
	})
}

func TestSign(t *testing.T) {
	t.Run("Known Vectors", func(t *testing.T) {
		params := map[string]string{
			"vnp_Amount":    "30000000",
			"vnp_Command":   "pay",
			"vnp_OrderInfo": "Thanh toan don hang",
			"vnp_TxnRef":    "ORD-20240115-123456",
		}
		assert.Equal(t,
			"465ac078d0a83a193f66dff1cc8cc8059ff286b1280984e383cee0c3744b1b64ba974663d7f8b8993b0dd63b791f08b91afc81a036b606685cce8aaff2d937c7",
			Sign(params, "testsecret"))

		assert.Equal(t,
			"df3f51f7de980b1bec2daefc5b043fd3f18583665f2d7c42a9968436e8ca6befac9c6c48faa0aa005ea777fcf588f4a624edd073ce3076aa6e5bf0e90e7aae15",
			Sign(map[string]string{"a": "1", "b": "2", "c": "hello world"}, "secret"))
	})

	t.Run("Signature Field Never Feeds Itself", func(t *testing.T) {
		params := map[string]string{"a": "1", "b": "2"}
		sig := Sign(params, "secret")
		params[SecureHashParam] = sig
		assert.Equal(t, sig, Sign(params, "secret"))
	})
}

func TestVerify(t *testing.T) {
	secret := "secret"
	params := map[string]string{
		"vnp_TxnRef":       "ORD-20240115-654321",
		"vnp_ResponseCode": "00",
		"vnp_Amount":       "10000000",
	}
	sig := Sign(params, secret)

	t.Run("Round Trip", func(t *testing.T) {
		assert.True(t, Verify(params, sig, secret))
	})

	t.Run("Any Single Character Change Fails", func(t *testing.T) {
		for i := 0; i < len(sig); i++ {
			tampered := []byte(sig)
			if tampered[i] == 'a' {
				tampered[i] = 'b'
			} else {
				tampered[i] = 'a'
			}
			assert.False(t, Verify(params, string(tampered), secret), "position %d", i)
		}
	})

	t.Run("Tampered Parameter Fails", func(t *testing.T) {
		tampered := map[string]string{}
		for k, v := range params {
			tampered[k] = v
		}
		tampered["vnp_Amount"] = "1"
		assert.False(t, Verify(tampered, sig, secret))
	})

	t.Run("Wrong Secret Fails", func(t *testing.T) {
		assert.False(t, Verify(params, sig, "othersecret"))
	})

	t.Run("Malformed Input Fails Without Panic", func(t *testing.T) {
		assert.False(t, Verify(params, "", secret))
		assert.False(t, Verify(params, "not-hex", secret))
		assert.False(t, Verify(map[string]string{}, sig, secret))
	})
}
