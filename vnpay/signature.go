package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

const (
	// SecureHashParam carries the gateway signature in both directions.
	SecureHashParam     = "vnp_SecureHash"
	secureHashTypeParam = "vnp_SecureHashType"
)

// encode percent-encodes s and renders spaces as '+', matching the
// encoding the gateway signs over.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%20", "+")
}

// Canonicalize produces the exact byte string the HMAC is computed
// over: every parameter except the signature fields, keys and values
// percent-encoded with spaces as '+', sorted by encoded key byte-wise
// ascending, joined as k=v pairs with '&'. Signer and verifier must
// agree on these bytes exactly or authentication silently breaks.
func Canonicalize(params map[string]string) string {
	type pair struct{ k, v string }
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		if k == SecureHashParam || k == secureHashTypeParam {
			continue
		}
		pairs = append(pairs, pair{k: encode(k), v: encode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	var sb strings.Builder
	for i, p := range pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.k)
		sb.WriteByte('=')
		sb.WriteString(p.v)
	}
	return sb.String()
}

// Sign computes the HMAC-SHA512 of the canonicalized params under
// secret, rendered as lowercase hex.
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(Canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over params (signature fields
// excluded) and compares it against providedSig in constant time.
// Malformed or incomplete input yields a mismatch, never an error.
func Verify(params map[string]string, providedSig, secret string) bool {
	if providedSig == "" {
		return false
	}
	expected := Sign(params, secret)
	if len(expected) != len(providedSig) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(providedSig)) == 1
}
