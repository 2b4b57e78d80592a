package payment

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Sign computes the gateway signature: an MD5 hex digest over the fixed
// ordered concatenation merchantID:amount:secret:orderID. The amount must
// be passed exactly as the gateway formatted it.
func Sign(merchantID, amount, secret, orderID string) string {
	sum := md5.Sum([]byte(strings.Join([]string{merchantID, amount, secret, orderID}, ":")))
	return hex.EncodeToString(sum[:])
}

// Verify compares the payload signature against the expected one in
// constant time. Gateways are inconsistent about digest casing.
func Verify(merchantID, amount, secret, orderID, sign string) bool {
	expected := Sign(merchantID, amount, secret, orderID)
	got := strings.ToLower(strings.TrimSpace(sign))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
