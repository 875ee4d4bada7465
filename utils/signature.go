package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment returns the provider-style payment signature:
// hex(HMAC-SHA256(providerOrderID + "|" + paymentID, secret)).
func SignPayment(providerOrderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(providerOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyPaymentSignature(providerOrderID, paymentID, signature, secret string) bool {
	expected := SignPayment(providerOrderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
