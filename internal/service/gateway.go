package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// OrderCreator is the one thing this system needs from the payment gateway's
// API: turning an amount into a gateway order id. Kept narrow so the payment
// service can be exercised without network access.
type OrderCreator interface {
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error)
}

// RazorpayGateway backs OrderCreator with the Razorpay SDK.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

func (g *RazorpayGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", err
	}
	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("gateway order response missing id: %v", body)
	}
	return orderID, nil
}

// VerifyPaymentSignature checks the checkout callback signature: an HMAC
// SHA-256 of "orderId|paymentId" under the API key secret.
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	expected := hmacHex([]byte(orderID+"|"+paymentID), keySecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header: an HMAC
// SHA-256 of the raw request body under the webhook secret (a different
// secret than the key secret).
func VerifyWebhookSignature(body []byte, signature, webhookSecret string) bool {
	expected := hmacHex(body, webhookSecret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func hmacHex(message []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
