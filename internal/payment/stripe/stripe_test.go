package stripe

import (
	"encoding/json"
	"testing"
	"time"
)

func TestConfigNormalizeAndValidate(t *testing.T) {
	cfg := &Config{
		SecretKey:     " sk_test_123 ",
		WebhookSecret: " whsec_123 ",
		SuccessURL:    "https://example.com/pay/success",
		CancelURL:     "https://example.com/pay/cancel",
	}
	cfg.Normalize()
	if cfg.SecretKey != "sk_test_123" {
		t.Fatalf("unexpected secret key: %s", cfg.SecretKey)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", cfg.APIBaseURL)
	}
	if cfg.WebhookToleranceSeconds != defaultWebhookToleranceS {
		t.Fatalf("unexpected default tolerance: %d", cfg.WebhookToleranceSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
}

func webhookBody(t *testing.T, now time.Time) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"id":   "evt_test_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":         "checkout.session",
				"id":             "cs_test_123",
				"payment_status": "paid",
				"currency":       "usd",
				"amount_total":   5000,
				"created":        now.Unix(),
				"metadata": map[string]interface{}{
					"payment_no": "PAY1001",
					"booking_no": "TM20260101000000AAAA1111",
				},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return body
}

func TestVerifyAndParseWebhookCompleted(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, now)
	sig := computeSignature(cfg.WebhookSecret, now.Unix(), body)

	result, err := VerifyAndParseWebhook(cfg, "t=1760000000,v1="+sig, body, now)
	if err != nil {
		t.Fatalf("verify and parse webhook failed: %v", err)
	}
	if result.EventType != "checkout.session.completed" {
		t.Fatalf("unexpected event type: %s", result.EventType)
	}
	if result.PaymentNo != "PAY1001" {
		t.Fatalf("unexpected payment no: %s", result.PaymentNo)
	}
	if result.ProviderRef != "cs_test_123" {
		t.Fatalf("unexpected provider ref: %s", result.ProviderRef)
	}
	if result.Status != "success" {
		t.Fatalf("unexpected status: %s", result.Status)
	}
	if result.Amount != "50.00" {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
	if result.Currency != "USD" {
		t.Fatalf("unexpected currency: %s", result.Currency)
	}
}

func TestVerifyAndParseWebhookInvalidSignature(t *testing.T) {
	now := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, now)

	if _, err := VerifyAndParseWebhook(cfg, "t=1760000000,v1=bad-signature", body, now); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestVerifyAndParseWebhookStaleTimestamp(t *testing.T) {
	signed := time.Unix(1760000000, 0)
	cfg := &Config{
		WebhookSecret:           "whsec_test_abc",
		WebhookToleranceSeconds: 300,
	}
	body := webhookBody(t, signed)
	sig := computeSignature(cfg.WebhookSecret, signed.Unix(), body)

	// 超出容忍窗口的时间戳必须拒绝
	now := signed.Add(20 * time.Minute)
	if _, err := VerifyAndParseWebhook(cfg, "t=1760000000,v1="+sig, body, now); err == nil {
		t.Fatalf("expected stale timestamp error")
	}
}

func TestMinorAmountRoundTrip(t *testing.T) {
	minor, err := toMinorAmount("50.00", "USD")
	if err != nil {
		t.Fatalf("to minor amount failed: %v", err)
	}
	if minor != 5000 {
		t.Fatalf("expected 5000, got %d", minor)
	}
	if got := fromMinorAmount(5000, "USD"); got != "50.00" {
		t.Fatalf("expected 50.00, got %s", got)
	}

	minor, err = toMinorAmount("500", "JPY")
	if err != nil {
		t.Fatalf("to minor amount failed: %v", err)
	}
	if minor != 500 {
		t.Fatalf("expected 500, got %d", minor)
	}
}
