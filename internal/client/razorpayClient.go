package client

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"notes-marketplace/internal/config"
	"notes-marketplace/internal/metrics"
	"notes-marketplace/internal/model"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingCredentials = errors.New("razorpay key id and key secret are required")
	ErrInvalidSignature   = errors.New("invalid signature")
)

type RazorpayClient interface {
	// KeyID is the public key the checkout widget is opened with.
	KeyID() string
	CreateOrder(ctx context.Context, req *model.RazorpayOrderRequest) (*model.OrderIntent, error)
	FetchOrder(ctx context.Context, orderID string) (*model.OrderIntent, error)
	// VerifyPaymentSignature checks the signature the checkout widget returns on success.
	VerifyPaymentSignature(orderID, paymentID, signature string) error
	VerifyWebhookSignature(body []byte, signature string) error
}

// ProviderError is a non-2xx answer from the provider API.
type ProviderError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("razorpay error %d", e.StatusCode)
	}
	return fmt.Sprintf("razorpay error %d: %s", e.StatusCode, e.Description)
}

type razorpayClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	keyID         string
	keySecret     string
	webhookSecret string
}

func NewRazorpayClient(cfg *config.Razorpay) (RazorpayClient, error) {
	if strings.TrimSpace(cfg.KeyID) == "" || strings.TrimSpace(cfg.KeySecret) == "" {
		return nil, ErrMissingCredentials
	}

	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    strings.TrimRight(cfg.BaseApiURL, "/"),
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
	}, nil
}

func (c *razorpayClientImpl) KeyID() string {
	return c.keyID
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, orderReq *model.RazorpayOrderRequest) (*model.OrderIntent, error) {
	body, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	var order model.OrderIntent
	if err := c.do(ctx, http.MethodPost, "/v1/orders", "orders.create", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *razorpayClientImpl) FetchOrder(ctx context.Context, orderID string) (*model.OrderIntent, error) {
	var order model.OrderIntent
	path := "/v1/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, "orders.fetch", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *razorpayClientImpl) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return ErrInvalidSignature
	}
	return verifyHMAC(c.keySecret, []byte(orderID+"|"+paymentID), signature)
}

func (c *razorpayClientImpl) VerifyWebhookSignature(body []byte, signature string) error {
	if c.webhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	if signature == "" {
		return ErrInvalidSignature
	}
	return verifyHMAC(c.webhookSecret, body, signature)
}

func (c *razorpayClientImpl) do(ctx context.Context, method, path, endpoint string, payload []byte, out any) error {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProviderCall(endpoint, "unreachable", start)
		return fmt.Errorf("razorpay request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.ObserveProviderCall(endpoint, strconv.Itoa(resp.StatusCode), start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseProviderError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode razorpay response: %w", err)
	}
	return nil
}

func parseProviderError(status int, body []byte) error {
	perr := &ProviderError{StatusCode: status}

	var errBody model.RazorpayErrorBody
	if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Description != "" {
		perr.Code = errBody.Error.Code
		perr.Description = errBody.Error.Description
		return perr
	}

	perr.Description = strings.TrimSpace(string(body))
	return perr
}

func verifyHMAC(secret string, message []byte, signature string) error {
	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return ErrInvalidSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(message)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return ErrInvalidSignature
	}
	return nil
}

// SignHMAC produces the hex signature the provider would send for message.
func SignHMAC(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
