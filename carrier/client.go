package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Auth hands out bearer tokens. Implemented by TokenProvider.
type Auth interface {
	Token(ctx context.Context, forceRefresh bool) (string, error)
}

// RetryPolicy bounds retries at the carrier boundary. One attempt means no
// retry at all. Only transport failures and 5xx answers are retried, a 4xx
// rejection will not change on a second try.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

func (r RetryPolicy) attempts() int {
	if r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

func (r RetryPolicy) delay(attempt int) time.Duration {
	d := r.Backoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if r.MaxBackoff > 0 && d >= r.MaxBackoff {
			return r.MaxBackoff
		}
	}
	return d
}

type Client struct {
	BaseURL string
	Auth    Auth
	HTTP    *http.Client
	Retry   RetryPolicy

	sleep func(time.Duration)
}

func NewClient(baseURL string, auth Auth, hc *http.Client, retry RetryPolicy) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{BaseURL: baseURL, Auth: auth, HTTP: hc, Retry: retry, sleep: time.Sleep}
}

type QuoteRequest struct {
	PickupDetails   PickupDetails   `json:"pickupDetails"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
}

type PickupDetails struct {
	AddressBook AddressBookRef `json:"addressBook"`
	PickupTime  string         `json:"pickupTime"`
}

type AddressBookRef struct {
	ID string `json:"id"`
}

type DeliveryAddress struct {
	RawAddress  string      `json:"rawAddress"`
	Coordinates Coordinates `json:"coordinates"`
	Details     string      `json:"details,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type QuoteResponse struct {
	QuoteID      string  `json:"quoteId"`
	QuotePrice   float64 `json:"quotePrice"`
	CurrencyCode string  `json:"currencyCode"`
	ExpiresAt    string  `json:"expiresAt"`
}

type OrderRequest struct {
	Contact         Contact        `json:"contact"`
	PickupOrderCode string         `json:"pickupOrderCode"`
	PackageDetails  PackageDetails `json:"packageDetails"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type PackageDetails struct {
	ContentType string   `json:"contentType"`
	Description string   `json:"description"`
	ParcelValue *float64 `json:"parcelValue"`
	Weight      *float64 `json:"weight"`
	Products    []string `json:"products"`
}

type OrderResponse struct {
	TrackingNumber string        `json:"trackingNumber"`
	OrderCode      string        `json:"orderCode"`
	Status         OrderStatus   `json:"status"`
	Quote          QuoteResponse `json:"quote"`
	Contact        Contact       `json:"contact"`
	PartnerID      int64         `json:"partnerId"`
	CityCode       string        `json:"cityCode"`
	Cancellable    bool          `json:"cancellable"`
}

type OrderStatus struct {
	State     string `json:"state"`
	CreatedAt string `json:"createdAt"`
}

// CreateQuote exchanges an order record for a priced quote.
func (c *Client) CreateQuote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	var out QuoteResponse
	err := c.post(ctx, "/v2/laas/quotes", req, &out)
	return out, err
}

// CreateOrder converts a quote into a placed parcel order.
func (c *Client) CreateOrder(ctx context.Context, quoteID string, req OrderRequest) (OrderResponse, error) {
	var out OrderResponse
	err := c.post(ctx, fmt.Sprintf("/v2/laas/quotes/%s/parcels", quoteID), req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.Retry.attempts(); attempt++ {
		if attempt > 1 {
			c.sleep(c.Retry.delay(attempt - 1))
		}
		lastErr = c.postOnce(ctx, path, payload, out)
		if lastErr == nil {
			return nil
		}
		var rej *RejectionError
		if errors.As(lastErr, &rej) && rej.Status < 500 {
			return lastErr
		}
		var auth *AuthError
		if errors.As(lastErr, &auth) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) postOnce(ctx context.Context, path string, payload any, out any) error {
	token, err := c.Auth.Token(ctx, false)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	u := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RejectionError{Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
