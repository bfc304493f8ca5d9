package carrier

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dough-store/internal/metrics"
	"dough-store/internal/models"
)

const (
	DefaultBaseURL = "https://enviosecommerce.ctt.pt"

	trackingPageURL = "https://www.ctt.pt/feapl_2/app/open/mailing/rastreio?cc=%s"
	trackingPrefix  = "PT"
	trackingDigits  = 13
)

var ErrNotConfigured = errors.New("carrier credentials not configured")

type Config struct {
	PublicKey        string
	SecretKey        string
	BaseURL          string
	OriginPostalCode string
	Timeout          time.Duration
}

// Shipment is what the carrier needs to pick up and deliver one order.
type Shipment struct {
	OrderID      uint
	Name         string
	Email        string
	Phone        string
	Address      string
	City         string
	PostalCode   string
	DeliveryType models.DeliveryType
	WeightKg     float64
	Quantity     int
}

type FallbackReason string

const (
	FallbackNone          FallbackReason = ""
	FallbackNoCredentials FallbackReason = "no-credentials"
	FallbackNetwork       FallbackReason = "network"
	FallbackHTTPStatus    FallbackReason = "http-status"
	FallbackBadResponse   FallbackReason = "bad-response"
)

type Result struct {
	TrackingNumber string         `json:"tracking_number"`
	TrackingURL    string         `json:"tracking_url"`
	Simulated      bool           `json:"simulated"`
	Fallback       FallbackReason `json:"fallback,omitempty"`
}

type Client struct {
	cfg    Config
	http   *http.Client
	random io.Reader
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithRandom replaces the entropy source used for simulated tracking numbers.
func WithRandom(r io.Reader) Option { return func(c *Client) { c.random = r } }

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		random: rand.Reader,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c.cfg.PublicKey != "" && c.cfg.SecretKey != ""
}

// TrackingURL is the public tracking page for number.
func TrackingURL(number string) string {
	return fmt.Sprintf(trackingPageURL, url.QueryEscape(number))
}

type createRequest struct {
	CustomerName       string  `json:"customerName"`
	CustomerEmail      string  `json:"customerEmail"`
	CustomerPhone      string  `json:"customerPhone"`
	DeliveryAddress    string  `json:"deliveryAddress"`
	DeliveryCity       string  `json:"deliveryCity"`
	DeliveryPostalCode string  `json:"deliveryPostalCode"`
	DeliveryType       string  `json:"deliveryType"`
	Weight             float64 `json:"weight"`
	Quantity           int     `json:"quantity"`
}

type createResponse struct {
	TrackingNumber string `json:"trackingNumber"`
}

func deliveryCode(dt models.DeliveryType) string {
	if dt == models.DeliveryPickupPoint {
		return "POINT"
	}
	return "HOME"
}

// CreateShipment registers s with the carrier. Missing credentials and every
// network or API failure are answered with a simulated tracking number, so
// the only errors returned are internal ones.
func (c *Client) CreateShipment(ctx context.Context, s Shipment) (Result, error) {
	log := logrus.WithField("order_id", s.OrderID)

	if !c.Configured() {
		return c.simulate(log, FallbackNoCredentials, nil)
	}

	body, err := json.Marshal(createRequest{
		CustomerName:       s.Name,
		CustomerEmail:      s.Email,
		CustomerPhone:      s.Phone,
		DeliveryAddress:    s.Address,
		DeliveryCity:       s.City,
		DeliveryPostalCode: s.PostalCode,
		DeliveryType:       deliveryCode(s.DeliveryType),
		Weight:             s.WeightKg,
		Quantity:           s.Quantity,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "marshal shipment")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/shipping/create", body)
	if err != nil {
		return Result{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.simulate(log, FallbackNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.simulate(log, FallbackHTTPStatus, fmt.Errorf("carrier api status %d", resp.StatusCode))
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return c.simulate(log, FallbackBadResponse, err)
	}
	if strings.TrimSpace(out.TrackingNumber) == "" {
		return c.simulate(log, FallbackBadResponse, errors.New("response without tracking number"))
	}

	log.WithField("tracking_number", out.TrackingNumber).Info("carrier shipment created")
	return Result{
		TrackingNumber: out.TrackingNumber,
		TrackingURL:    TrackingURL(out.TrackingNumber),
	}, nil
}

func (c *Client) simulate(log *logrus.Entry, reason FallbackReason, cause error) (Result, error) {
	number, err := c.simulatedNumber()
	if err != nil {
		return Result{}, errors.Wrap(err, "generate tracking number")
	}

	metrics.CarrierFallbacks.WithLabelValues(string(reason)).Inc()
	entry := log.WithFields(logrus.Fields{"reason": reason, "tracking_number": number})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn("carrier unavailable, using simulated tracking")

	return Result{
		TrackingNumber: number,
		TrackingURL:    TrackingURL(number),
		Simulated:      true,
		Fallback:       reason,
	}, nil
}

var trackingSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(trackingDigits), nil)

func (c *Client) simulatedNumber() (string, error) {
	n, err := rand.Int(c.random, trackingSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", trackingPrefix, trackingDigits, n.Int64()), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, r)
	if err != nil {
		return nil, errors.Wrap(err, "build carrier request")
	}
	req.Header.Set("X-CTT-Public-Key", c.cfg.PublicKey)
	req.Header.Set("X-CTT-Secret-Key", c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends a request and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshal carrier request")
		}
		body = b
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("%s %s: carrier api status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

type TrackingEvent struct {
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type TrackingStatus struct {
	Status            string          `json:"status"`
	Location          string          `json:"location,omitempty"`
	LastUpdate        time.Time       `json:"lastUpdate"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty"`
	Events            []TrackingEvent `json:"events,omitempty"`
}

// TrackShipment asks the carrier for the latest state of a shipment.
func (c *Client) TrackShipment(ctx context.Context, number string) (TrackingStatus, error) {
	var out TrackingStatus
	err := c.do(ctx, http.MethodGet, "/shipping/track/"+url.PathEscape(number), nil, &out)
	return out, err
}

func (c *Client) CancelShipment(ctx context.Context, number string) error {
	return c.do(ctx, http.MethodPost, "/shipping/cancel/"+url.PathEscape(number), nil, nil)
}

type quoteRequest struct {
	OriginPostalCode      string  `json:"origin_postal_code"`
	DestinationPostalCode string  `json:"destination_postal_code"`
	Weight                float64 `json:"weight"`
	ServiceType           string  `json:"service_type"`
}

type QuoteResult struct {
	Price         decimal.Decimal `json:"price"`
	EstimatedDays int             `json:"estimated_days"`
	ServiceType   string          `json:"service_type"`
}

// Quote asks the carrier for a live price. Callers fall back to the rate table on error.
func (c *Client) Quote(ctx context.Context, postalCode string, dt models.DeliveryType, weightKg float64) (QuoteResult, error) {
	service := "domicilio"
	if dt == models.DeliveryPickupPoint {
		service = "ponto_ctt"
	}
	var out QuoteResult
	err := c.do(ctx, http.MethodPost, "/api/shipping/quote", quoteRequest{
		OriginPostalCode:      c.cfg.OriginPostalCode,
		DestinationPostalCode: postalCode,
		Weight:                weightKg,
		ServiceType:           service,
	}, &out)
	if err != nil {
		return QuoteResult{}, err
	}
	if !out.Price.IsPositive() {
		return QuoteResult{}, errors.Errorf("carrier quote price %s", out.Price)
	}
	return out, nil
}
