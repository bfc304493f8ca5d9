package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
	// APIURL overrides the API endpoint, used against local stubs.
	APIURL string
}

type Stripe struct {
	api           *client.API
	webhookSecret string
}

func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	bc := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     logrus.StandardLogger(),
		MaxNetworkRetries: stripe.Int64(1),
	}
	if cfg.APIURL != "" {
		bc.URL = stripe.String(strings.TrimRight(cfg.APIURL, "/"))
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, bc),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, bc),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, bc),
	})

	return &Stripe{api: api, webhookSecret: cfg.WebhookSecret}
}

func (s *Stripe) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(req.CustomerEmail),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	for _, li := range req.LineItems {
		item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(int64(li.Quantity))}
		if li.PriceID != "" {
			item.Price = stripe.String(li.PriceID)
		} else {
			item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(ToCents(li.UnitAmount)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			}
		}
		params.LineItems = append(params.LineItems, item)
	}
	for k, v := range req.Metadata.Encode() {
		params.AddMetadata(k, v)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) ParseEvent(payload []byte, signature string) (Event, error) {
	if s.webhookSecret == "" || signature == "" {
		return Event{}, fmt.Errorf("%w: missing signature or secret", ErrSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return Event{}, fmt.Errorf("%w: %v", ErrSignature, err)
		}
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	out := Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return Event{}, fmt.Errorf("%w: checkout session: %v", ErrMalformedEvent, err)
	}
	email := cs.CustomerEmail
	if email == "" && cs.CustomerDetails != nil {
		email = cs.CustomerDetails.Email
	}
	out.Session = &CompletedSession{
		ID:            cs.ID,
		CustomerEmail: email,
		PaymentStatus: string(cs.PaymentStatus),
		AmountTotal:   cs.AmountTotal,
		Metadata:      cs.Metadata,
	}
	return out, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}
