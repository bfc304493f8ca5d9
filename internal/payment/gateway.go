package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrSignature means the event payload could not be authenticated.
	ErrSignature = errors.New("invalid webhook signature")
	// ErrMalformedEvent means the payload was authentic but unreadable.
	ErrMalformedEvent = errors.New("malformed webhook event")
)

const EventCheckoutCompleted = "checkout.session.completed"

type LineItem struct {
	Name       string
	PriceID    string
	UnitAmount decimal.Decimal
	Quantity   int
}

type SessionRequest struct {
	CustomerEmail string
	Currency      string
	LineItems     []LineItem
	Metadata      Metadata
	SuccessURL    string
	CancelURL     string
}

type Session struct {
	ID  string
	URL string
}

// CompletedSession is the part of a finished checkout the webhook relies on.
type CompletedSession struct {
	ID            string
	CustomerEmail string
	PaymentStatus string
	AmountTotal   int64
	Metadata      map[string]string
}

type Event struct {
	ID      string
	Type    string
	Session *CompletedSession
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	// ParseEvent authenticates payload against signature before decoding it.
	ParseEvent(payload []byte, signature string) (Event, error)
}

// ToCents converts an amount in currency units to the processor's minor units.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
