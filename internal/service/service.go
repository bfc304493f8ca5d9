package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"dough-store/internal/carrier"
	"dough-store/internal/models"
	"dough-store/internal/notify"
	"dough-store/internal/payment"
	"dough-store/internal/repository"
	"dough-store/internal/shipping"
)

type Checkout interface {
	CreateSession(ctx context.Context, cart Cart) (CheckoutSession, error)
}

type Webhook interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Order interface {
	GetOrder(id uint) (models.Order, error)
	GetOrderBySession(sessionID string) (models.Order, error)
	ListOrders(limit, offset int) ([]models.Order, error)
	Tracking(ctx context.Context, id uint) (TrackingView, error)
	ChangeStatus(ctx context.Context, id uint, req StatusChange) (models.Order, error)
}

type Shipping interface {
	Quote(ctx context.Context, postalCode string, dt models.DeliveryType, quantity int) (shipping.Quote, error)
}

// Carrier is the subset of the CTT client the service drives.
type Carrier interface {
	Configured() bool
	CreateShipment(ctx context.Context, s carrier.Shipment) (carrier.Result, error)
	TrackShipment(ctx context.Context, number string) (carrier.TrackingStatus, error)
	CancelShipment(ctx context.Context, number string) error
	Quote(ctx context.Context, postalCode string, dt models.DeliveryType, weightKg float64) (carrier.QuoteResult, error)
}

type Dispatcher interface {
	Dispatch(notices ...notify.OrderNotice)
}

type Product struct {
	Name      string
	PriceID   string
	UnitPrice decimal.Decimal
	Currency  string
}

type Config struct {
	Product   Product
	PublicURL string
}

type Deps struct {
	Gateway    payment.Gateway
	Carrier    Carrier
	Calculator *shipping.Calculator
	Notices    Dispatcher
}

type Service struct {
	orders  repository.OrderPostgres
	cache   repository.OrderCache
	gateway payment.Gateway
	carrier Carrier
	calc    *shipping.Calculator
	notices Dispatcher
	cfg     Config
	v       *validator.Validate
}

func NewService(repo *repository.Repository, cfg Config, deps Deps) *Service {
	if deps.Calculator == nil {
		deps.Calculator = shipping.NewCalculator()
	}
	if cfg.Product.Name == "" {
		cfg.Product.Name = DefaultProductName
	}
	if cfg.Product.Currency == "" {
		cfg.Product.Currency = "eur"
	}
	return &Service{
		orders:  repo.OrderPostgres,
		cache:   repo.OrderCache,
		gateway: deps.Gateway,
		carrier: deps.Carrier,
		calc:    deps.Calculator,
		notices: deps.Notices,
		cfg:     cfg,
		v:       validator.New(),
	}
}
