package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	gorm "github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"dough-store/internal/carrier"
	"dough-store/internal/models"
	"dough-store/internal/notify"
	"dough-store/internal/payment"
	"dough-store/internal/repository"
	"dough-store/internal/repository/cache"
	svc "dough-store/internal/service"
	"dough-store/internal/shipping"
)

const whsec = "whsec_service_test"

type pgStub struct {
	mu sync.Mutex

	createFn      func(o *models.Order) error
	upsertFn      func(o models.Order) (models.Order, models.UpsertOutcome, error)
	getFn         func(id uint) (models.Order, error)
	getSessionFn  func(id string) (models.Order, error)
	attachFn      func(id uint, number, url string) error
	updateFn      func(id uint, from, to models.OrderStatus) error
	eventsFn      func(id uint) ([]models.ShipmentTracking, error)
	listFn        func(limit, offset int) ([]models.Order, error)
	addedEvents   []models.ShipmentTracking
	created       []models.Order
	upserted      []models.Order
	attached      []string
	statusUpdates []models.OrderStatus
}

func (p *pgStub) Create(o *models.Order) error {
	p.mu.Lock()
	p.created = append(p.created, *o)
	p.mu.Unlock()
	if p.createFn != nil {
		return p.createFn(o)
	}
	o.ID = 1
	return nil
}

func (p *pgStub) UpsertBySession(o models.Order) (models.Order, models.UpsertOutcome, error) {
	p.mu.Lock()
	p.upserted = append(p.upserted, o)
	p.mu.Unlock()
	if p.upsertFn != nil {
		return p.upsertFn(o)
	}
	o.ID = 7
	return o, models.UpsertCreated, nil
}

func (p *pgStub) GetByID(id uint) (models.Order, error) {
	if p.getFn != nil {
		return p.getFn(id)
	}
	return models.Order{}, gorm.ErrRecordNotFound
}

func (p *pgStub) GetBySessionID(id string) (models.Order, error) {
	if p.getSessionFn != nil {
		return p.getSessionFn(id)
	}
	return models.Order{}, gorm.ErrRecordNotFound
}

func (p *pgStub) List(limit, offset int) ([]models.Order, error) {
	if p.listFn != nil {
		return p.listFn(limit, offset)
	}
	return []models.Order{}, nil
}

func (p *pgStub) AttachTracking(id uint, number, url string) error {
	p.attached = append(p.attached, number)
	if p.attachFn != nil {
		return p.attachFn(id, number, url)
	}
	return nil
}

func (p *pgStub) UpdateStatus(id uint, from, to models.OrderStatus) error {
	p.statusUpdates = append(p.statusUpdates, to)
	if p.updateFn != nil {
		return p.updateFn(id, from, to)
	}
	return nil
}

func (p *pgStub) AddTrackingEvent(ev *models.ShipmentTracking) error {
	p.addedEvents = append(p.addedEvents, *ev)
	return nil
}

func (p *pgStub) TrackingEvents(id uint) ([]models.ShipmentTracking, error) {
	if p.eventsFn != nil {
		return p.eventsFn(id)
	}
	return p.addedEvents, nil
}

var _ repository.OrderPostgres = (*pgStub)(nil)

type gatewayStub struct {
	createFn func(ctx context.Context, req payment.SessionRequest) (payment.Session, error)
	requests []payment.SessionRequest
	parser   *payment.Stripe
}

func (g *gatewayStub) CreateSession(ctx context.Context, req payment.SessionRequest) (payment.Session, error) {
	g.requests = append(g.requests, req)
	if g.createFn != nil {
		return g.createFn(ctx, req)
	}
	return payment.Session{ID: "cs_test_abc", URL: "https://checkout.stripe.com/c/pay/cs_test_abc"}, nil
}

func (g *gatewayStub) ParseEvent(payload []byte, signature string) (payment.Event, error) {
	return g.parser.ParseEvent(payload, signature)
}

type carrierStub struct {
	configured bool
	createFn   func(ctx context.Context, s carrier.Shipment) (carrier.Result, error)
	trackFn    func(ctx context.Context, n string) (carrier.TrackingStatus, error)
	quoteFn    func(ctx context.Context, pc string, dt models.DeliveryType, w float64) (carrier.QuoteResult, error)
	shipments  []carrier.Shipment
	cancelled  []string
}

func (c *carrierStub) Configured() bool { return c.configured }

func (c *carrierStub) CreateShipment(ctx context.Context, s carrier.Shipment) (carrier.Result, error) {
	c.shipments = append(c.shipments, s)
	if c.createFn != nil {
		return c.createFn(ctx, s)
	}
	return carrier.Result{TrackingNumber: "PT0000000000042", TrackingURL: carrier.TrackingURL("PT0000000000042"), Simulated: true}, nil
}

func (c *carrierStub) TrackShipment(ctx context.Context, n string) (carrier.TrackingStatus, error) {
	if c.trackFn != nil {
		return c.trackFn(ctx, n)
	}
	return carrier.TrackingStatus{}, carrier.ErrNotConfigured
}

func (c *carrierStub) CancelShipment(_ context.Context, n string) error {
	c.cancelled = append(c.cancelled, n)
	return nil
}

func (c *carrierStub) Quote(ctx context.Context, pc string, dt models.DeliveryType, w float64) (carrier.QuoteResult, error) {
	if c.quoteFn != nil {
		return c.quoteFn(ctx, pc, dt, w)
	}
	return carrier.QuoteResult{}, carrier.ErrNotConfigured
}

type dispatcherStub struct{ notices []notify.OrderNotice }

func (d *dispatcherStub) Dispatch(n ...notify.OrderNotice) { d.notices = append(d.notices, n...) }

type fixture struct {
	svc     *svc.Service
	pg      *pgStub
	cache   *cache.OrderCache
	gateway *gatewayStub
	carrier *carrierStub
	notices *dispatcherStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		pg:      &pgStub{},
		cache:   cache.NewOrderCache(time.Minute),
		gateway: &gatewayStub{parser: payment.NewStripe(payment.StripeConfig{WebhookSecret: whsec})},
		carrier: &carrierStub{},
		notices: &dispatcherStub{},
	}
	t.Cleanup(f.cache.Close)

	f.svc = svc.NewService(
		&repository.Repository{OrderPostgres: f.pg, OrderCache: f.cache},
		svc.Config{
			Product: svc.Product{
				Name:      svc.DefaultProductName,
				UnitPrice: decimal.RequireFromString("10.00"),
				Currency:  "eur",
			},
			PublicURL: "https://massa.example.pt/",
		},
		svc.Deps{
			Gateway:    f.gateway,
			Carrier:    f.carrier,
			Calculator: shipping.NewCalculator(),
			Notices:    f.notices,
		},
	)
	return f
}

func fakeCart(qty int) svc.Cart {
	return svc.Cart{
		CustomerName:  gofakeit.Name(),
		CustomerEmail: gofakeit.Email(),
		CustomerPhone: gofakeit.Phone(),
		Address:       gofakeit.Street(),
		PostalCode:    "1100-048",
		City:          "Lisboa",
		District:      "Lisboa",
		DeliveryType:  models.DeliveryHome,
		Quantity:      qty,
	}
}

func signedEvent(t *testing.T, eventType string, session map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_" + gofakeit.LetterN(12),
		"object":      "event",
		"type":        eventType,
		"api_version": "2023-10-16",
		"data":        map[string]any{"object": session},
	})
	require.NoError(t, err)
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    whsec,
		Timestamp: time.Now(),
	})
	return payload, sp.Header
}

func completedSession(id string, md map[string]string) map[string]any {
	return map[string]any{
		"id":             id,
		"object":         "checkout.session",
		"customer_email": "ana@example.pt",
		"payment_status": "paid",
		"amount_total":   3558,
		"metadata":       md,
	}
}

func metadataFor(qty, shipping string) map[string]string {
	return map[string]string{
		payment.KeyCustomerName:     "Ana Silva",
		payment.KeyCustomerEmail:    "ana@example.pt",
		payment.KeyCustomerPhone:    "+351910000000",
		payment.KeyCustomerAddress:  "Rua Augusta 1",
		payment.KeyCustomerCity:     "Lisboa",
		payment.KeyCustomerDistrict: "Lisboa",
		payment.KeyPostalCode:       "1100-048",
		payment.KeyDeliveryType:     "home",
		payment.KeyQuantity:         qty,
		payment.KeyShippingCost:     shipping,
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func (f *fixture) repo() *repository.Repository {
	return &repository.Repository{OrderPostgres: f.pg, OrderCache: f.cache}
}

func (f *fixture) deps() svc.Deps {
	return svc.Deps{Gateway: f.gateway, Carrier: f.carrier, Notices: f.notices}
}
