package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/shopspring/decimal"
)

const (
	TransportDirect = "direct"
	TransportKafka  = "kafka"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	PublicURL   string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:""`
	AdminToken  string `env:"ADMIN_TOKEN" envDefault:""`

	DatabaseURL        string `env:"DATABASE_URL" envDefault:""`
	PostgresHost       string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPass       string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB         string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode    string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	StatementTimeoutMs int    `env:"POSTGRES_STATEMENT_TIMEOUT_MS" envDefault:"5000"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceID       string `env:"STRIPE_PRODUCT_PRICE_ID"`

	ProductName      string `env:"PRODUCT_NAME" envDefault:"Massa de Pastel Brasileira 1kg"`
	ProductUnitPrice string `env:"PRODUCT_UNIT_PRICE" envDefault:"10.00"`
	Currency         string `env:"CURRENCY" envDefault:"eur"`

	CTTPublicKey        string `env:"CTT_PUBLIC_KEY"`
	CTTSecretKey        string `env:"CTT_SECRET_KEY"`
	CTTAPIURL           string `env:"CTT_API_URL" envDefault:"https://enviosecommerce.ctt.pt"`
	CTTOriginPostalCode string `env:"CTT_ORIGIN_POSTAL_CODE" envDefault:""`

	NotifyAPIURL    string `env:"NOTIFY_API_URL"`
	NotifyAPIKey    string `env:"NOTIFY_API_KEY"`
	NotifyFrom      string `env:"NOTIFY_FROM" envDefault:"encomendas@massa.pt"`
	OwnerEmail      string `env:"OWNER_EMAIL"`
	NotifyTransport string `env:"NOTIFY_TRANSPORT" envDefault:"direct"`

	KafkaBrokers  string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaTopic    string `env:"KAFKA_TOPIC" envDefault:"order-notices"`
	KafkaGroupID  string `env:"KAFKA_GROUP_ID" envDefault:"storefront-mailer"`
	KafkaDLQTopic string `env:"KAFKA_DLQ_TOPIC" envDefault:"order-notices-dlq"`

	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`
	CacheTTL        time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	unitPrice decimal.Decimal
}

func LoadConfig() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("config parse: %w", err)
	}
	price, err := parseUnitPrice(c.ProductUnitPrice)
	if err != nil {
		return Config{}, err
	}
	c.unitPrice = price
	switch c.NotifyTransport {
	case TransportDirect, TransportKafka:
	default:
		return Config{}, fmt.Errorf("config parse: NOTIFY_TRANSPORT must be %q or %q, got %q", TransportDirect, TransportKafka, c.NotifyTransport)
	}
	return c, nil
}

// UnitPrice is PRODUCT_UNIT_PRICE as validated by LoadConfig.
func (c Config) UnitPrice() decimal.Decimal { return c.unitPrice }

func parseUnitPrice(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("config parse: PRODUCT_UNIT_PRICE: %w", err)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("config parse: PRODUCT_UNIT_PRICE must be positive, got %s", d)
	}
	return d, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c Config) KafkaBrokersSlice() []string { return splitList(c.KafkaBrokers) }

func (c Config) CORSOriginsSlice() []string { return splitList(c.CORSOrigins) }

func (c Config) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutMs) * time.Millisecond
}
