package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76/webhook"
)

// replays a stored payment event against a running storefront, signed with
// the local webhook secret
type config struct {
	EventPath     string        `env:"REPLAY_EVENT_PATH" envDefault:"cmd/webhook-replay/testdata/checkout_completed.json"`
	TargetURL     string        `env:"REPLAY_TARGET_URL" envDefault:"http://localhost:8080/api/stripe/webhook"`
	WebhookSecret string        `env:"STRIPE_WEBHOOK_SECRET,required"`
	Timeout       time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logrus.Fatalf("error loading config: %s", err)
	}
	if len(os.Args) > 1 {
		cfg.EventPath = os.Args[1]
	}

	f, err := os.Open(cfg.EventPath)
	if err != nil {
		logrus.Fatalf("open event file: %s", err)
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		logrus.Fatalf("read event file: %s", err)
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    cfg.WebhookSecret,
		Timestamp: time.Now(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TargetURL, bytes.NewReader(payload))
	if err != nil {
		logrus.Fatalf("build request: %s", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signed.Header)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logrus.Fatalf("post event: %s", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	log := logrus.WithFields(logrus.Fields{
		"status": resp.StatusCode,
		"body":   strings.TrimSpace(string(body)),
		"file":   cfg.EventPath,
	})
	if resp.StatusCode/100 != 2 {
		log.Fatal("event rejected")
	}
	log.Print("event delivered")
}
