package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNotConfigured = errors.New("notification api not configured")

type Config struct {
	APIURL     string
	APIKey     string
	From       string
	OwnerEmail string
	Timeout    time.Duration
	MaxRetries uint64
}

type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	From    string `json:"from"`
}

// Mailer sends notices through the bearer-authenticated messaging API.
type Mailer struct {
	cfg     Config
	http    *http.Client
	backoff func() backoff.BackOff
}

func NewMailer(cfg Config) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Mailer{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = cfg.Timeout
			return b
		},
	}
}

func (m *Mailer) Configured() bool {
	return m.cfg.APIURL != "" && m.cfg.APIKey != ""
}

// Notify renders n and sends it to its recipient. Owner alerts go to the
// configured owner address and are skipped when there is none.
func (m *Mailer) Notify(ctx context.Context, n OrderNotice) error {
	to := n.CustomerEmail
	if n.Kind == KindOwnerAlert {
		if m.cfg.OwnerEmail == "" {
			logrus.WithField("order_id", n.OrderID).Debug("owner email not configured, alert skipped")
			return nil
		}
		to = m.cfg.OwnerEmail
	}

	subject, html, err := render(n)
	if err != nil {
		return err
	}
	return m.Send(ctx, Email{To: to, Subject: subject, HTML: html, From: m.cfg.From})
}

// Send posts one email, retrying transport errors and 5xx answers.
func (m *Mailer) Send(ctx context.Context, e Email) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal email")
	}

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.APIURL+"/email/send", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err = fmt.Errorf("notification api status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 500 {
			return err
		}
		return backoff.Permanent(err)
	}

	var b backoff.BackOff = m.backoff()
	if m.cfg.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, m.cfg.MaxRetries)
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return errors.Wrapf(err, "send email to %s", e.To)
	}

	logrus.WithField("to", e.To).WithField("subject", e.Subject).Info("email sent")
	return nil
}
