package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"dough-store/internal/carrier"
	"dough-store/internal/models"
	"dough-store/internal/notify"
	"dough-store/internal/repository/postgres"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func humanizeValidationErrors(errs validator.ValidationErrors) string {
	var b strings.Builder
	for _, fe := range errs {
		if fe.Param() != "" {
			fmt.Fprintf(&b, "%s: %s=%s; ", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			fmt.Fprintf(&b, "%s: %s; ", fe.Namespace(), fe.Tag())
		}
	}
	s := b.String()
	if len(s) > 2 {
		s = s[:len(s)-2]
	}
	return s
}

func mapNotFound(err error) error {
	if gorm.IsRecordNotFoundError(err) {
		return ErrNotFound
	}
	return err
}

func (s *Service) GetOrder(id uint) (models.Order, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		return models.Order{}, mapNotFound(err)
	}
	return o, nil
}

// GetOrderBySession serves the post-payment page. Orders whose payment is
// settled are cached; pending ones are always read from the database.
func (s *Service) GetOrderBySession(sessionID string) (models.Order, error) {
	if o, err := s.cache.GetOrder(sessionID); err == nil {
		return o, nil
	}
	o, err := s.orders.GetBySessionID(sessionID)
	if err != nil {
		return models.Order{}, mapNotFound(err)
	}
	if o.PaymentStatus.Terminal() {
		s.cache.PutOrder(sessionID, o)
	}
	return o, nil
}

func (s *Service) ListOrders(limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.List(limit, offset)
}

type TrackingView struct {
	OrderID        uint                      `json:"order_id"`
	OrderStatus    models.OrderStatus        `json:"order_status"`
	TrackingNumber string                    `json:"tracking_number,omitempty"`
	TrackingURL    string                    `json:"tracking_url,omitempty"`
	Events         []models.ShipmentTracking `json:"events"`
}

// Tracking refreshes the shipment state from the carrier when it is
// reachable and returns the recorded event log.
func (s *Service) Tracking(ctx context.Context, id uint) (TrackingView, error) {
	o, err := s.GetOrder(id)
	if err != nil {
		return TrackingView{}, err
	}
	view := TrackingView{OrderID: o.ID, OrderStatus: o.OrderStatus, Events: []models.ShipmentTracking{}}
	if !o.HasTracking() {
		return view, nil
	}
	view.TrackingNumber = *o.TrackingNumber
	if o.TrackingURL != nil {
		view.TrackingURL = *o.TrackingURL
	}

	if s.carrier.Configured() {
		if err := s.refreshTracking(ctx, o.ID, view.TrackingNumber); err != nil {
			logrus.WithError(err).WithField("order_id", o.ID).Warn("carrier tracking unavailable, serving last known state")
		}
	}

	events, err := s.orders.TrackingEvents(o.ID)
	if err != nil {
		return TrackingView{}, err
	}
	view.Events = events
	return view, nil
}

func (s *Service) refreshTracking(ctx context.Context, orderID uint, number string) error {
	st, err := s.carrier.TrackShipment(ctx, number)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	last := st.LastUpdate
	if last.IsZero() {
		last = time.Now().UTC()
	}
	return s.orders.AddTrackingEvent(&models.ShipmentTracking{
		OrderID:        orderID,
		TrackingNumber: number,
		Status:         st.Status,
		Location:       st.Location,
		TrackingData:   string(raw),
		LastUpdate:     last,
	})
}

// StatusChange is an administrative order status update. A tracking number
// may only accompany a move to shipped.
type StatusChange struct {
	Status         models.OrderStatus `json:"status"          validate:"required,oneof=shipped delivered cancelled"`
	TrackingNumber string             `json:"tracking_number"`
	TrackingURL    string             `json:"tracking_url"    validate:"omitempty,url"`
}

func (s *Service) ChangeStatus(ctx context.Context, id uint, req StatusChange) (models.Order, error) {
	req.TrackingNumber = strings.TrimSpace(req.TrackingNumber)
	req.TrackingURL = strings.TrimSpace(req.TrackingURL)
	if err := s.validate(req); err != nil {
		return models.Order{}, err
	}

	o, err := s.GetOrder(id)
	if err != nil {
		return models.Order{}, err
	}
	from, to := o.OrderStatus, req.Status

	switch {
	case req.TrackingNumber != "":
		if to != models.OrderShipped {
			return models.Order{}, fmt.Errorf("%w: tracking number is only accepted when shipping", ErrValidation)
		}
		if from != models.OrderProcessing {
			return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		url := req.TrackingURL
		if url == "" {
			url = carrier.TrackingURL(req.TrackingNumber)
		}
		if err := s.orders.AttachTracking(o.ID, req.TrackingNumber, url); err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
			}
			return models.Order{}, err
		}
	default:
		if !o.CanTransitionTo(to) {
			return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if err := s.orders.UpdateStatus(o.ID, from, to); err != nil {
			if errors.Is(err, postgres.ErrStatusChanged) {
				return models.Order{}, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
			}
			return models.Order{}, err
		}
	}

	log := logrus.WithFields(logrus.Fields{"order_id": o.ID, "from": from, "to": to})
	if to == models.OrderCancelled && from == models.OrderShipped && o.HasTracking() && s.carrier.Configured() {
		if err := s.carrier.CancelShipment(ctx, *o.TrackingNumber); err != nil {
			log.WithError(err).Warn("carrier shipment not cancelled")
		}
	}

	updated, err := s.GetOrder(o.ID)
	if err != nil {
		return models.Order{}, err
	}
	s.cache.DeleteOrder(updated.PaymentSessionID)
	s.notices.Dispatch(noticeFor(notify.KindStatusUpdate, updated))

	log.Info("order status changed")
	return updated, nil
}
