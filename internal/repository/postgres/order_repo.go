package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jinzhu/gorm"

	"dough-store/internal/models"
)

// ErrStatusChanged means the order left the expected status before the update ran.
var ErrStatusChanged = errors.New("order status changed concurrently")

const uniqueViolation = "23505"

type OrderPostgresRepo struct {
	db *gorm.DB
}

func NewOrderPostgres(db *gorm.DB) *OrderPostgresRepo {
	return &OrderPostgresRepo{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("id") }

// Create inserts o and its items, filling in the generated ids.
func (r *OrderPostgresRepo) Create(o *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

// UpsertBySession writes o keyed by its payment session id. A missing row is
// inserted; a pending row is overwritten and its items replaced; a row whose
// payment already reached a terminal status is returned untouched.
func (r *OrderPostgresRepo) UpsertBySession(o models.Order) (models.Order, models.UpsertOutcome, error) {
	out, outcome, err := r.upsertBySession(o)
	if isUniqueViolation(err) {
		// lost the insert race for this session, the row exists now
		out, outcome, err = r.upsertBySession(o)
	}
	return out, outcome, err
}

func (r *OrderPostgresRepo) upsertBySession(o models.Order) (models.Order, models.UpsertOutcome, error) {
	var (
		out     models.Order
		outcome models.UpsertOutcome
	)

	err := r.db.
		Set("gorm:association_autoupdate", false).
		Transaction(func(tx *gorm.DB) error {
			var cur models.Order
			err := tx.Set("gorm:query_option", "FOR UPDATE").
				Where("payment_session_id = ?", o.PaymentSessionID).
				First(&cur).Error

			switch {
			case gorm.IsRecordNotFoundError(err):
				o.ID = 0
				for i := range o.Items {
					o.Items[i].ID = 0
					o.Items[i].OrderID = 0
				}
				if err := tx.Create(&o).Error; err != nil {
					return err
				}
				out, outcome = o, models.UpsertCreated
				return nil
			case err != nil:
				return err
			}

			if cur.PaymentStatus.Terminal() {
				if err := orderedItems(tx).Where("order_id = ?", cur.ID).Find(&cur.Items).Error; err != nil {
					return err
				}
				out, outcome = cur, models.UpsertUnchanged
				return nil
			}

			if err := tx.Model(&models.Order{}).
				Where("id = ?", cur.ID).
				Updates(map[string]interface{}{
					"customer_name":        o.CustomerName,
					"customer_email":       o.CustomerEmail,
					"customer_phone":       o.CustomerPhone,
					"delivery_address":     o.DeliveryAddress,
					"delivery_postal_code": o.DeliveryPostalCode,
					"delivery_city":        o.DeliveryCity,
					"delivery_district":    o.DeliveryDistrict,
					"delivery_type":        string(o.DeliveryType),
					"shipping_cost":        o.ShippingCost,
					"total_amount":         o.TotalAmount,
					"payment_status":       string(o.PaymentStatus),
					"order_status":         string(o.OrderStatus),
				}).Error; err != nil {
				return err
			}

			if err := tx.Where("order_id = ?", cur.ID).Delete(models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range o.Items {
				item := o.Items[i]
				item.ID = 0
				item.OrderID = cur.ID
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			}

			if err := tx.Preload("Items", orderedItems).First(&out, cur.ID).Error; err != nil {
				return err
			}
			outcome = models.UpsertPromoted
			return nil
		})
	if err != nil {
		return models.Order{}, "", err
	}
	return out, outcome, nil
}

func (r *OrderPostgresRepo) GetByID(id uint) (models.Order, error) {
	var o models.Order
	err := r.db.Preload("Items", orderedItems).First(&o, id).Error
	return o, err
}

func (r *OrderPostgresRepo) GetBySessionID(sessionID string) (models.Order, error) {
	var o models.Order
	err := r.db.Preload("Items", orderedItems).
		Where("payment_session_id = ?", sessionID).
		First(&o).Error
	return o, err
}

// List returns orders newest first.
func (r *OrderPostgresRepo) List(limit, offset int) ([]models.Order, error) {
	out := []models.Order{}
	err := r.db.Preload("Items", orderedItems).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

// AttachTracking records the carrier tracking data and marks a processing order shipped.
func (r *OrderPostgresRepo) AttachTracking(id uint, number, url string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND order_status IN (?)", id, []string{string(models.OrderProcessing), string(models.OrderShipped)}).
		Updates(map[string]interface{}{
			"tracking_number": number,
			"tracking_url":    url,
			"order_status":    string(models.OrderShipped),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus moves an order from one status to another, failing with
// ErrStatusChanged when the order is no longer in from.
func (r *OrderPostgresRepo) UpdateStatus(id uint, from, to models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, string(from)).
		Update("order_status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *OrderPostgresRepo) AddTrackingEvent(ev *models.ShipmentTracking) error {
	return r.db.Create(ev).Error
}

func (r *OrderPostgresRepo) TrackingEvents(orderID uint) ([]models.ShipmentTracking, error) {
	out := []models.ShipmentTracking{}
	err := r.db.Where("order_id = ?", orderID).
		Order("last_update").
		Order("id").
		Find(&out).Error
	return out, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
