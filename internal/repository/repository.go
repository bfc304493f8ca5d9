package repository

import (
	"time"

	"github.com/jinzhu/gorm"

	"dough-store/internal/models"
	"dough-store/internal/repository/cache"
	"dough-store/internal/repository/postgres"
)

type OrderPostgres interface {
	Create(o *models.Order) error
	UpsertBySession(o models.Order) (models.Order, models.UpsertOutcome, error)
	GetByID(id uint) (models.Order, error)
	GetBySessionID(sessionID string) (models.Order, error)
	List(limit, offset int) ([]models.Order, error)
	AttachTracking(id uint, number, url string) error
	UpdateStatus(id uint, from, to models.OrderStatus) error

	AddTrackingEvent(ev *models.ShipmentTracking) error
	TrackingEvents(orderID uint) ([]models.ShipmentTracking, error)
}

type OrderCache interface {
	PutOrder(sessionID string, order models.Order)
	GetOrder(sessionID string) (models.Order, error)
	DeleteOrder(sessionID string)
}

type Repository struct {
	OrderPostgres
	OrderCache
}

func NewRepository(db *gorm.DB, cacheTTL time.Duration) *Repository {
	return &Repository{
		OrderPostgres: postgres.NewOrderPostgres(db),
		OrderCache:    cache.NewOrderCache(cacheTTL),
	}
}

// Close stops background work of the cache, if it has any.
func (r *Repository) Close() {
	if c, ok := r.OrderCache.(interface{ Close() }); ok {
		c.Close()
	}
}
