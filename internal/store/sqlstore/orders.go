package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zhouzirui/chatdesk/backend/internal/model/order"
)

// OrderStore implements order.Store on the orders table.
type OrderStore struct {
	db *gorm.DB
}

// Orders returns an order.Store sharing the Store's connection.
func (s *Store) Orders() *OrderStore {
	return &OrderStore{db: s.db}
}

// List returns all orders sorted by identifier.
func (o *OrderStore) List(ctx context.Context) ([]order.Order, error) {
	var rows []orderRow
	if err := o.db.WithContext(ctx).Order("order_id ASC").Find(&rows).Error; err != nil {
		return nil, storageError("list orders", err)
	}
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

// FindByID looks up an order by identifier.
func (o *OrderStore) FindByID(ctx context.Context, orderID string) (order.Order, error) {
	var row orderRow
	if err := o.db.WithContext(ctx).Where("order_id = ?", orderID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Order{}, order.ErrOrderNotFound
		}
		return order.Order{}, storageError("find order", err)
	}
	return row.toModel(), nil
}

// Upsert inserts orders, replacing email and status of existing ones.
func (o *OrderStore) Upsert(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]orderRow, 0, len(orders))
	for _, item := range orders {
		rows = append(rows, orderRow{OrderID: item.OrderID, UserEmail: item.UserEmail, Status: item.Status})
	}
	err := o.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_email", "status"}),
	}).Create(&rows).Error
	if err != nil {
		return storageError("upsert orders", err)
	}
	return nil
}
