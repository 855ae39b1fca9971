package model

import (
	corebun "cartflow/internal/infra/database/bun"
)

// OrderHistory is the append-only audit trail. Every state
// transition writes one row here — always, even when no external
// RabbitMQ subscriber is configured. Mutations that do not change the
// state, such as coupon application, write no row.
type OrderHistory struct {
	corebun.CoreModel `bun:"table:order_histories,alias:oh"`

	OrderID     string `bun:"order_id,notnull" json:"order_id"`
	FromState   string `bun:"from_state" json:"from_state,omitempty"`
	ToState     string `bun:"to_state" json:"to_state,omitempty"`
	Description string `bun:"description" json:"description"`
	TriggeredBy string `bun:"triggered_by_actor" json:"triggered_by"`
	Context     string `bun:"context,type:text" json:"context,omitempty"`
}

func (OrderHistory) TableName() string {
	return "order_histories"
}
