package models

import (
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

type PaymentMethod string

const PaymentMethodVNPay PaymentMethod = "vnpay"

// CanTransition reports whether the order state machine allows moving
// from s to the target status. Pending orders can be paid or cancelled,
// paid orders can be refunded, everything else is terminal.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	case OrderStatusPaid:
		return to == OrderStatusRefunded
	default:
		return false
	}
}

// IsValid reports whether s is a known order status value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderItem is a price snapshot of a course taken at order-creation
// time. Prices are immutable after creation and decoupled from later
// catalog edits.
type OrderItem struct {
	CourseID  string `bson:"course_id" json:"course_id"`
	Title     string `bson:"title" json:"title"`
	Price     int64  `bson:"price" json:"price"`
	SalePrice *int64 `bson:"sale_price,omitempty" json:"sale_price,omitempty"`
}

// EffectivePrice returns the sale price when present, the base price
// otherwise.
func (i OrderItem) EffectivePrice() int64 {
	if i.SalePrice != nil {
		return *i.SalePrice
	}
	return i.Price
}

type PaymentInfo struct {
	TransactionID string    `bson:"transaction_id" json:"transaction_id"`
	BankCode      string    `bson:"bank_code,omitempty" json:"bank_code,omitempty"`
	CardType      string    `bson:"card_type,omitempty" json:"card_type,omitempty"`
	PaymentDate   time.Time `bson:"payment_date" json:"payment_date"`
}

type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderNumber   string             `bson:"order_number" json:"order_number"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	TotalAmount   int64              `bson:"total_amount" json:"total_amount"`
	Status        OrderStatus        `bson:"status" json:"status"`
	PaymentMethod PaymentMethod      `bson:"payment_method" json:"payment_method"`
	PaymentInfo   *PaymentInfo       `bson:"payment_info,omitempty" json:"payment_info,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CourseIDs returns the course references of all line items.
func (o *Order) CourseIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.CourseID)
	}
	return ids
}

// CalculateTotal sums the effective price of each item.
func CalculateTotal(items []OrderItem) int64 {
	var total int64
	for _, item := range items {
		total += item.EffectivePrice()
	}
	return total
}

// GenerateOrderNumber produces an order number in the form
// ORD-YYYYMMDD-NNNNNN with a random 6-digit suffix. The suffix can
// collide; the store surfaces a uniqueness violation so callers
// regenerate instead of assuming uniqueness by construction.
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), 100000+rand.Intn(900000))
}
