package repository

import (
	"context"
	"errors"
	"time"

	"checkout-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already exists")
	ErrInvalidTransition    = errors.New("invalid order status transition")
)

// OrderRepository defines the interface for order data access. State
// transitions are compare-and-swap updates on the current status so
// two concurrent callback deliveries resolve to exactly one effective
// transition.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	MarkPaid(ctx context.Context, orderNumber string, info models.PaymentInfo) (*models.Order, error)
	MarkCancelled(ctx context.Context, orderNumber string) (*models.Order, error)
	MarkRefunded(ctx context.Context, orderNumber string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
}

// MongoOrderRepository implements OrderRepository on a MongoDB
// collection with a unique index on order_number.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection("orders")}
}

// EnsureIndexes creates the unique order-number index and the listing
// indexes. The uniqueness constraint is what turns a random-suffix
// collision into a distinguishable conflict error.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateOrderNumber
		}
		return err
	}
	return nil
}

func (r *MongoOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"order_number": orderNumber}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// MarkPaid transitions a pending order to paid and records the payment
// metadata, as a single atomic read-modify-write. A duplicate success
// callback on an already-paid order is an idempotent no-op returning
// the stored order; a cancelled or refunded order rejects the
// transition so a late callback can never resurrect it.
func (r *MongoOrderRepository) MarkPaid(ctx context.Context, orderNumber string, info models.PaymentInfo) (*models.Order, error) {
	filter := bson.M{"order_number": orderNumber, "status": models.OrderStatusPending}
	update := bson.M{"$set": bson.M{
		"status":       models.OrderStatusPaid,
		"payment_info": info,
		"updated_at":   time.Now(),
	}}

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// CAS missed: either the order does not exist or it already left
	// pending. Re-read to tell the cases apart.
	existing, ferr := r.FindByOrderNumber(ctx, orderNumber)
	if ferr != nil {
		return nil, ferr
	}
	if existing.Status == models.OrderStatusPaid {
		return existing, nil
	}
	return nil, ErrInvalidTransition
}

// MarkCancelled transitions a pending order to cancelled. Any other
// starting status rejects with ErrInvalidTransition.
func (r *MongoOrderRepository) MarkCancelled(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.casTransition(ctx, orderNumber, models.OrderStatusPending, models.OrderStatusCancelled)
}

// MarkRefunded transitions a paid order to refunded. Entitlements are
// not revoked here; refund is a status flag.
func (r *MongoOrderRepository) MarkRefunded(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.casTransition(ctx, orderNumber, models.OrderStatusPaid, models.OrderStatusRefunded)
}

func (r *MongoOrderRepository) casTransition(ctx context.Context, orderNumber string, from, to models.OrderStatus) (*models.Order, error) {
	filter := bson.M{"order_number": orderNumber, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}

	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, ferr := r.FindByOrderNumber(ctx, orderNumber); ferr != nil {
		return nil, ferr
	}
	return nil, ErrInvalidTransition
}

func (r *MongoOrderRepository) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
