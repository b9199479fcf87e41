package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/vnpay"

	"go.uber.org/zap"
)

// orderNumberAttempts bounds regeneration when the random order-number
// suffix collides with an existing order.
const orderNumberAttempts = 3

type CheckoutResult struct {
	Order      *models.Order `json:"order"`
	PaymentURL string        `json:"payment_url"`
}

// CheckoutService turns a cart into a pending order and a signed
// payment redirect URL. It never clears the cart itself; the caller
// does that only after order creation is confirmed.
type CheckoutService struct {
	orders        repository.OrderRepository
	courses       repository.CourseRepository
	gateway       *vnpay.Gateway
	logger        *zap.Logger
	maxPendingAge time.Duration
}

func NewCheckoutService(
	orders repository.OrderRepository,
	courses repository.CourseRepository,
	gateway *vnpay.Gateway,
	logger *zap.Logger,
	maxPendingAge time.Duration,
) *CheckoutService {
	return &CheckoutService{
		orders:        orders,
		courses:       courses,
		gateway:       gateway,
		logger:        logger,
		maxPendingAge: maxPendingAge,
	}
}

// Checkout snapshots catalog prices for the cart items, creates a
// pending order and returns the gateway redirect URL. An unknown
// course id aborts the whole checkout; no partial order is written.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, cartItems []models.CartItem, clientIP string) (*CheckoutResult, *ServiceError) {
	if len(cartItems) == 0 {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Cart is empty"}
	}

	courseIDs := make([]string, 0, len(cartItems))
	for _, item := range cartItems {
		courseIDs = append(courseIDs, item.CourseID)
	}

	catalog, err := s.courses.FindByCourseIDs(ctx, courseIDs)
	if err != nil {
		s.logger.Error("Failed to load catalog for checkout", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	for _, cartItem := range cartItems {
		course, ok := catalog[cartItem.CourseID]
		if !ok {
			return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Course not found: " + cartItem.CourseID}
		}
		items = append(items, models.OrderItem{
			CourseID:  course.CourseID,
			Title:     course.Title,
			Price:     course.Price,
			SalePrice: course.SalePrice,
		})
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		TotalAmount:   models.CalculateTotal(items),
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodVNPay,
	}

	if svcErr := s.createWithFreshNumber(ctx, order); svcErr != nil {
		return nil, svcErr
	}

	s.logger.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total_amount", order.TotalAmount),
	)

	return &CheckoutResult{
		Order:      order,
		PaymentURL: s.paymentURL(order, clientIP),
	}, nil
}

// RetryPayment regenerates a payment URL for an existing pending order
// without creating a duplicate. Pending orders older than the
// configured retry window are cancelled instead.
func (s *CheckoutService) RetryPayment(ctx context.Context, userID, orderNumber, clientIP string) (*CheckoutResult, *ServiceError) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("Failed to load order for retry", zap.String("order_number", orderNumber), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to load order"}
	}

	if order.UserID != userID {
		return nil, &ServiceError{StatusCode: http.StatusForbidden, Message: "Order belongs to another user"}
	}
	if order.Status != models.OrderStatusPending {
		return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Order is not awaiting payment"}
	}

	if s.maxPendingAge > 0 && time.Since(order.CreatedAt) > s.maxPendingAge {
		if _, cerr := s.orders.MarkCancelled(ctx, orderNumber); cerr != nil && !errors.Is(cerr, repository.ErrInvalidTransition) {
			s.logger.Error("Failed to cancel expired order", zap.String("order_number", orderNumber), zap.Error(cerr))
		}
		return nil, &ServiceError{StatusCode: http.StatusGone, Message: "Order expired and was cancelled"}
	}

	return &CheckoutResult{
		Order:      order,
		PaymentURL: s.paymentURL(order, clientIP),
	}, nil
}

func (s *CheckoutService) createWithFreshNumber(ctx context.Context, order *models.Order) *ServiceError {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = models.GenerateOrderNumber(time.Now())
		err := s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicateOrderNumber) {
			s.logger.Warn("Order number collision, regenerating", zap.String("order_number", order.OrderNumber))
			continue
		}
		s.logger.Error("Failed to create order", zap.String("user_id", order.UserID), zap.Error(err))
		return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to create order"}
	}
	return &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to allocate order number"}
}

func (s *CheckoutService) paymentURL(order *models.Order, clientIP string) string {
	orderInfo := "Thanh toan don hang " + order.OrderNumber
	return s.gateway.PaymentURL(order.OrderNumber, order.TotalAmount, orderInfo, clientIP, time.Now())
}
