package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService covers the read side and the explicitly user/admin
// driven transitions: history listings, cancel, admin status updates
// and the course-ownership predicate.
type OrderService struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	events EventPublisher
	logger *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, users repository.UserRepository, events EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{orders: orders, users: users, events: events, logger: logger}
}

// GetUserOrders returns the user's orders newest-first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to fetch user orders", zap.String("user_id", userID), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}
	return orders, nil
}

// GetAllOrders returns every order newest-first (admin view).
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, *ServiceError) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch orders"}
	}
	return orders, nil
}

// GetOrderByNumber returns a single order; non-admin callers only see
// their own.
func (s *OrderService) GetOrderByNumber(ctx context.Context, userID string, isAdmin bool, orderNumber string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_number", orderNumber), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to fetch order"}
	}
	if !isAdmin && order.UserID != userID {
		return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
	}
	return order, nil
}

// CancelOrder cancels a pending order on behalf of its owner.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderNumber string) (*models.Order, *ServiceError) {
	order, svcErr := s.GetOrderByNumber(ctx, userID, false, orderNumber)
	if svcErr != nil {
		return nil, svcErr
	}

	cancelled, err := s.orders.MarkCancelled(ctx, order.OrderNumber)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Order cannot be cancelled"}
		}
		s.logger.Error("Failed to cancel order", zap.String("order_number", orderNumber), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to cancel order"}
	}

	s.publish(ctx, "order_cancelled", cancelled)
	return cancelled, nil
}

// UpdateOrderStatus applies an admin-driven transition. Marking an
// order paid grants entitlements through the same path the gateway
// callback uses; marking it refunded flips the status flag only.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderNumber string, status models.OrderStatus) (*models.Order, *ServiceError) {
	if !status.IsValid() {
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Unknown order status"}
	}

	var (
		order *models.Order
		err   error
	)
	switch status {
	case models.OrderStatusPaid:
		order, err = s.orders.MarkPaid(ctx, orderNumber, models.PaymentInfo{
			TransactionID: "admin",
			PaymentDate:   time.Now(),
		})
		if err == nil {
			if gerr := s.users.GrantCourses(ctx, order.UserID, order.CourseIDs()); gerr != nil {
				s.logger.Error("Failed to grant courses after admin update",
					zap.String("order_number", orderNumber), zap.Error(gerr))
				return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to grant course access"}
			}
			s.publish(ctx, "payment_succeeded", order)
		}
	case models.OrderStatusCancelled:
		order, err = s.orders.MarkCancelled(ctx, orderNumber)
		if err == nil {
			s.publish(ctx, "order_cancelled", order)
		}
	case models.OrderStatusRefunded:
		order, err = s.orders.MarkRefunded(ctx, orderNumber)
		if err == nil {
			s.publish(ctx, "order_refunded", order)
		}
	default:
		return nil, &ServiceError{StatusCode: http.StatusBadRequest, Message: "Orders cannot be moved back to pending"}
	}

	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return nil, &ServiceError{StatusCode: http.StatusNotFound, Message: "Order not found"}
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, &ServiceError{StatusCode: http.StatusConflict, Message: "Invalid status transition"}
		}
		s.logger.Error("Failed to update order status",
			zap.String("order_number", orderNumber), zap.String("status", string(status)), zap.Error(err))
		return nil, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to update order"}
	}

	return order, nil
}

// OwnsCourse is the access-gating predicate derived from the
// entitlement set.
func (s *OrderService) OwnsCourse(ctx context.Context, userID, courseID string) (bool, *ServiceError) {
	owns, err := s.users.OwnsCourse(ctx, userID, courseID)
	if err != nil {
		s.logger.Error("Failed to check course ownership",
			zap.String("user_id", userID), zap.String("course_id", courseID), zap.Error(err))
		return false, &ServiceError{StatusCode: http.StatusInternalServerError, Message: "Failed to check access"}
	}
	return owns, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.events == nil {
		return
	}
	event := models.PaymentEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Amount:      order.TotalAmount,
		Currency:    "VND",
		Timestamp:   time.Now().UTC(),
	}
	if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}
