package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"checkout-service/models"
	"checkout-service/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ownOrder() *models.Order {
	return &models.Order{
		OrderNumber: "ORD-20240115-123456",
		UserID:      "user-1",
		Items:       []models.OrderItem{{CourseID: "go-basics", Price: 100000}},
		TotalAmount: 100000,
		Status:      models.OrderStatusPending,
	}
}

func TestGetOrderByNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner Reads Own Order", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("FindByOrderNumber", ctx, "ORD-20240115-123456").Return(ownOrder(), nil).Once()

		order, svcErr := svc.GetOrderByNumber(ctx, "user-1", false, "ORD-20240115-123456")

		require.Nil(t, svcErr)
		assert.Equal(t, "ORD-20240115-123456", order.OrderNumber)
	})

	t.Run("Other Users Order Reads As Not Found", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("FindByOrderNumber", ctx, mock.Anything).Return(ownOrder(), nil).Once()

		_, svcErr := svc.GetOrderByNumber(ctx, "user-2", false, "ORD-20240115-123456")

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
	})

	t.Run("Admin Reads Any Order", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("FindByOrderNumber", ctx, mock.Anything).Return(ownOrder(), nil).Once()

		order, svcErr := svc.GetOrderByNumber(ctx, "admin-1", true, "ORD-20240115-123456")

		require.Nil(t, svcErr)
		assert.Equal(t, "user-1", order.UserID)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("FindByOrderNumber", ctx, mock.Anything).Return(ownOrder(), nil).Once()
		cancelled := ownOrder()
		cancelled.Status = models.OrderStatusCancelled
		mockOrders.On("MarkCancelled", ctx, "ORD-20240115-123456").Return(cancelled, nil).Once()

		order, svcErr := svc.CancelOrder(ctx, "user-1", "ORD-20240115-123456")

		require.Nil(t, svcErr)
		assert.Equal(t, models.OrderStatusCancelled, order.Status)
		mockOrders.AssertExpectations(t)
	})

	t.Run("Paid Order Cannot Be Cancelled", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		paid := ownOrder()
		paid.Status = models.OrderStatusPaid
		mockOrders.On("FindByOrderNumber", ctx, mock.Anything).Return(paid, nil).Once()
		mockOrders.On("MarkCancelled", ctx, mock.Anything).Return(nil, repository.ErrInvalidTransition).Once()

		_, svcErr := svc.CancelOrder(ctx, "user-1", "ORD-20240115-123456")

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	})

	t.Run("Other Users Order", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("FindByOrderNumber", ctx, mock.Anything).Return(ownOrder(), nil).Once()

		_, svcErr := svc.CancelOrder(ctx, "user-2", "ORD-20240115-123456")

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusNotFound, svcErr.StatusCode)
		mockOrders.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Mark Paid Grants Courses", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockUsers := new(MockUserRepository)
		svc := NewOrderService(mockOrders, mockUsers, nil, zap.NewNop())

		paid := ownOrder()
		paid.Status = models.OrderStatusPaid
		mockOrders.On("MarkPaid", ctx, "ORD-20240115-123456", mock.AnythingOfType("models.PaymentInfo")).Return(paid, nil).Once()
		mockUsers.On("GrantCourses", ctx, "user-1", []string{"go-basics"}).Return(nil).Once()

		order, svcErr := svc.UpdateOrderStatus(ctx, "ORD-20240115-123456", models.OrderStatusPaid)

		require.Nil(t, svcErr)
		assert.Equal(t, models.OrderStatusPaid, order.Status)
		mockUsers.AssertExpectations(t)
	})

	t.Run("Refund Keeps Entitlements", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		mockUsers := new(MockUserRepository)
		svc := NewOrderService(mockOrders, mockUsers, nil, zap.NewNop())

		refunded := ownOrder()
		refunded.Status = models.OrderStatusRefunded
		mockOrders.On("MarkRefunded", ctx, "ORD-20240115-123456").Return(refunded, nil).Once()

		order, svcErr := svc.UpdateOrderStatus(ctx, "ORD-20240115-123456", models.OrderStatusRefunded)

		require.Nil(t, svcErr)
		assert.Equal(t, models.OrderStatusRefunded, order.Status)
		mockUsers.AssertNotCalled(t, "GrantCourses", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invalid Transition", func(t *testing.T) {
		mockOrders := new(MockOrderRepository)
		svc := NewOrderService(mockOrders, new(MockUserRepository), nil, zap.NewNop())

		mockOrders.On("MarkRefunded", ctx, mock.Anything).Return(nil, repository.ErrInvalidTransition).Once()

		_, svcErr := svc.UpdateOrderStatus(ctx, "ORD-20240115-123456", models.OrderStatusRefunded)

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusConflict, svcErr.StatusCode)
	})

	t.Run("Unknown Status", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockUserRepository), nil, zap.NewNop())

		_, svcErr := svc.UpdateOrderStatus(ctx, "ORD-20240115-123456", models.OrderStatus("shipped"))

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	})

	t.Run("Pending Target Rejected", func(t *testing.T) {
		svc := NewOrderService(new(MockOrderRepository), new(MockUserRepository), nil, zap.NewNop())

		_, svcErr := svc.UpdateOrderStatus(ctx, "ORD-20240115-123456", models.OrderStatusPending)

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
	})
}

func TestOwnsCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("Owned", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewOrderService(new(MockOrderRepository), mockUsers, nil, zap.NewNop())

		mockUsers.On("OwnsCourse", ctx, "user-1", "go-basics").Return(true, nil).Once()

		owns, svcErr := svc.OwnsCourse(ctx, "user-1", "go-basics")

		require.Nil(t, svcErr)
		assert.True(t, owns)
	})

	t.Run("Store Failure", func(t *testing.T) {
		mockUsers := new(MockUserRepository)
		svc := NewOrderService(new(MockOrderRepository), mockUsers, nil, zap.NewNop())

		mockUsers.On("OwnsCourse", ctx, mock.Anything, mock.Anything).Return(false, errors.New("mongo down")).Once()

		_, svcErr := svc.OwnsCourse(ctx, "user-1", "go-basics")

		require.NotNil(t, svcErr)
		assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	})
}
