package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/vnpay"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CallbackOutcome string

const (
	OutcomeSuccess          CallbackOutcome = "success"
	OutcomeInvalidSignature CallbackOutcome = "invalid_signature"
	OutcomeProcessFailed    CallbackOutcome = "process_failed"
	OutcomeDeclined         CallbackOutcome = "declined"
)

// CallbackResult is the structured outcome of processing a gateway
// callback. The HTTP boundary turns RedirectPath into an actual
// redirect; the processor performs no rendering.
type CallbackResult struct {
	Outcome      CallbackOutcome
	OrderNumber  string
	ResponseCode string
	RedirectPath string
}

// EventPublisher publishes settlement events to the message bus.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, event models.PaymentEvent) error
}

// SNSPublisher mirrors the pkg/aws client for best-effort fan-out.
type SNSPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// PaymentService is the single trust boundary where external network
// input becomes authoritative state change. Signature verification
// happens before anything else; unauthenticated input never touches
// order state.
type PaymentService struct {
	orders     repository.OrderRepository
	users      repository.UserRepository
	hashSecret string
	events     EventPublisher
	sns        SNSPublisher
	snsTopic   string
	logger     *zap.Logger
}

func NewPaymentService(
	orders repository.OrderRepository,
	users repository.UserRepository,
	hashSecret string,
	events EventPublisher,
	sns SNSPublisher,
	snsTopic string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:     orders,
		users:      users,
		hashSecret: hashSecret,
		events:     events,
		sns:        sns,
		snsTopic:   snsTopic,
		logger:     logger,
	}
}

// ProcessCallback authenticates and applies a gateway callback. The
// returned error is non-nil only for unexpected storage failures; the
// gateway's own retry then re-delivers the callback, which is safe
// because MarkPaid is idempotent. Every expected category maps to a
// CallbackResult instead.
func (s *PaymentService) ProcessCallback(ctx context.Context, params map[string]string, clientIP string) (*CallbackResult, error) {
	providedSig := params[vnpay.SecureHashParam]

	if !vnpay.Verify(params, providedSig, s.hashSecret) {
		s.logger.Warn("Callback signature verification failed",
			zap.String("txn_ref", params[vnpay.ParamTxnRef]),
			zap.String("client_ip", clientIP),
		)
		return &CallbackResult{
			Outcome:      OutcomeInvalidSignature,
			RedirectPath: "/payment/cancel?error=invalid_signature",
		}, nil
	}

	orderNumber := params[vnpay.ParamTxnRef]
	responseCode := params[vnpay.ParamResponseCode]

	if responseCode != vnpay.ResponseCodeSuccess {
		s.logger.Info("Gateway reported non-success",
			zap.String("order_number", orderNumber),
			zap.String("response_code", responseCode),
		)
		return &CallbackResult{
			Outcome:      OutcomeDeclined,
			OrderNumber:  orderNumber,
			ResponseCode: responseCode,
			RedirectPath: fmt.Sprintf("/payment/cancel?orderNumber=%s&code=%s",
				url.QueryEscape(orderNumber), url.QueryEscape(responseCode)),
		}, nil
	}

	info := models.PaymentInfo{
		TransactionID: params[vnpay.ParamTransactionNo],
		BankCode:      params[vnpay.ParamBankCode],
		CardType:      params[vnpay.ParamCardType],
		PaymentDate:   time.Now(),
	}

	order, err := s.orders.MarkPaid(ctx, orderNumber, info)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			// Distinct from a forged signature: a signed callback for
			// an unknown order usually means a gateway/environment
			// mismatch rather than an attack.
			s.logger.Warn("Callback for unknown order",
				zap.String("order_number", orderNumber),
				zap.String("client_ip", clientIP),
			)
		case errors.Is(err, repository.ErrInvalidTransition):
			s.logger.Warn("Success callback for non-payable order",
				zap.String("order_number", orderNumber),
			)
		default:
			return nil, fmt.Errorf("mark order %s paid: %w", orderNumber, err)
		}
		return &CallbackResult{
			Outcome:      OutcomeProcessFailed,
			OrderNumber:  orderNumber,
			ResponseCode: responseCode,
			RedirectPath: "/payment/cancel?error=process_failed",
		}, nil
	}

	// Grant failure after a committed PAID transition must surface as
	// retryable: the gateway redelivers, MarkPaid no-ops, and the
	// grant runs again. The inverse (grant without PAID) cannot occur.
	if err := s.users.GrantCourses(ctx, order.UserID, order.CourseIDs()); err != nil {
		return nil, fmt.Errorf("grant courses for order %s: %w", orderNumber, err)
	}

	s.logger.Info("Payment settled",
		zap.String("order_number", orderNumber),
		zap.String("user_id", order.UserID),
		zap.String("transaction_id", info.TransactionID),
		zap.Int64("amount", order.TotalAmount),
	)

	s.publishEvent(ctx, models.PaymentEvent{
		ID:          uuid.NewString(),
		Type:        "payment_succeeded",
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Amount:      order.TotalAmount,
		Currency:    "VND",
		Timestamp:   time.Now().UTC(),
	})

	return &CallbackResult{
		Outcome:      OutcomeSuccess,
		OrderNumber:  orderNumber,
		ResponseCode: responseCode,
		RedirectPath: "/payment/success?orderNumber=" + url.QueryEscape(orderNumber),
	}, nil
}

// publishEvent fans the event out to Kafka and, when configured, SNS.
// Both are best-effort; settlement has already committed.
func (s *PaymentService) publishEvent(ctx context.Context, event models.PaymentEvent) {
	if s.events != nil {
		if err := s.events.PublishPaymentEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish payment event",
				zap.String("order_number", event.OrderNumber),
				zap.Error(err),
			)
		}
	}

	if s.sns != nil && s.snsTopic != "" {
		payload, err := event.Marshal()
		if err != nil {
			s.logger.Error("Failed to marshal payment event", zap.Error(err))
			return
		}
		if err := s.sns.Publish(ctx, s.snsTopic, payload); err != nil {
			s.logger.Error("SNS publish failed", zap.String("order_number", event.OrderNumber), zap.Error(err))
		}
	}
}
