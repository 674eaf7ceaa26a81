package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService struct {
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	keySecret   string
	logger      *zap.Logger
}

func NewPaymentService(paymentRepo repository.PaymentRepository, userRepo repository.UserRepository, keySecret string, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		keySecret:   keySecret,
		logger:      logger,
	}
}

type CreateOrderRequest struct {
	UserID          string              `json:"-"`
	Amount          int64               `json:"amount"`
	Currency        string              `json:"currency,omitempty"`
	RazorpayOrderID string              `json:"razorpay_order_id"`
	PlanType        model.PlanType      `json:"plan_type"`
	PlanDuration    int                 `json:"plan_duration"`
	GSTAmount       int64               `json:"gst_amount,omitempty"`
	DiscountAmount  int64               `json:"discount_amount,omitempty"`
	CouponCode      string              `json:"coupon_code,omitempty"`
	Notes           map[string]string   `json:"notes,omitempty"`
	PaymentMethod   model.PaymentMethod `json:"payment_method,omitempty"`
	IPAddress       string              `json:"-"`
}

// CreateOrder records a pending payment for a gateway order.
func (s *PaymentService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*model.Payment, error) {
	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	p := &model.Payment{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		RazorpayOrderID: req.RazorpayOrderID,
		Status:          model.PaymentPending,
		PlanType:        req.PlanType,
		PlanDuration:    req.PlanDuration,
		GSTAmount:       req.GSTAmount,
		DiscountAmount:  req.DiscountAmount,
		CouponCode:      req.CouponCode,
		Notes:           req.Notes,
		PaymentMethod:   req.PaymentMethod,
		IPAddress:       req.IPAddress,
	}
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return p, nil
}

type ConfirmPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Confirm verifies the gateway signature and transitions the payment to
// success, which triggers the one-time invoice generation. The user's
// payment_status is updated afterwards; the two writes are not atomic
// and the record pair is eventually consistent.
func (s *PaymentService) Confirm(ctx context.Context, req ConfirmPaymentRequest) (*model.Payment, error) {
	p, err := s.paymentRepo.FindByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.PaymentSuccess {
		// Confirm is idempotent for an already-successful order.
		return p, nil
	}
	if p.Status != model.PaymentPending && p.Status != model.PaymentFailed {
		return nil, fmt.Errorf("payment in state %s cannot be confirmed: %w", p.Status, common.ErrConflict)
	}

	if !s.verifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, fmt.Errorf("signature mismatch: %w", common.ErrUnauthorized)
	}

	p.Status = model.PaymentSuccess
	p.RazorpayPaymentID = req.RazorpayPaymentID
	p.RazorpaySignature = req.RazorpaySignature
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to mark payment successful: %w", err)
	}
	s.logger.Info("payment confirmed",
		zap.String("payment_id", p.ID), zap.String("invoice_id", p.InvoiceID))

	if err := s.extendUserAccess(ctx, p); err != nil {
		s.logger.Warn("user payment status update failed after successful payment",
			zap.String("payment_id", p.ID), zap.Error(err))
	}
	return p, nil
}

func (s *PaymentService) extendUserAccess(ctx context.Context, p *model.Payment) error {
	user, err := s.userRepo.FindByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	expiry := time.Now().AddDate(0, 0, p.PlanDuration)
	user.PaymentStatus = model.PaymentStatusPaid
	user.PaymentExpiry = &expiry
	return s.userRepo.Update(ctx, user)
}

// Fail records a failed gateway attempt and bumps the retry counter.
func (s *PaymentService) Fail(ctx context.Context, orderID, reason string) (*model.Payment, error) {
	p, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentPending && p.Status != model.PaymentFailed {
		return nil, fmt.Errorf("payment in state %s cannot be failed: %w", p.Status, common.ErrConflict)
	}
	p.Status = model.PaymentFailed
	p.FailureReason = reason
	p.RetryCount++
	if err := p.Normalize(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment failure: %w", err)
	}
	return p, nil
}

type RefundRequest struct {
	RazorpayOrderID string `json:"razorpay_order_id"`
	Amount          int64  `json:"amount"`
	RefundID        string `json:"refund_id"`
}

// Refund moves a successful payment to refunded or partially_refunded
// depending on the amount.
func (s *PaymentService) Refund(ctx context.Context, req RefundRequest) (*model.Payment, error) {
	p, err := s.paymentRepo.FindByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		return nil, err
	}
	if p.Status != model.PaymentSuccess && p.Status != model.PaymentPartiallyRefunded {
		return nil, fmt.Errorf("only successful payments can be refunded: %w", common.ErrConflict)
	}
	if req.Amount < 1 || p.RefundAmount+req.Amount > p.Amount {
		return nil, common.NewValidationError("amount", "refund amount must be positive and cannot exceed the amount paid")
	}

	p.RefundAmount += req.Amount
	p.RefundID = req.RefundID
	p.RefundStatus = model.RefundProcessed
	if p.RefundAmount == p.Amount {
		p.Status = model.PaymentRefunded
	} else {
		p.Status = model.PaymentPartiallyRefunded
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}
	s.logger.Info("payment refunded", zap.String("payment_id", p.ID), zap.Int64("amount", req.Amount))
	return p, nil
}

func (s *PaymentService) History(ctx context.Context, userID string) ([]*model.Payment, error) {
	return s.paymentRepo.ListByUser(ctx, userID)
}

// verifySignature checks the gateway's HMAC-SHA256 over "orderID|paymentID".
func (s *PaymentService) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
