package model

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/validation"
)

type PaymentState string
type PlanType string
type RefundStatus string
type PaymentMethod string

const (
	PaymentPending           PaymentState = "pending"
	PaymentSuccess           PaymentState = "success"
	PaymentFailed            PaymentState = "failed"
	PaymentRefunded          PaymentState = "refunded"
	PaymentPartiallyRefunded PaymentState = "partially_refunded"

	PlanOneTime   PlanType = "one-time"
	PlanMonthly   PlanType = "monthly"
	PlanQuarterly PlanType = "quarterly"
	PlanYearly    PlanType = "yearly"

	RefundNone      RefundStatus = "none"
	RefundPending   RefundStatus = "pending"
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"

	MethodCard       PaymentMethod = "card"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodUPI        PaymentMethod = "upi"
	MethodWallet     PaymentMethod = "wallet"
	MethodEMI        PaymentMethod = "emi"
)

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Payment records a Razorpay-style order. Amounts are in minor currency
// units (paisa).
type Payment struct {
	ID     string `bson:"_id" json:"id"`
	UserID string `bson:"user_id" json:"user_id"`

	Amount   int64  `bson:"amount" json:"amount"`
	Currency string `bson:"currency" json:"currency"`

	RazorpayOrderID   string `bson:"razorpay_order_id" json:"razorpay_order_id"`
	RazorpayPaymentID string `bson:"razorpay_payment_id,omitempty" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string `bson:"razorpay_signature,omitempty" json:"-"`

	Status       PaymentState `bson:"status" json:"status"`
	PlanType     PlanType     `bson:"plan_type" json:"plan_type"`
	PlanDuration int          `bson:"plan_duration" json:"plan_duration"` // days

	InvoiceID     string `bson:"invoice_id,omitempty" json:"invoice_id,omitempty"`
	ReceiptNumber string `bson:"receipt_number,omitempty" json:"receipt_number,omitempty"`

	PaymentMethod PaymentMethod `bson:"payment_method,omitempty" json:"payment_method,omitempty"`

	RefundAmount int64        `bson:"refund_amount" json:"refund_amount"`
	RefundID     string       `bson:"refund_id,omitempty" json:"refund_id,omitempty"`
	RefundStatus RefundStatus `bson:"refund_status" json:"refund_status"`

	RetryCount    int               `bson:"retry_count" json:"retry_count"`
	FailureReason string            `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	Notes         map[string]string `bson:"notes,omitempty" json:"notes,omitempty"`
	IPAddress     string            `bson:"ip_address,omitempty" json:"ip_address,omitempty"`

	GSTAmount      int64  `bson:"gst_amount" json:"gst_amount"`
	DiscountAmount int64  `bson:"discount_amount" json:"discount_amount"`
	CouponCode     string `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize fills defaults and runs the invoice hook: the first save in
// status success synthesizes invoice_id and receipt_number. Re-saves with
// an existing invoice_id never regenerate.
func (p *Payment) Normalize() error {
	if p.Currency == "" {
		p.Currency = "INR"
	}
	if p.RefundStatus == "" {
		p.RefundStatus = RefundNone
	}
	p.CouponCode = strings.ToUpper(strings.TrimSpace(p.CouponCode))

	if p.Status == PaymentSuccess && p.InvoiceID == "" {
		random, err := randomBase36(rand.Reader, 6)
		if err != nil {
			return fmt.Errorf("generate invoice id: %w", err)
		}
		now := time.Now()
		p.InvoiceID = fmt.Sprintf("INV-%d%02d-%s", now.Year(), int(now.Month()), random)
		p.ReceiptNumber = fmt.Sprintf("RCP-%d", now.UnixMilli())
	}
	return nil
}

func (p *Payment) Validate() error {
	if p.UserID == "" {
		return common.NewValidationError("user_id", "user ID is required")
	}
	if p.Amount < 1 {
		return common.NewValidationError("amount", "payment amount must be at least 1 paisa")
	}
	switch p.Currency {
	case "INR", "USD":
	default:
		return common.NewValidationError("currency", "currency must be INR or USD")
	}
	if ok, reason := validation.RazorpayOrderID(p.RazorpayOrderID); !ok {
		return common.NewValidationError("razorpay_order_id", reason)
	}
	switch p.Status {
	case PaymentPending, PaymentSuccess, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
	default:
		return common.NewValidationError("status", "invalid payment status")
	}
	if p.Status == PaymentSuccess {
		if p.RazorpayPaymentID == "" {
			return common.NewValidationError("razorpay_payment_id", "payment ID is required for successful payments")
		}
		if p.RazorpaySignature == "" {
			return common.NewValidationError("razorpay_signature", "signature is required for successful payments")
		}
	}
	if p.RazorpayPaymentID != "" {
		if ok, reason := validation.RazorpayPaymentID(p.RazorpayPaymentID); !ok {
			return common.NewValidationError("razorpay_payment_id", reason)
		}
	}
	switch p.PlanType {
	case PlanOneTime, PlanMonthly, PlanQuarterly, PlanYearly:
	default:
		return common.NewValidationError("plan_type", "invalid plan type")
	}
	if p.PlanDuration < 1 {
		return common.NewValidationError("plan_duration", "plan duration must be at least 1 day")
	}
	if p.PaymentMethod != "" {
		switch p.PaymentMethod {
		case MethodCard, MethodNetbanking, MethodUPI, MethodWallet, MethodEMI:
		default:
			return common.NewValidationError("payment_method", "invalid payment method")
		}
	}
	if p.RefundAmount < 0 {
		return common.NewValidationError("refund_amount", "refund amount cannot be negative")
	}
	switch p.RefundStatus {
	case RefundNone, RefundPending, RefundProcessed, RefundFailed:
	default:
		return common.NewValidationError("refund_status", "invalid refund status")
	}
	if p.RetryCount < 0 {
		return common.NewValidationError("retry_count", "retry count cannot be negative")
	}
	if utf8.RuneCountInString(p.FailureReason) > 500 {
		return common.NewValidationError("failure_reason", "failure reason cannot exceed 500 characters")
	}
	if p.IPAddress != "" {
		if ok, reason := validation.IPAddress(p.IPAddress); !ok {
			return common.NewValidationError("ip_address", reason)
		}
	}
	if p.GSTAmount < 0 {
		return common.NewValidationError("gst_amount", "GST amount cannot be negative")
	}
	if p.DiscountAmount < 0 {
		return common.NewValidationError("discount_amount", "discount amount cannot be negative")
	}
	return nil
}

// NetAmount is the amount after discount, before GST. Derived, never
// persisted.
func (p *Payment) NetAmount() int64 {
	return p.Amount - p.DiscountAmount
}

// TotalAmount is the net amount plus GST.
func (p *Payment) TotalAmount() int64 {
	return p.NetAmount() + p.GSTAmount
}

// base36Limit is the largest multiple of 36 that fits in a byte; values
// at or above it are rejected so every character is equally likely.
const base36Limit = 252

func randomBase36(rnd io.Reader, n int) (string, error) {
	out := make([]byte, 0, n)
	buf := make([]byte, 1)
	for len(out) < n {
		if _, err := io.ReadFull(rnd, buf); err != nil {
			return "", err
		}
		if buf[0] >= base36Limit {
			continue
		}
		out = append(out, base36Alphabet[int(buf[0])%len(base36Alphabet)])
	}
	return string(out), nil
}
