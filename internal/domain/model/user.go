package model

import (
	"strings"
	"time"

	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/validation"
)

type PaymentStatus string

const (
	PaymentStatusTrial   PaymentStatus = "trial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
)

const maxStoredIPs = 10

// User is an account document. The password field always holds the bcrypt
// hash at rest; verification and reset tokens are stored only as their
// sha256 hashes.
type User struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`

	EmailVerified            bool       `bson:"email_verified" json:"email_verified"`
	VerificationTokenHash    string     `bson:"verification_token_hash,omitempty" json:"-"`
	VerificationTokenExpires *time.Time `bson:"verification_token_expires,omitempty" json:"-"`
	ResetTokenHash           string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetTokenExpires        *time.Time `bson:"reset_token_expires,omitempty" json:"-"`

	IPAddresses []string `bson:"ip_addresses" json:"ip_addresses,omitempty"`

	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	PaymentExpiry *time.Time    `bson:"payment_expiry,omitempty" json:"payment_expiry,omitempty"`

	LastLogin          *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
	LoginAttempts      int        `bson:"login_attempts" json:"-"`
	AccountLockedUntil *time.Time `bson:"account_locked_until,omitempty" json:"-"`

	PreferredLanguage   Language `bson:"preferred_language" json:"preferred_language"`
	TotalProblemsSolved int      `bson:"total_problems_solved" json:"total_problems_solved"`
	CurrentStreak       int      `bson:"current_streak" json:"current_streak"`
	MaxStreak           int      `bson:"max_streak" json:"max_streak"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Normalize applies the pre-persist derivations: trimming, lowercasing
// the email, and filling enum defaults. Idempotent.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.Phone = strings.TrimSpace(u.Phone)
	if u.PaymentStatus == "" {
		u.PaymentStatus = PaymentStatusTrial
	}
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = LangJavaScript
	}
	if u.IPAddresses == nil {
		u.IPAddresses = []string{}
	}
}

// Validate checks every structural invariant. A violation aborts the
// write entirely.
func (u *User) Validate() error {
	if ok, reason := validation.PersonName(u.Name); !ok {
		return common.NewValidationError("name", reason)
	}
	if ok, reason := validation.Email(u.Email); !ok {
		return common.NewValidationError("email", reason)
	}
	if u.Password == "" {
		return common.NewValidationError("password", "password is required")
	}
	if u.Phone != "" {
		if ok, reason := validation.IndianPhone(u.Phone); !ok {
			return common.NewValidationError("phone", reason)
		}
	}
	if len(u.IPAddresses) > maxStoredIPs {
		return common.NewValidationError("ip_addresses", "maximum 10 IP addresses can be stored")
	}
	for _, ip := range u.IPAddresses {
		if ok, reason := validation.IPAddress(ip); !ok {
			return common.NewValidationError("ip_addresses", reason)
		}
	}
	switch u.PaymentStatus {
	case PaymentStatusTrial, PaymentStatusPaid, PaymentStatusExpired:
	default:
		return common.NewValidationError("payment_status", "payment status must be either trial, paid, or expired")
	}
	if u.PaymentExpiry != nil && !u.PaymentExpiry.After(time.Now()) {
		return common.NewValidationError("payment_expiry", "payment expiry date must be in the future")
	}
	if !IsValidLanguage(u.PreferredLanguage) {
		return common.NewValidationError("preferred_language", "invalid preferred language")
	}
	if u.LoginAttempts < 0 {
		return common.NewValidationError("login_attempts", "login attempts cannot be negative")
	}
	if u.TotalProblemsSolved < 0 || u.CurrentStreak < 0 || u.MaxStreak < 0 {
		return common.NewValidationError("streaks", "counters cannot be negative")
	}
	return nil
}

// RecordIP appends an address to the bounded list, dropping the oldest
// entry when full. Known addresses are not duplicated.
func (u *User) RecordIP(ip string) {
	if ip == "" {
		return
	}
	for _, known := range u.IPAddresses {
		if known == ip {
			return
		}
	}
	u.IPAddresses = append(u.IPAddresses, ip)
	if len(u.IPAddresses) > maxStoredIPs {
		u.IPAddresses = u.IPAddresses[len(u.IPAddresses)-maxStoredIPs:]
	}
}

// IsLocked reports whether the account is inside a lockout window.
func (u *User) IsLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && now.Before(*u.AccountLockedUntil)
}

// ClearVerification wipes the verification token pair after a successful
// verify. One-time use is irreversible.
func (u *User) ClearVerification() {
	u.EmailVerified = true
	u.VerificationTokenHash = ""
	u.VerificationTokenExpires = nil
}

// Sanitized returns a copy safe to hand to the boundary: secrets and
// lockout bookkeeping are cleared.
func (u *User) Sanitized() *User {
	c := *u
	c.Password = ""
	c.VerificationTokenHash = ""
	c.VerificationTokenExpires = nil
	c.ResetTokenHash = ""
	c.ResetTokenExpires = nil
	return &c
}
