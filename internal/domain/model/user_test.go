package model

import (
	"fmt"
	"testing"
	"time"
)

func validUser() *User {
	return &User{
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Password: "$2a$12$notarealhashbutnotempty",
	}
}

func TestUserNormalize(t *testing.T) {
	u := validUser()
	u.Email = "  Asha@Example.COM "
	u.Normalize()
	if u.Email != "asha@example.com" {
		t.Errorf("Email = %q, want lowercased and trimmed", u.Email)
	}
	if u.PaymentStatus != PaymentStatusTrial {
		t.Errorf("PaymentStatus default = %q, want trial", u.PaymentStatus)
	}
	if u.PreferredLanguage != LangJavaScript {
		t.Errorf("PreferredLanguage default = %q, want javascript", u.PreferredLanguage)
	}
}

func TestUserValidate(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)
	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr bool
	}{
		{"valid", func(u *User) {}, false},
		{"bad email", func(u *User) { u.Email = "not-an-email" }, true},
		{"numeric name", func(u *User) { u.Name = "user123" }, true},
		{"empty password", func(u *User) { u.Password = "" }, true},
		{"bad phone", func(u *User) { u.Phone = "1234567890" }, true},
		{"good phone", func(u *User) { u.Phone = "9876543210" }, false},
		{"past payment expiry", func(u *User) { u.PaymentExpiry = &past }, true},
		{"future payment expiry", func(u *User) { u.PaymentExpiry = &future }, false},
		{"bad payment status", func(u *User) { u.PaymentStatus = "free" }, true},
		{"bad ip in list", func(u *User) { u.IPAddresses = []string{"999.999"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.mutate(u)
			u.Normalize()
			if err := u.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUserRecordIPBounded(t *testing.T) {
	u := validUser()
	u.Normalize()
	for i := 0; i < 15; i++ {
		u.RecordIP(fmt.Sprintf("10.0.0.%d", i))
	}
	if len(u.IPAddresses) != 10 {
		t.Errorf("len(IPAddresses) = %d, want 10", len(u.IPAddresses))
	}
	if u.IPAddresses[len(u.IPAddresses)-1] != "10.0.0.14" {
		t.Error("newest address must be retained")
	}

	// A known address is not duplicated.
	u.RecordIP("10.0.0.14")
	if len(u.IPAddresses) != 10 {
		t.Error("duplicate address must not grow the list")
	}
}

func TestUserLockWindow(t *testing.T) {
	u := validUser()
	now := time.Now()
	if u.IsLocked(now) {
		t.Error("user with no lock must not be locked")
	}
	until := now.Add(10 * time.Minute)
	u.AccountLockedUntil = &until
	if !u.IsLocked(now) {
		t.Error("user inside the window must be locked")
	}
	if u.IsLocked(now.Add(11 * time.Minute)) {
		t.Error("user past the window must not be locked")
	}
}

func TestUserSanitized(t *testing.T) {
	u := validUser()
	now := time.Now()
	u.VerificationTokenHash = "hash"
	u.VerificationTokenExpires = &now
	u.ResetTokenHash = "hash"

	s := u.Sanitized()
	if s.Password != "" || s.VerificationTokenHash != "" || s.ResetTokenHash != "" {
		t.Error("Sanitized() must clear secret fields")
	}
	if u.Password == "" {
		t.Error("Sanitized() must not mutate the original")
	}
}

func TestUserClearVerification(t *testing.T) {
	u := validUser()
	now := time.Now()
	u.VerificationTokenHash = "hash"
	u.VerificationTokenExpires = &now
	u.ClearVerification()
	if !u.EmailVerified {
		t.Error("ClearVerification must mark the email verified")
	}
	if u.VerificationTokenHash != "" || u.VerificationTokenExpires != nil {
		t.Error("ClearVerification must wipe the token pair")
	}
}
