package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   string
	}{
		{name: "provider trialing maps to trial", status: "trialing", want: StatusTrial},
		{name: "trial passes through", status: "trial", want: StatusTrial},
		{name: "active passes through", status: "active", want: StatusActive},
		{name: "past_due passes through", status: "past_due", want: StatusPastDue},
		{name: "canceled passes through", status: "canceled", want: StatusCanceled},
		{name: "expired passes through", status: "expired", want: StatusExpired},
		{name: "unknown maps to pending", status: "incomplete_expired", want: StatusPending},
		{name: "empty maps to pending", status: "", want: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.status))
		})
	}
}

func TestUser_NeedsPayment(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{
			name: "trial expired",
			user: User{SubscriptionStatus: StatusTrial, TrialEnd: &past},
			want: true,
		},
		{
			name: "trial still active",
			user: User{SubscriptionStatus: StatusTrial, TrialEnd: &future},
			want: false,
		},
		{
			name: "trial without end date",
			user: User{SubscriptionStatus: StatusTrial},
			want: false,
		},
		{
			name: "active subscription with past trial end",
			user: User{SubscriptionStatus: StatusActive, TrialEnd: &past},
			want: false,
		},
		{
			name: "canceled subscription with past trial end",
			user: User{SubscriptionStatus: StatusCanceled, TrialEnd: &past},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.NeedsPayment(now))
		})
	}
}

func TestUser_IsSubscriptionBlocked(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "canceled blocks login", status: StatusCanceled, want: true},
		{name: "expired blocks login", status: StatusExpired, want: true},
		{name: "trial allows login", status: StatusTrial, want: false},
		{name: "active allows login", status: StatusActive, want: false},
		{name: "past_due allows login", status: StatusPastDue, want: false},
		{name: "pending allows login", status: StatusPending, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := User{SubscriptionStatus: tt.status}
			assert.Equal(t, tt.want, user.IsSubscriptionBlocked())
		})
	}
}
