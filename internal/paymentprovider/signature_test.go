package paymentprovider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyEventSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    []byte
		header  string
		secret  string
		wantErr bool
	}{
		{
			name:   "valid signature",
			body:   body,
			header: SignPayload(body, secret, now),
			secret: secret,
		},
		{
			name:   "signature issued slightly in the past",
			body:   body,
			header: SignPayload(body, secret, now.Add(-4*time.Minute)),
			secret: secret,
		},
		{
			name:    "missing header",
			body:    body,
			header:  "",
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "body altered after signing",
			body:    append([]byte(nil), append(body, ' ')...),
			header:  SignPayload(body, secret, now),
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "wrong secret",
			body:    body,
			header:  SignPayload(body, "whsec_other", now),
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "stale timestamp",
			body:    body,
			header:  SignPayload(body, secret, now.Add(-10*time.Minute)),
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "timestamp from the future",
			body:    body,
			header:  SignPayload(body, secret, now.Add(10*time.Minute)),
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "malformed header",
			body:    body,
			header:  "t=abc,v1=zzz",
			secret:  secret,
			wantErr: true,
		},
		{
			name:    "header without signature part",
			body:    body,
			header:  "t=1750000000",
			secret:  secret,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyEventSignature(tt.body, tt.header, tt.secret, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseEvent(t *testing.T) {
	event, err := ParseEvent([]byte(`{
		"id": "evt_42",
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "active"}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_42", event.ID)
	assert.Equal(t, "customer.subscription.updated", event.Type)
	assert.NotEmpty(t, event.Data.Object)

	_, err = ParseEvent([]byte(`{"id":"evt_43"}`))
	assert.Error(t, err)

	_, err = ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestSubscription_PeriodHelpers(t *testing.T) {
	trialEnd := int64(1750000000)
	sub := Subscription{TrialEnd: &trialEnd}

	got := sub.TrialEndTime()
	require.NotNil(t, got)
	assert.Equal(t, time.Unix(trialEnd, 0).UTC(), got.UTC())
	assert.Nil(t, sub.CurrentPeriodEndTime())
}
