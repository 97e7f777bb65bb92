package event

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNewRabbitMQEventPublisherValidation(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		pub, err := NewRabbitMQEventPublisher(nil, "customers", testLogger)
		assert.Nil(t, pub)
		assert.EqualError(t, err, "RabbitMQ connection cannot be nil")
	})
}

func TestDialRejectsEmptyURL(t *testing.T) {
	conn, err := Dial("", testLogger)
	assert.Nil(t, conn)
	assert.EqualError(t, err, "RabbitMQ URL cannot be empty")
}

func TestNewCustomerEvents(t *testing.T) {
	payload := CustomerEventPayload{
		CustomerID:    7,
		Username:      "jdoe",
		LoanEligible:  true,
		MaxLoanAmount: decimal.NewFromInt(144000),
		CreditTier:    "EXCELLENT",
	}

	created := NewCustomerCreatedEvent(payload)
	updated := NewCustomerUpdatedEvent(payload)
	deleted := NewCustomerDeletedEvent(7)

	assert.NotEqual(t, uuid.Nil, created.EventID)
	assert.NotEqual(t, created.EventID, updated.EventID)
	assert.False(t, created.Timestamp.IsZero())
	assert.Equal(t, int64(7), deleted.CustomerID)
}

func TestCustomerEventPayloadKeepsDecimalExact(t *testing.T) {
	event := NewCustomerUpdatedEvent(CustomerEventPayload{
		CustomerID:    1,
		MaxLoanAmount: decimal.RequireFromString("47999.52"),
	})

	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	payload := decoded["payload"].(map[string]any)
	assert.Equal(t, "47999.52", payload["maxLoanAmount"])
}

func TestNoopEventPublisher(t *testing.T) {
	pub := NewNoopEventPublisher(testLogger)
	ctx := context.Background()

	assert.NoError(t, pub.PublishCustomerCreated(ctx, NewCustomerCreatedEvent(CustomerEventPayload{CustomerID: 1})))
	assert.NoError(t, pub.PublishCustomerUpdated(ctx, NewCustomerUpdatedEvent(CustomerEventPayload{CustomerID: 1})))
	assert.NoError(t, pub.PublishCustomerDeleted(ctx, NewCustomerDeletedEvent(1)))
}
