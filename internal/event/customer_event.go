package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerEventPayload struct {
	CustomerID       int64           `json:"customerId"`
	Name             string          `json:"name"`
	Surname          string          `json:"surname"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	EmploymentStatus string          `json:"employmentStatus,omitempty"`
	LoanEligible     bool            `json:"loanEligible"`
	MaxLoanAmount    decimal.Decimal `json:"maxLoanAmount"`
	CreditTier       string          `json:"creditTier"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	EventID   uuid.UUID            `json:"eventId"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	EventID   uuid.UUID            `json:"eventId"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	EventID    uuid.UUID `json:"eventId"`
	Timestamp  time.Time `json:"timestamp"`
	CustomerID int64     `json:"customerId"`
}

func NewCustomerCreatedEvent(payload CustomerEventPayload) CustomerCreatedEvent {
	return CustomerCreatedEvent{EventID: uuid.New(), Timestamp: time.Now().UTC(), Payload: payload}
}

func NewCustomerUpdatedEvent(payload CustomerEventPayload) CustomerUpdatedEvent {
	return CustomerUpdatedEvent{EventID: uuid.New(), Timestamp: time.Now().UTC(), Payload: payload}
}

func NewCustomerDeletedEvent(customerID int64) CustomerDeletedEvent {
	return CustomerDeletedEvent{EventID: uuid.New(), Timestamp: time.Now().UTC(), CustomerID: customerID}
}
