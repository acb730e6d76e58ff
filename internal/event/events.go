package event

import (
	"time"
)

// CustomerEventPayload never carries the cpf or password hash.
type CustomerEventPayload struct {
	CustomerID int64     `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Income     string    `json:"income"`
	ZipCode    string    `json:"zipCode"`
	Street     string    `json:"street"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerUpdatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	CustomerID     int64     `json:"customerId"`
	RemovedCredits int64     `json:"removedCredits"`
}

type CreditEventPayload struct {
	CreditCode          string    `json:"creditCode"`
	CustomerID          int64     `json:"customerId"`
	CreditValue         string    `json:"creditValue"`
	DayFirstInstallment string    `json:"dayFirstInstallment"`
	NumberOfInstallment int       `json:"numberOfInstallment"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}

type CreditCreatedEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Payload   CreditEventPayload `json:"payload"`
}
