package event

import "context"

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

var _ EventPublisher = NopPublisher{}

func (NopPublisher) PublishCustomerCreated(context.Context, CustomerCreatedEvent) error { return nil }

func (NopPublisher) PublishCustomerUpdated(context.Context, CustomerUpdatedEvent) error { return nil }

func (NopPublisher) PublishCustomerDeleted(context.Context, CustomerDeletedEvent) error { return nil }

func (NopPublisher) PublishCreditCreated(context.Context, CreditCreatedEvent) error { return nil }
