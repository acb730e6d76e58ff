package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent       *[]published
	publishErr error
	closed     bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	*c.sent = append(*c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeOpener struct {
	sent       []published
	openErr    error
	publishErr error
	last       *fakeChannel
}

func (o *fakeOpener) openChannel() (publishChannel, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.last = &fakeChannel{sent: &o.sent, publishErr: o.publishErr}
	return o.last, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublishCustomerCreatedRoutesToTopic(t *testing.T) {
	opener := &fakeOpener{}
	pub := newPublisher(opener, "credit-api", discardLogger())

	evt := CustomerCreatedEvent{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   CustomerEventPayload{CustomerID: 7, FirstName: "Ana", Email: "ana@example.com", Income: "1000.00"},
	}
	require.NoError(t, pub.PublishCustomerCreated(context.Background(), evt))

	require.Len(t, opener.sent, 1)
	got := opener.sent[0]
	assert.Equal(t, "credit-api", got.exchange)
	assert.Equal(t, routingKeyCustomerCreated, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, publisherAppID, got.msg.AppId)
	assert.True(t, opener.last.closed)

	var decoded CustomerCreatedEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, int64(7), decoded.Payload.CustomerID)
	assert.NotContains(t, string(got.msg.Body), "cpf")
}

func TestPublishUsesRoutingKeyPerEvent(t *testing.T) {
	opener := &fakeOpener{}
	pub := newPublisher(opener, "credit-api", discardLogger())
	ctx := context.Background()

	require.NoError(t, pub.PublishCustomerUpdated(ctx, CustomerUpdatedEvent{}))
	require.NoError(t, pub.PublishCustomerDeleted(ctx, CustomerDeletedEvent{CustomerID: 1, RemovedCredits: 2}))
	require.NoError(t, pub.PublishCreditCreated(ctx, CreditCreatedEvent{}))

	require.Len(t, opener.sent, 3)
	assert.Equal(t, routingKeyCustomerUpdated, opener.sent[0].key)
	assert.Equal(t, routingKeyCustomerDeleted, opener.sent[1].key)
	assert.Equal(t, routingKeyCreditCreated, opener.sent[2].key)
}

func TestPublishReportsChannelFailure(t *testing.T) {
	opener := &fakeOpener{openErr: errors.New("connection closed")}
	pub := newPublisher(opener, "credit-api", discardLogger())

	err := pub.PublishCreditCreated(context.Background(), CreditCreatedEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open channel")
}

func TestPublishReportsBrokerFailure(t *testing.T) {
	opener := &fakeOpener{publishErr: errors.New("nack")}
	pub := newPublisher(opener, "credit-api", discardLogger())

	err := pub.PublishCustomerCreated(context.Background(), CustomerCreatedEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish message")
	assert.True(t, opener.last.closed)
}

func TestNewRabbitMQEventPublisherRejectsMissingConnection(t *testing.T) {
	_, err := NewRabbitMQEventPublisher(nil, "credit-api", discardLogger())
	assert.Error(t, err)
}
