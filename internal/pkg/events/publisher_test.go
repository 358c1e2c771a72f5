package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gocabin/internal/domain"
	"gocabin/internal/pkg/events"
)

func TestNewBookingEvent(t *testing.T) {
	b := domain.Booking{
		ID:        "b-1",
		GuestID:   "g-1",
		CabinID:   "c-1",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusUnconfirmed,
	}

	ev := events.NewBookingEvent(events.BookingCreated, b)

	assert.Equal(t, "booking.created", ev.Type)
	assert.Equal(t, "b-1", ev.BookingID)
	assert.Equal(t, "2024-06-01", ev.StartDate)
	assert.Equal(t, "2024-06-03", ev.EndDate)
	assert.False(t, ev.OccurredAt.IsZero())

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"status":"unconfirmed"`)
	assert.Contains(t, string(raw), `"cabin_id":"c-1"`)
}

func TestNopPublisher(t *testing.T) {
	var p events.Publisher = events.NopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), events.BookingDeleted, struct{}{}))
	assert.NoError(t, p.Close())
}

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

func TestAMQPPublisher_PublishSerializesJSON(t *testing.T) {
	ch := new(MockChannel)
	var sent amqp.Publishing
	ch.On("PublishWithContext", mock.Anything, "gocabin.bookings", events.BookingUpdated, false, false, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(5).(amqp.Publishing) }).
		Return(nil)
	ch.On("Close").Return(nil)

	p := events.NewAMQPPublisherWithChannel(ch, "gocabin.bookings")
	ev := events.NewBookingEvent(events.BookingUpdated, domain.Booking{
		ID:        "b-1",
		CabinID:   "c-1",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		Status:    domain.StatusCheckedIn,
	})

	require.NoError(t, p.Publish(context.Background(), events.BookingUpdated, ev))
	require.NoError(t, p.Close())

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)
	assert.False(t, sent.Timestamp.IsZero())

	var decoded events.BookingEvent
	require.NoError(t, json.Unmarshal(sent.Body, &decoded))
	assert.Equal(t, "booking.updated", decoded.Type)
	assert.Equal(t, "b-1", decoded.BookingID)
	assert.Equal(t, domain.StatusCheckedIn, decoded.Status)
	assert.Equal(t, "2024-06-03", decoded.EndDate)
	ch.AssertExpectations(t)
}

func TestAMQPPublisher_PublishErrors(t *testing.T) {
	ch := new(MockChannel)
	ch.On("PublishWithContext", mock.Anything, "gocabin.bookings", events.BookingDeleted, false, false, mock.Anything).
		Return(amqp.ErrClosed)
	p := events.NewAMQPPublisherWithChannel(ch, "gocabin.bookings")

	err := p.Publish(context.Background(), events.BookingDeleted, map[string]string{"id": "b-1"})
	assert.ErrorIs(t, err, amqp.ErrClosed)

	err = p.Publish(context.Background(), events.BookingDeleted, make(chan int))
	assert.Error(t, err)
	ch.AssertNumberOfCalls(t, "PublishWithContext", 1)

	ch.On("Close").Return(errors.New("canal já fechado"))
	assert.EqualError(t, p.Close(), "canal já fechado")
}
