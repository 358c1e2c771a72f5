package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"gocabin/internal/domain"
)

// Chaves de roteamento dos eventos de reserva.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// BookingEvent é o payload publicado a cada escrita de reserva.
type BookingEvent struct {
	Type       string               `json:"type"`
	BookingID  string               `json:"booking_id"`
	GuestID    string               `json:"guest_id"`
	CabinID    string               `json:"cabin_id"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	Status     domain.BookingStatus `json:"status"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewBookingEvent monta o evento a partir da reserva.
func NewBookingEvent(eventType string, b domain.Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		GuestID:    b.GuestID,
		CabinID:    b.CabinID,
		StartDate:  b.StartDate.Format(domain.DateLayout),
		EndDate:    b.EndDate.Format(domain.DateLayout),
		Status:     b.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher publica eventos de domínio.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
	Close() error
}

// NopPublisher descarta os eventos (usado quando RABBITMQ_URL não está definido).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// Channel é o subconjunto de *amqp.Channel usado na publicação.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publica JSON num exchange topic do RabbitMQ.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
}

// NewAMQPPublisherWithChannel publica num canal já aberto; o exchange deve existir.
func NewAMQPPublisherWithChannel(ch Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// NewAMQPPublisher conecta ao RabbitMQ e declara o exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish serializa v em JSON e publica com a chave informada.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close fecha o canal e a conexão.
func (p *AMQPPublisher) Close() error {
	var err error
	if p.ch != nil {
		err = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return err
}
