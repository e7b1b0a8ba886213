package consumers

import (
	"context"
	"log/slog"

	"boxoffice/internal/config"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

type ConsumerService struct {
	nats          *messaging.NATSClient
	handlers      *Handlers
	subscriptions []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	return &ConsumerService{
		nats:     natsClient,
		handlers: NewHandlers(),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subjects := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventBookingCreated, cs.handlers.HandleBookingCreated},
		{models.EventBookingCancelled, cs.handlers.HandleBookingCancelled},
	}

	for _, s := range subjects {
		sub, err := cs.nats.SubscribeQueue(s.subject, queueGroup, s.handler)
		if err != nil {
			return err
		}
		cs.subscriptions = append(cs.subscriptions, sub)
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	created, cancelled := cs.handlers.Counts()
	slog.Info("Processed booking events", "created", created, "cancelled", cancelled)

	// durable subscriptions are kept so a restarted consumer resumes where it stopped
	for _, sub := range cs.subscriptions {
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return nil
}
