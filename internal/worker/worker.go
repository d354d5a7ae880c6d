package worker

import (
	"context"
	"log"

	"marketplace/internal/broker"
	"marketplace/internal/service"
)

// NotificationWorker consumes domain events and fans them out into
// notification rows
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, notifications *service.NotificationService) *NotificationWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(notifications.HandleOrderPlaced)
	eventHandler.OnOrderStatusChanged(notifications.HandleOrderStatusChanged)
	eventHandler.OnPromoCreated(notifications.HandlePromoCreated)

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}
