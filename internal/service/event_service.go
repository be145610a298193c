package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/internship-api/internal/models"
	"github.com/noah-isme/internship-api/pkg/jobs"
)

const eventJobType = "domain_event"

type eventPublisher interface {
	Publish(ctx context.Context, eventType, key, actorID string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, string, interface{}) {}

type eventQueue interface {
	Enqueue(job jobs.Job) error
}

type eventProducer interface {
	Publish(ctx context.Context, eventType, key string, value interface{}) error
}

// EventService hands domain events to the background queue. Publishing never fails an operation.
type EventService struct {
	queue   eventQueue
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewEventService constructs an EventService. A nil queue disables publishing.
func NewEventService(queue eventQueue, metrics *MetricsService, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{queue: queue, metrics: metrics, logger: logger, now: time.Now}
}

// Publish enqueues an event keyed by its aggregate id.
func (s *EventService) Publish(ctx context.Context, eventType, key, actorID string, data interface{}) {
	if s == nil || s.queue == nil {
		return
	}
	event := models.DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		ActorID:    actorID,
		OccurredAt: s.now().UTC(),
		Data:       data,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: eventJobType, Payload: event}); err != nil {
		s.metrics.RecordEvent(eventType, "dropped")
		s.logger.Warn("failed to enqueue domain event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
		return
	}
	s.metrics.RecordEvent(eventType, "queued")
}

// NewEventJobHandler returns the queue handler that writes events to the producer.
func NewEventJobHandler(producer eventProducer, metrics *MetricsService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.DomainEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
		}
		if err := producer.Publish(ctx, event.Type, event.Key, event); err != nil {
			metrics.RecordEvent(event.Type, "failed")
			return err
		}
		metrics.RecordEvent(event.Type, "published")
		return nil
	}
}
