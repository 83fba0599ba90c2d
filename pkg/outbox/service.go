package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/logger"
)

type inserter interface {
	Insert(tx *gorm.DB, event models.OutboxEvent) error
}

// Service appends domain events to the outbox table.
type Service struct {
	repo inserter
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, logg: logg, now: time.Now}
}

// Emit inserts event with tx. The row only becomes visible to the publisher
// when the caller's transaction commits, and disappears with a rollback.
func (s *Service) Emit(ctx context.Context, tx *gorm.DB, event DomainEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if err := event.validate(); err != nil {
		return err
	}
	env, err := event.envelope(s.now())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := s.repo.Insert(tx, models.OutboxEvent{
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"event_id":     env.EventID,
		"event_type":   event.EventType,
		"aggregate_id": event.AggregateID.String(),
	}), "outbox.event_queued")
	return nil
}
