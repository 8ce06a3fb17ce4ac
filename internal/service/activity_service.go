package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ActivityService records audit entries and broadcasts schedule events. Both are
// fire-and-forget: a Redis failure is logged and never fails the write that caused it.
type ActivityService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewActivityService creates a new ActivityService.
func NewActivityService(rdb *redis.Client, log zerolog.Logger) *ActivityService {
	return &ActivityService{
		rdb: rdb,
		log: log.With().Str("component", "activity_service").Logger(),
	}
}

// Audit queues an audit entry for the audit worker. oldData/newData are marshalled to JSON.
func (s *ActivityService) Audit(ctx context.Context, actor, table string, recordID uuid.UUID, action model.AuditAction, oldData, newData interface{}) {
	if s == nil || s.rdb == nil {
		return
	}
	entry := model.AuditEntry{
		Actor:     actor,
		TableName: table,
		RecordID:  recordID,
		Action:    action,
		OldData:   rawJSON(oldData),
		NewData:   rawJSON(newData),
		CreatedAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		s.log.Error().Err(err).Str("table", table).Msg("Failed to marshal audit entry")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.AuditLogQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("table", table).Str("record_id", recordID.String()).Msg("Failed to queue audit entry")
	}
}

// Publish broadcasts a schedule event to every subscriber of the events channel.
func (s *ActivityService) Publish(ctx context.Context, evt model.ScheduleEvent) {
	if s == nil || s.rdb == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal schedule event")
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ScheduleEventsChannel(), payload).Err(); err != nil {
		s.log.Error().Err(err).Str("type", string(evt.Type)).Msg("Failed to publish schedule event")
	}
}

// Subscribe opens a subscription to the schedule events channel.
func (s *ActivityService) Subscribe(ctx context.Context) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ScheduleEventsChannel())
}

func rawJSON(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return nil
	}
	return b
}
