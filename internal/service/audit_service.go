package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/observability"
)

const lastLoginKeyPrefix = "audit:last_login:"

// AuditService consumes security events: structured audit logging, metric
// counters and a last-login marker in Redis. Handler failures are contained
// here; they never affect the request that emitted the event.
type AuditService struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	redis      *redis.Client
	logger     *zap.Logger
}

// NewAuditService constructs the service. The Redis client may be nil.
func NewAuditService(dispatcher events.Dispatcher, metrics *observability.Metrics, redisClient *redis.Client, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, metrics: metrics, redis: redisClient, logger: logger}
}

// RegisterHandlers subscribes the audit handlers to all security events.
func (s *AuditService) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventLoginSucceeded,
		events.EventLoginFailed,
		events.EventTokenRefreshed,
		events.EventPasswordChanged,
		events.EventUserDeleted,
	} {
		s.dispatcher.Subscribe(eventType, s.handle)
	}
}

func (s *AuditService) handle(ctx context.Context, event events.Event) error {
	s.logger.Info("audit event",
		zap.String("event", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("user_id", event.UserID),
		zap.String("email", event.Email),
		zap.Any("payload", event.Payload),
	)

	if s.metrics != nil {
		s.metrics.RecordAuthEvent(string(event.Type))
	}

	if event.Type == events.EventLoginSucceeded && s.redis != nil && event.UserID != "" {
		key := fmt.Sprintf("%s%s", lastLoginKeyPrefix, event.UserID)
		if err := s.redis.Set(ctx, key, event.Timestamp.Format(time.RFC3339), 0).Err(); err != nil {
			s.logger.Warn("failed to record last login", zap.Error(err))
		}
	}
	return nil
}
