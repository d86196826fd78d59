package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/algolab-dev/labrec-api/internal/dto"
	"github.com/algolab-dev/labrec-api/internal/models"
	"github.com/algolab-dev/labrec-api/internal/repository"
)

// ErrNotificationNotFound indicates the notification row does not exist or
// belongs to a different user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService stores review notifications and fans them out to NATS
// so other nodes (or future consumers) can pick them up.
type NotificationService interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
	List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID string) (dto.NotificationResponse, error)
}

type notificationService struct {
	repo      repository.NotificationRepository
	nats      *nats.Conn
	subject   string
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
}

type notificationEvent struct {
	Notification dto.NotificationResponse `json:"notification"`
	SentAt       time.Time                `json:"sent_at"`
}

// NewNotificationService constructs the service. The NATS connection may be
// nil, in which case notifications are persisted only.
func NewNotificationService(repo repository.NotificationRepository, natsConn *nats.Conn, subject string, validate *validator.Validate, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		nats:      natsConn,
		subject:   subject,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/algolab-dev/labrec-api/internal/service/notification"),
		logger:    logger.With().Str("component", "notification_service").Logger(),
	}
}

func (s *notificationService) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "notification.publish", trace.WithAttributes(
		attribute.String("notification.user_id", payload.UserID),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.NotificationResponse{}, err
	}

	notification := models.Notification{
		UserID: payload.UserID,
		Title:  s.sanitizer.Sanitize(payload.Title),
		Body:   s.sanitizer.Sanitize(payload.Body),
	}

	if err := s.repo.Create(ctx, &notification); err != nil {
		return dto.NotificationResponse{}, err
	}

	response := dto.NewNotificationResponse(notification)

	if s.nats != nil && s.subject != "" {
		event := notificationEvent{Notification: response, SentAt: time.Now()}
		if raw, err := json.Marshal(event); err == nil {
			if err := s.nats.Publish(s.subject, raw); err != nil {
				s.logger.Warn().Err(err).Msg("failed to publish notification to nats")
			}
		}
	}

	s.logger.Info().Str("notification_id", notification.ID).Str("user_id", notification.UserID).Msg("notification published")

	return response, nil
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return dto.NewNotificationResponseSlice(notifications), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (dto.NotificationResponse, error) {
	notification, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NotificationResponse{}, ErrNotificationNotFound
		}
		return dto.NotificationResponse{}, err
	}

	return dto.NewNotificationResponse(notification), nil
}
