package consumers

import (
	"context"
	"fmt"

	"github.com/schoolhub/schoolhub-backend/internal/staff/repository"
	"github.com/schoolhub/schoolhub-backend/pkg/logger"
	"github.com/schoolhub/schoolhub-backend/pkg/messaging"
)

// UserConsumer keeps the local user cache in sync with the identity service
// so staff and attendance reads can join display names without a cross-
// service call.
type UserConsumer struct {
	consumer *messaging.Consumer
	cache    *repository.UserCacheRepository
	logger   *logger.Logger
}

// NewUserConsumer creates a consumer bound to the user events exchange
func NewUserConsumer(rmq *messaging.RabbitMQ, cache *repository.UserCacheRepository, log *logger.Logger) (*UserConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "staff-service.user-events", log)
	if err != nil {
		return nil, fmt.Errorf("failed to create user events consumer: %w", err)
	}

	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.*"); err != nil {
		return nil, fmt.Errorf("failed to subscribe to user events: %w", err)
	}

	uc := &UserConsumer{
		consumer: consumer,
		cache:    cache,
		logger:   log,
	}

	consumer.RegisterHandler(messaging.EventUserCreated, uc.handleUserCreated)
	consumer.RegisterHandler(messaging.EventUserUpdated, uc.handleUserUpdated)
	consumer.RegisterHandler(messaging.EventUserDeleted, uc.handleUserDeleted)

	return uc, nil
}

// Start begins consuming user events
func (c *UserConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

func (c *UserConsumer) handleUserCreated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserCreatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal user.created: %w", err)
	}

	err := c.cache.Upsert(ctx, &repository.CachedUser{
		UserID:   data.UserID,
		TenantID: data.TenantID,
		Email:    data.Email,
		Name:     data.Name,
		Role:     data.Role,
	})
	if err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Str("tenant_id", data.TenantID).
		Msg("user cached")

	return nil
}

func (c *UserConsumer) handleUserUpdated(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserUpdatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal user.updated: %w", err)
	}

	if err := c.cache.UpdateFields(ctx, data.UserID, data.Fields); err != nil {
		return err
	}

	c.logger.Debug().
		Str("user_id", data.UserID).
		Msg("cached user updated")

	return nil
}

func (c *UserConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserDeletedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("failed to unmarshal user.deleted: %w", err)
	}

	if err := c.cache.Delete(ctx, data.UserID); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("cached user removed")

	return nil
}
