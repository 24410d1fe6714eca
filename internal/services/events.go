package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// publishEvent pushes a lifecycle event to the notification queue. Event
// delivery is best effort: a queue failure never fails the operation that
// produced the event.
func (s *Service) publishEvent(ctx context.Context, event *types.VaultEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishVaultEvent(ctx, event); err != nil {
		metrics.RecordQueueSendError()
		log.Ctx(ctx).Error().
			Err(err).
			Str("vault_id", event.VaultID).
			Stringer("event_type", event.Type).
			Msg("failed to publish vault event")
	}
}
