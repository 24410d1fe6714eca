package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/observability/metrics"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/utils/poller"
)

// StartExpiryChecker launches the background scan that keeps proof-of-life
// status mirrors in step with the chain tip and emits reminder events.
// Trigger eligibility stays lazily evaluated on demand; the checker only
// maintains mirrors and notifications.
func (s *Service) StartExpiryChecker(ctx context.Context) {
	expiryCheckerPoller := poller.NewPoller(
		s.cfg.Poller.ExpiryCheckerPollingInterval,
		s.checkExpiry,
	)
	go expiryCheckerPoller.Start(ctx)
}

func (s *Service) checkExpiry(ctx context.Context) *types.Error {
	tip, terr := s.tipHeight()
	if terr != nil {
		return terr
	}
	limit := s.cfg.Poller.ExpiredVaultsLimit
	window := s.cfg.Vault.WarningWindow

	approaching, err := s.db.FindApproachingDeadline(ctx, tip, window, limit)
	if err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}
	for _, pol := range approaching {
		s.advanceMirror(ctx, pol.VaultID, tip,
			[]types.PolStatus{types.PolActive}, types.PolWarning,
			types.QualifiedStatesForWarning(), types.StateWarning,
			types.EventDeadlineApproaching)
	}

	pastDeadline, err := s.db.FindPastDeadline(ctx, tip, limit)
	if err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}
	for _, pol := range pastDeadline {
		s.advanceMirror(ctx, pol.VaultID, tip,
			[]types.PolStatus{types.PolActive, types.PolWarning}, types.PolGracePeriod,
			types.QualifiedStatesForGracePeriod(), types.StateGracePeriod,
			types.EventGraceEntered)
	}

	pastGrace, err := s.db.FindPastGraceEnd(ctx, tip, limit)
	if err != nil {
		return types.WrapError(types.InternalServiceError, err)
	}
	for _, pol := range pastGrace {
		s.advanceMirror(ctx, pol.VaultID, tip,
			[]types.PolStatus{types.PolActive, types.PolWarning, types.PolGracePeriod}, types.PolEligible,
			types.QualifiedStatesForExpired(), types.StateExpired,
			types.EventVaultExpired)
	}

	metrics.RecordVaultsPastDeadline(len(pastDeadline) + len(pastGrace))
	return nil
}

// advanceMirror moves one vault's status mirror forward. Qualified-state
// filters make the transition race-safe against concurrent check-ins and
// triggers; a lost race is skipped silently.
func (s *Service) advanceMirror(
	ctx context.Context,
	vaultID string,
	tip uint64,
	qualifiedStatuses []types.PolStatus,
	newStatus types.PolStatus,
	qualifiedStates []types.VaultState,
	newState types.VaultState,
	eventType types.EventTypes,
) {
	if err := s.db.UpdateProofOfLifeStatus(ctx, vaultID, qualifiedStatuses, newStatus); err != nil {
		if !db.IsNotFoundError(err) {
			log.Ctx(ctx).Error().Err(err).Str("vault_id", vaultID).
				Msg("failed to advance proof-of-life status")
		}
		return
	}
	if err := s.db.UpdateVaultState(ctx, vaultID, qualifiedStates, newState); err != nil {
		if !db.IsNotFoundError(err) {
			log.Ctx(ctx).Error().Err(err).Str("vault_id", vaultID).
				Msg("failed to advance vault state")
		}
		return
	}

	log.Ctx(ctx).Debug().
		Str("vault_id", vaultID).
		Stringer("new_status", newStatus).
		Uint64("height", tip).
		Msg("vault status mirror advanced")
	s.publishEvent(ctx, types.NewVaultEvent(eventType, vaultID, tip))
}
