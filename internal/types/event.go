package types

import "github.com/google/uuid"

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventVaultCreated         EventTypes = "legacyvault.v1.EventVaultCreated"
	EventCheckInRecorded      EventTypes = "legacyvault.v1.EventCheckInRecorded"
	EventDeadlineApproaching  EventTypes = "legacyvault.v1.EventDeadlineApproaching"
	EventGraceEntered         EventTypes = "legacyvault.v1.EventGraceEntered"
	EventVaultExpired         EventTypes = "legacyvault.v1.EventVaultExpired"
	EventInheritanceTriggered EventTypes = "legacyvault.v1.EventInheritanceTriggered"
	EventShareClaimed         EventTypes = "legacyvault.v1.EventShareClaimed"
)

// VaultEvent is the message published to the notification queue for every
// vault lifecycle transition. Consumers (reminder mailer, dashboards) are
// external to the core.
type VaultEvent struct {
	EventID   string     `json:"event_id"`
	Type      EventTypes `json:"type"`
	VaultID   string     `json:"vault_id"`
	Recipient string     `json:"recipient,omitempty"`
	Amount    uint64     `json:"amount,omitempty"`
	Height    uint64     `json:"height"`
}

func NewVaultEvent(eventType EventTypes, vaultID string, height uint64) *VaultEvent {
	return &VaultEvent{
		EventID: uuid.New().String(),
		Type:    eventType,
		VaultID: vaultID,
		Height:  height,
	}
}
