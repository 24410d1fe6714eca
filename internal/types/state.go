package types

// Enum values for Vault State
type VaultState string

const (
	StateActive      VaultState = "ACTIVE"
	StateWarning     VaultState = "WARNING"
	StateGracePeriod VaultState = "GRACE_PERIOD"
	StateExpired     VaultState = "EXPIRED"
	StateTriggered   VaultState = "TRIGGERED"
	StateInherited   VaultState = "INHERITED"
)

func (s VaultState) String() string {
	return string(s)
}

// IsTriggered reports whether the vault has entered inheritance execution.
// Once triggered the vault configuration and beneficiary set are frozen.
func (s VaultState) IsTriggered() bool {
	return s == StateTriggered || s == StateInherited
}

// QualifiedStatesForCheckIn returns the qualified current states for an owner check-in.
// A check-in from any of these resets the vault back to ACTIVE.
func QualifiedStatesForCheckIn() []VaultState {
	return []VaultState{StateActive, StateWarning, StateGracePeriod, StateExpired}
}

// QualifiedStatesForTrigger returns the qualified current states for inheritance trigger.
// Eligibility itself is decided by proof-of-life evaluation, not by these states;
// they only guard against double triggering.
func QualifiedStatesForTrigger() []VaultState {
	return []VaultState{StateActive, StateWarning, StateGracePeriod, StateExpired}
}

// QualifiedStatesForWarning returns the qualified current states for the
// deadline-approaching mirror transition.
func QualifiedStatesForWarning() []VaultState {
	return []VaultState{StateActive}
}

// QualifiedStatesForGracePeriod returns the qualified current states for the
// grace-period mirror transition.
func QualifiedStatesForGracePeriod() []VaultState {
	return []VaultState{StateActive, StateWarning}
}

// QualifiedStatesForExpired returns the qualified current states for the
// grace-elapsed mirror transition.
func QualifiedStatesForExpired() []VaultState {
	return []VaultState{StateActive, StateWarning, StateGracePeriod}
}

// QualifiedStatesForBeneficiaryAdd returns the states in which the owner may
// still edit the beneficiary set. Past EXPIRED the set is frozen for trigger.
func QualifiedStatesForBeneficiaryAdd() []VaultState {
	return []VaultState{StateActive, StateWarning, StateGracePeriod}
}

// PolStatus is the proof-of-life status mirror, derived from deadline
// arithmetic against the current tick.
type PolStatus string

const (
	PolActive      PolStatus = "ACTIVE"
	PolWarning     PolStatus = "WARNING"
	PolGracePeriod PolStatus = "GRACE_PERIOD"
	PolEligible    PolStatus = "ELIGIBLE"
)

func (s PolStatus) String() string {
	return string(s)
}

// CustodyID identifies who holds funds on the ledger side. It is opaque to
// the core; only equality matters.
type CustodyID string

func (c CustodyID) String() string {
	return string(c)
}

// VaultCustody returns the custody identity holding a vault's balance.
func VaultCustody(vaultID string) CustodyID {
	return CustodyID("vault:" + vaultID)
}
