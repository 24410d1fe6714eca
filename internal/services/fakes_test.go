package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/db"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/db/model"
	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// fakeDB is an in-memory DbInterface with the same conditional-update
// semantics as the mongo implementation.
type fakeDB struct {
	mu            sync.Mutex
	vaults        map[string]*model.VaultDocument
	pols          map[string]*model.ProofOfLifeDocument
	beneficiaries map[string]*model.BeneficiaryDocument
	admin         *model.AdminStateDocument
	grants        map[string]*model.AccessGrantDocument
	stats         model.VaultStatsDocument
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		vaults:        make(map[string]*model.VaultDocument),
		pols:          make(map[string]*model.ProofOfLifeDocument),
		beneficiaries: make(map[string]*model.BeneficiaryDocument),
		grants:        make(map[string]*model.AccessGrantDocument),
	}
}

func (f *fakeDB) Ping(ctx context.Context) error { return nil }

func (f *fakeDB) SaveNewVault(ctx context.Context, vault *model.VaultDocument, pol *model.ProofOfLifeDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vaults[vault.ID]; ok {
		return &db.DuplicateKeyError{Key: vault.ID, Message: "vault already exists"}
	}
	v := *vault
	p := *pol
	f.vaults[vault.ID] = &v
	f.pols[pol.VaultID] = &p
	return nil
}

func (f *fakeDB) GetVault(ctx context.Context, vaultID string) (*model.VaultDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return nil, &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	v := *vault
	return &v, nil
}

func (f *fakeDB) UpdateVaultState(
	ctx context.Context, vaultID string,
	qualifiedPreviousStates []types.VaultState, newState types.VaultState,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok || !slices.Contains(qualifiedPreviousStates, vault.State) {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found or state not qualified"}
	}
	vault.State = newState
	return nil
}

func (f *fakeDB) AddToVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found"}
	}
	vault.Balance += amount
	return nil
}

func (f *fakeDB) SubtractFromVaultBalance(ctx context.Context, vaultID string, amount uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vault, ok := f.vaults[vaultID]
	if !ok || vault.Balance < amount {
		return &db.NotFoundError{Key: vaultID, Message: "vault not found or balance insufficient"}
	}
	vault.Balance -= amount
	return nil
}

func (f *fakeDB) GetProofOfLife(ctx context.Context, vaultID string) (*model.ProofOfLifeDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pol, ok := f.pols[vaultID]
	if !ok {
		return nil, &db.NotFoundError{Key: vaultID, Message: "proof of life not found"}
	}
	p := *pol
	return &p, nil
}

func (f *fakeDB) ResetProofOfLife(ctx context.Context, vaultID string, lastCheckIn, deadline, graceEnd uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pol, ok := f.pols[vaultID]
	if !ok {
		return &db.NotFoundError{Key: vaultID, Message: "proof of life not found"}
	}
	pol.LastCheckIn = lastCheckIn
	pol.Deadline = deadline
	pol.GraceEnd = graceEnd
	pol.Status = types.PolActive
	return nil
}

func (f *fakeDB) UpdateProofOfLifeStatus(
	ctx context.Context, vaultID string,
	qualifiedPreviousStatuses []types.PolStatus, newStatus types.PolStatus,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	pol, ok := f.pols[vaultID]
	if !ok || !slices.Contains(qualifiedPreviousStatuses, pol.Status) {
		return &db.NotFoundError{Key: vaultID, Message: "proof of life not found or status not qualified"}
	}
	pol.Status = newStatus
	return nil
}

func (f *fakeDB) FindApproachingDeadline(ctx context.Context, tipHeight, warningWindow, limit uint64) ([]model.ProofOfLifeDocument, error) {
	return f.findPols(func(pol *model.ProofOfLifeDocument) bool {
		return pol.Status == types.PolActive &&
			pol.Deadline > tipHeight && pol.Deadline <= tipHeight+warningWindow
	}, limit), nil
}

func (f *fakeDB) FindPastDeadline(ctx context.Context, tipHeight, limit uint64) ([]model.ProofOfLifeDocument, error) {
	return f.findPols(func(pol *model.ProofOfLifeDocument) bool {
		return (pol.Status == types.PolActive || pol.Status == types.PolWarning) &&
			pol.Deadline <= tipHeight && pol.GraceEnd > tipHeight
	}, limit), nil
}

func (f *fakeDB) FindPastGraceEnd(ctx context.Context, tipHeight, limit uint64) ([]model.ProofOfLifeDocument, error) {
	return f.findPols(func(pol *model.ProofOfLifeDocument) bool {
		return pol.Status != types.PolEligible && pol.GraceEnd <= tipHeight
	}, limit), nil
}

func (f *fakeDB) findPols(match func(*model.ProofOfLifeDocument) bool, limit uint64) []model.ProofOfLifeDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.ProofOfLifeDocument
	for _, pol := range f.pols {
		if match(pol) && uint64(len(result)) < limit {
			result = append(result, *pol)
		}
	}
	return result
}

func (f *fakeDB) SaveNewBeneficiary(ctx context.Context, beneficiary *model.BeneficiaryDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.beneficiaries[beneficiary.ID]; ok {
		return &db.DuplicateKeyError{Key: beneficiary.ID, Message: "beneficiary index already exists"}
	}
	b := *beneficiary
	f.beneficiaries[beneficiary.ID] = &b
	return nil
}

func (f *fakeDB) GetBeneficiary(ctx context.Context, vaultID string, index uint32) (*model.BeneficiaryDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	beneficiary, ok := f.beneficiaries[model.BeneficiaryID(vaultID, index)]
	if !ok {
		return nil, &db.NotFoundError{Key: model.BeneficiaryID(vaultID, index), Message: "beneficiary not found"}
	}
	b := *beneficiary
	return &b, nil
}

func (f *fakeDB) GetBeneficiariesByVault(ctx context.Context, vaultID string) ([]model.BeneficiaryDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.BeneficiaryDocument
	for _, b := range f.beneficiaries {
		if b.VaultID == vaultID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

func (f *fakeDB) MarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32, claimedAmount uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	beneficiary, ok := f.beneficiaries[model.BeneficiaryID(vaultID, index)]
	if !ok || beneficiary.Claimed {
		return &db.NotFoundError{Key: model.BeneficiaryID(vaultID, index), Message: "beneficiary not found or already claimed"}
	}
	beneficiary.Claimed = true
	beneficiary.ClaimedAmount = claimedAmount
	return nil
}

func (f *fakeDB) UnmarkBeneficiaryClaimed(ctx context.Context, vaultID string, index uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if beneficiary, ok := f.beneficiaries[model.BeneficiaryID(vaultID, index)]; ok {
		beneficiary.Claimed = false
		beneficiary.ClaimedAmount = 0
	}
	return nil
}

func (f *fakeDB) InitAdminState(ctx context.Context, adminID string, protocolFeeBps uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin == nil {
		f.admin = &model.AdminStateDocument{
			ID:             model.AdminStateID,
			AdminID:        adminID,
			ProtocolFeeBps: protocolFeeBps,
		}
	}
	return nil
}

func (f *fakeDB) GetAdminState(ctx context.Context) (*model.AdminStateDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin == nil {
		return nil, &db.NotFoundError{Key: model.AdminStateID, Message: "admin state not initialized"}
	}
	state := *f.admin
	state.PausedVaults = slices.Clone(f.admin.PausedVaults)
	return &state, nil
}

func (f *fakeDB) SetProtocolFee(ctx context.Context, bps uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin == nil {
		return &db.NotFoundError{Key: model.AdminStateID, Message: "admin state not initialized"}
	}
	f.admin.ProtocolFeeBps = bps
	return nil
}

func (f *fakeDB) AddPausedVault(ctx context.Context, vaultID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin != nil && !slices.Contains(f.admin.PausedVaults, vaultID) {
		f.admin.PausedVaults = append(f.admin.PausedVaults, vaultID)
	}
	return nil
}

func (f *fakeDB) RemovePausedVault(ctx context.Context, vaultID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.admin != nil {
		f.admin.PausedVaults = slices.DeleteFunc(f.admin.PausedVaults, func(id string) bool {
			return id == vaultID
		})
	}
	return nil
}

func (f *fakeDB) SaveAccessGrant(ctx context.Context, grant *model.AccessGrantDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := *grant
	f.grants[grant.ID] = &g
	return nil
}

func (f *fakeDB) GetAccessGrant(ctx context.Context, vaultID, grantee string) (*model.AccessGrantDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	grant, ok := f.grants[model.AccessGrantID(vaultID, grantee)]
	if !ok {
		return nil, &db.NotFoundError{Key: model.AccessGrantID(vaultID, grantee), Message: "access grant not found"}
	}
	g := *grant
	return &g, nil
}

func (f *fakeDB) IncrementVaultStats(ctx context.Context, vaultsDelta, lockedDelta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.TotalVaults = uint64(int64(f.stats.TotalVaults) + vaultsDelta)
	f.stats.TotalLocked = uint64(int64(f.stats.TotalLocked) + lockedDelta)
	return nil
}

func (f *fakeDB) GetVaultStats(ctx context.Context) (*model.VaultStatsDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := f.stats
	stats.ID = model.VaultStatsID
	return &stats, nil
}

// fakeLedger tracks custody balances as signed values and supports
// injected failures keyed by custody identity.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[types.CustodyID]int64
	failTo   map[types.CustodyID]error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: make(map[types.CustodyID]int64),
		failTo:   make(map[types.CustodyID]error),
	}
}

func (l *fakeLedger) Transfer(ctx context.Context, from, to types.CustodyID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, ok := l.failTo[to]; ok {
		return err
	}
	l.balances[from] -= int64(amount)
	l.balances[to] += int64(amount)
	return nil
}

func (l *fakeLedger) balance(id types.CustodyID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

func (l *fakeLedger) failTransfersTo(id types.CustodyID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failTo[id] = fmt.Errorf("injected transfer failure to %s", id)
}

// fakeChain serves a settable tip height.
type fakeChain struct {
	mu     sync.Mutex
	height uint64
}

func (c *fakeChain) TipHeight() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height, nil
}

func (c *fakeChain) setHeight(h uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height = h
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []*types.VaultEvent
}

func (p *fakePublisher) PublishVaultEvent(ctx context.Context, event *types.VaultEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []types.EventTypes {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]types.EventTypes, len(p.events))
	for i, e := range p.events {
		result[i] = e.Type
	}
	return result
}
