package model

const (
	AdminStateCollection  = "admin_state"
	AccessGrantCollection = "access_grants"

	// AdminStateID is the _id of the singleton admin document.
	AdminStateID = "admin_state"
)

// AdminStateDocument is the process-wide administrative record: protocol
// fee, admin identity and the set of paused vault ids.
type AdminStateDocument struct {
	ID             string   `bson:"_id"` // Always "admin_state"
	AdminID        string   `bson:"admin_id"`
	ProtocolFeeBps uint32   `bson:"protocol_fee_bps"`
	PausedVaults   []string `bson:"paused_vaults"`
}

// AccessGrantDocument is a read-only capability granted by a vault owner to
// a professional (lawyer, executor), keyed by (vault id, grantee).
type AccessGrantDocument struct {
	ID            string `bson:"_id"` // "<vault_id>/<grantee>"
	VaultID       string `bson:"vault_id"`
	Grantee       string `bson:"grantee"`
	AccessLevel   uint8  `bson:"access_level"` // 1..3
	GrantedHeight uint64 `bson:"granted_height"`
}

func AccessGrantID(vaultID, grantee string) string {
	return vaultID + "/" + grantee
}
