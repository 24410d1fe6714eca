package ledgerclient

import (
	"context"

	"github.com/legacylock-io/sbtc-legacy-vault/internal/types"
)

// LedgerInterface is the custody transfer primitive. A transfer is
// all-or-nothing; it never partially applies.
type LedgerInterface interface {
	Transfer(ctx context.Context, from, to types.CustodyID, amount uint64) error
}
