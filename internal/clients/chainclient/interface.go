package chainclient

// ChainInterface supplies the current tick for all deadline arithmetic.
// Tick is the BTC block height; it only ever moves forward.
type ChainInterface interface {
	TipHeight() (uint64, error)
}
