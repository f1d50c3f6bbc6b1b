// Package params persists the user's dashboard parameters: selected pair and
// ATR multipliers.
package params

// Keys used by the typed helpers.
const (
	KeySLMultiplier = "sl_mult"
	KeyTPMultiplier = "tp_mult"
	KeyPair         = "pair"
)

// Store is a string key/value store that outlives a single request.
// Get never fails: a missing key or backend error yields def.
type Store interface {
	Get(key, def string) string
	Set(key, value string) error
	Close() error
}
