// Package state provides a lightweight keyed session store for Telegram bots.
// It is intentionally domain-agnostic so it can be reused across bots: values
// are opaque to the store, and every call for a given user is serialized while
// calls for different users proceed in parallel.
package state
