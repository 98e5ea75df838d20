// Package order holds the order-collection state machine: it assembles service,
// location and phone fragments that arrive as independent Telegram updates into
// one CompletedOrder per user, and renders completed orders for dispatch.
//
// Nothing in this package blocks on network or disk. All operations are safe
// for concurrent use; calls for the same user are serialized by the session
// store, calls for different users run in parallel.
package order
