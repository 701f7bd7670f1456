package storage

// Package storage journals accepted orders so they survive restarts and can
// be exported. Journaling is best-effort from the intake pipeline's point of
// view: a failed append never blocks the customer-facing flow.
