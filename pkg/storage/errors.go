package storage

import "github.com/cockroachdb/errors"

// ErrSlotNotFound names a slot id that does not exist in the store. No
// SlotStore operation currently returns it.
var ErrSlotNotFound = errors.New("slot not found")

// ErrConfigNotFound is returned when no config row exists for a pool id.
// The Bridge worker treats this the same as an inactive pool.
var ErrConfigNotFound = errors.New("pool config not found")

// ErrMessageNotFound names a msg_id that is not present (already deleted,
// or never existed). No Queue or DLQ operation currently returns it.
var ErrMessageNotFound = errors.New("message not found")
