package slot

import (
	"context"
	"errors"
)

// Slot is a single named, durable value holding the serialized cart. A slot
// that was never written reports ErrSlotEmpty.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Close() error
}

var ErrSlotEmpty = errors.New("slot is empty")
