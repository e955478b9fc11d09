package domain

import (
	"encoding/hex"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"

	m "pcmark.dev/pkg/pcmark/internal/model"
)

// IDGenerator returns a fresh element identifier.
type IDGenerator func() string

// NewElementID returns the element id prefix followed by the 32 hex digits
// of a random v4 UUID.
func NewElementID() string {
	id := uuid.New()
	return m.ElementIDPrefix + hex.EncodeToString(id[:])
}

// SequentialIDs returns a deterministic generator yielding
// unique_id_<prefix>1, unique_id_<prefix>2 and so on.
func SequentialIDs(prefix string) IDGenerator {
	var n atomic.Int64

	return func() string {
		return m.ElementIDPrefix + prefix + strconv.FormatInt(n.Add(1), 10)
	}
}
