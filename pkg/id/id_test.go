package id

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUIDFromString(t *testing.T) {
	a := UUIDFromString("simulate-0")
	assert.Equal(t, a, UUIDFromString("simulate-0"))
	assert.NotEqual(t, a, UUIDFromString("simulate-1"))

	u := uuid.FromStringOrNil(a)
	assert.Equal(t, byte(3), u.Version())
	assert.Equal(t, byte(uuid.VariantRFC4122), u.Variant())
}

func TestGenTraceID(t *testing.T) {
	u := uuid.FromStringOrNil(GenTraceID())
	assert.Equal(t, byte(4), u.Version())
	assert.NotEqual(t, GenTraceID(), GenTraceID())
}
