package kernel_test

import (
	"sort"
	"testing"
	"time"

	"ordering/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create a valid unique UUID", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		assert.NoError(t, id1.Validate())
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", id1.String())
		assert.False(t, id1.IsEqual(id2))
	})

	t.Run("should sort by creation time", func(t *testing.T) {
		ids := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			ids = append(ids, kernel.NewUUID().String())
			time.Sleep(2 * time.Millisecond)
		}

		assert.True(t, sort.StringsAreSorted(ids), "v7 identifiers must be time-ordered: %v", ids)
	})
}

func TestUUIDFromString(t *testing.T) {
	validUUID := "550e8400-e29b-41d4-a716-446655440000"

	t.Run("should parse canonical and alternate forms", func(t *testing.T) {
		for _, input := range []string{
			validUUID,
			"{550e8400-e29b-41d4-a716-446655440000}",
			"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
			"550e8400e29b41d4a716446655440000",
		} {
			id, err := kernel.UUIDFromString(input)
			require.NoError(t, err, "input: %s", input)
			assert.Equal(t, validUUID, id.String())
			assert.NoError(t, id.Validate())
		}
	})

	t.Run("should return error for invalid input", func(t *testing.T) {
		for _, input := range []string{"", "not-a-uuid", "550e8400-e29b-41d4-a716"} {
			_, err := kernel.UUIDFromString(input)
			require.Error(t, err, "input: %s", input)
			assert.Contains(t, err.Error(), "invalid UUID format")
		}
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("should create UUID from valid bytes", func(t *testing.T) {
		raw := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
		id, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.Equal(t, raw.String(), id.String())
	})

	t.Run("should return error for invalid byte length", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{0x55, 0x0e, 0x84})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))

		require.Error(t, err)
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
	})
}

func TestUUID_Validate(t *testing.T) {
	t.Run("zero value is invalid", func(t *testing.T) {
		var id kernel.UUID
		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, id.Validate())
	})

	t.Run("constructed value is valid", func(t *testing.T) {
		assert.NoError(t, kernel.NewUUID().Validate())
	})
}

func TestUUID_Bytes(t *testing.T) {
	id := kernel.NewUUID()
	assert.Equal(t, id.String(), id.Bytes().String())
}
