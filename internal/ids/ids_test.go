package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestNew_SortableAndParsable(t *testing.T) {
	ts := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	a := New(ts)
	b := New(ts)
	require.Less(t, a, b)

	id, err := ulid.Parse(a)
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(ts), id.Time())
}
