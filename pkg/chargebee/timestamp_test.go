package chargebee_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chargekit/pkg/chargebee"
)

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes epoch seconds", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`1467274940`), &ts))
		assert.Equal(t, time.Date(2016, 6, 30, 8, 22, 20, 0, time.UTC), ts.Time)
	})

	t.Run("decodes quoted epoch seconds", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"1467274940"`), &ts))
		assert.Equal(t, time.Date(2016, 6, 30, 8, 22, 20, 0, time.UTC), ts.Time)
	})

	t.Run("decodes RFC3339 strings", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2016-06-30T08:22:20Z"`), &ts))
		assert.Equal(t, time.Date(2016, 6, 30, 8, 22, 20, 0, time.UTC), ts.Time)
	})

	t.Run("decodes space-separated date strings", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`"2016-06-30 08:22:20"`), &ts))
		assert.Equal(t, time.Date(2016, 6, 30, 8, 22, 20, 0, time.UTC), ts.Time)
	})

	t.Run("null decodes to zero value", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
		assert.True(t, ts.IsZero())
		assert.Nil(t, ts.TimePtr())
	})

	t.Run("empty string decodes to zero value", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		require.NoError(t, json.Unmarshal([]byte(`""`), &ts))
		assert.True(t, ts.IsZero())
	})

	t.Run("rejects unrecognized strings", func(t *testing.T) {
		t.Parallel()
		var ts chargebee.Timestamp
		assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &ts))
	})
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("encodes to epoch seconds", func(t *testing.T) {
		t.Parallel()
		ts := chargebee.NewTimestamp(time.Date(2016, 6, 30, 8, 22, 20, 0, time.UTC))
		data, err := json.Marshal(ts)
		require.NoError(t, err)
		assert.Equal(t, `1467274940`, string(data))
	})

	t.Run("zero value encodes to null", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(chargebee.Timestamp{})
		require.NoError(t, err)
		assert.Equal(t, `null`, string(data))
	})
}
