package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2000, time.February, 29)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2000-02-29"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d))

	assert.Error(t, json.Unmarshal([]byte(`"29/02/2000"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`null`), &back))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1985, 7, 4, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "1985-07-04", d.String())

	require.NoError(t, d.Scan([]byte("1985-07-05")))
	assert.Equal(t, "1985-07-05", d.String())

	require.NoError(t, d.Scan("1985-07-06T00:00:00Z"))
	assert.Equal(t, "1985-07-06", d.String())

	assert.Error(t, d.Scan(42))
}

func TestDate_Value(t *testing.T) {
	v, err := NewDate(2024, 3, 9).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", v)
}
