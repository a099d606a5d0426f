package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateUsesBusinessLocation(t *testing.T) {
	require.NoError(t, SetLocation("Europe/Helsinki"))
	t.Cleanup(func() { _ = SetLocation("") })

	d, err := ParseDate("2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Helsinki", d.Location().String())
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, "2024-03-05", Format(d, DateLayout))
}

func TestSetLocationRejectsUnknownZone(t *testing.T) {
	assert.Error(t, SetLocation("Mars/Olympus"))
	assert.Equal(t, "UTC", Location().String())
}

func TestStartOfDay(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	later := d.Add(13*time.Hour + 5*time.Minute)
	assert.True(t, StartOfDay(later).Equal(d))
}
