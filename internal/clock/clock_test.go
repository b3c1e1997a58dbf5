package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillis(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return fixed }
	defer func() { NowFunc = time.Now }()

	assert.Equal(t, fixed.UnixMilli(), Millis())
	assert.True(t, Time(Millis()).Equal(fixed))
	assert.True(t, Time(0).IsZero())
}
