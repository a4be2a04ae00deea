package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimespan(t *testing.T) {
	ts := Timespan{Start: "20141020", End: "20141120", Levels: []string{"USA", "", "Reno"}}

	assert.True(t, ts.Contains("20141020"))
	assert.True(t, ts.Contains("20141120"))
	assert.True(t, ts.Contains("20141101"))
	assert.False(t, ts.Contains("20141019"))
	assert.False(t, ts.Contains("20141121"))

	assert.Equal(t, 3, ts.Depth())
	assert.Equal(t, "20141020-20141120 [USA >  > Reno]", ts.String())

	assert.True(t, ts.Overlaps(Timespan{Start: "20141120", End: "20141130"}))
	assert.True(t, ts.Overlaps(Timespan{Start: "20141001", End: "20141020"}))
	assert.False(t, ts.Overlaps(Timespan{Start: "20141121", End: "20141130"}))
}
