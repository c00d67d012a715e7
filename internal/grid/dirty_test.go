package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirtyTrackerStartsFullyDirty(t *testing.T) {
	d := NewDirtyTracker(4)
	lines, full := d.DirtyLines()
	assert.True(t, full)
	assert.Len(t, lines, 4)
}

func TestDirtyTrackerClearThenMarkLine(t *testing.T) {
	d := NewDirtyTracker(4)
	d.Clear()
	lines, full := d.DirtyLines()
	assert.False(t, full)
	assert.Empty(t, lines)

	d.MarkLine(2)
	lines, full = d.DirtyLines()
	assert.False(t, full)
	assert.Equal(t, []int{2}, lines)
	min, max, ok := d.Bounds()
	assert.True(t, ok)
	assert.Equal(t, 2, min)
	assert.Equal(t, 2, max)
}

func TestDirtyTrackerMarkRangeTracksBounds(t *testing.T) {
	d := NewDirtyTracker(10)
	d.Clear()
	d.MarkRange(3, 6)
	min, max, ok := d.Bounds()
	assert.True(t, ok)
	assert.Equal(t, 3, min)
	assert.Equal(t, 6, max)
	assert.True(t, d.IsDirty(4))
	assert.False(t, d.IsDirty(7))
}

func TestDirtyTrackerRequestFullRedraw(t *testing.T) {
	d := NewDirtyTracker(5)
	d.Clear()
	d.RequestFullRedraw()
	assert.True(t, d.IsDirty(0))
	assert.True(t, d.IsDirty(4))
	_, full := d.DirtyLines()
	assert.True(t, full)
}

func TestDirtyTrackerIgnoresOutOfRange(t *testing.T) {
	d := NewDirtyTracker(3)
	d.Clear()
	d.MarkLine(-1)
	d.MarkLine(99)
	_, _, ok := d.Bounds()
	assert.False(t, ok)
}
