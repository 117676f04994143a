package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleColumnLine(t *testing.T) {
	s := New()

	assert.True(t, s.ToggleColumnLine(3))
	assert.True(t, s.ToggleColumnLine(1))
	assert.True(t, s.ToggleColumnLine(5))
	assert.Equal(t, []int{1, 3, 5}, s.ColumnLines())

	m, ok := s.EffectiveColumnLine()
	assert.True(t, ok)
	assert.Equal(t, 1, m)

	assert.False(t, s.ToggleColumnLine(1))
	assert.False(t, s.IsColumnLineSelected(1))
	m, _ = s.EffectiveColumnLine()
	assert.Equal(t, 3, m)
}

func TestToggleRowLine(t *testing.T) {
	tests := []struct {
		name      string
		toggles   []int
		wantIndex int
		wantOK    bool
	}{
		{"Select", []int{4}, 4, true},
		{"Same line clears", []int{4, 4}, 0, false},
		{"Other line replaces", []int{4, 7}, 7, true},
		{"Replace then clear", []int{4, 7, 7}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			for _, i := range tt.toggles {
				s.ToggleRowLine(i)
			}
			idx, ok := s.RowCutIndex()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIndex, idx)
		})
	}
}

func TestRowCutCount(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.RowCutCount())

	s.ToggleRowLine(0)
	assert.Equal(t, 1, s.RowCutCount())

	s.ToggleRowLine(4)
	assert.Equal(t, 5, s.RowCutCount())
}

func TestClearAndReset(t *testing.T) {
	s := New()
	s.ToggleColumnLine(2)
	s.ToggleRowLine(1)
	s.SetInverted(true)
	assert.True(t, s.HasPending())

	s.Clear()
	assert.False(t, s.HasPending())
	assert.Empty(t, s.ColumnLines())
	assert.True(t, s.Inverted())

	s.ToggleColumnLine(0)
	s.Reset()
	assert.False(t, s.HasPending())
	assert.False(t, s.Inverted())

	_, ok := s.EffectiveColumnLine()
	assert.False(t, ok)
}

func TestToggleInverted(t *testing.T) {
	s := New()
	assert.True(t, s.ToggleInverted())
	assert.False(t, s.ToggleInverted())
}

func TestClampTo(t *testing.T) {
	s := New()
	for _, i := range []int{-1, 0, 2, 3, 8} {
		s.ToggleColumnLine(i)
	}

	s.ClampTo(4)
	assert.Equal(t, []int{0, 2}, s.ColumnLines())

	s.ClampTo(1)
	assert.Empty(t, s.ColumnLines())
}
