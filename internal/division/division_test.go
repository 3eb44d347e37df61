package division

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     Division
		found    bool
	}{
		{"Kanakapura", South, true},
		{"kanakapura", South, true},
		{"  Whitefield  ", North, true},
		{"HSR Layout", South, true},
		{"Sarjapur", East, true},
		{"Tumkur Road", West, true},
		{"south", South, true},
		{"Atlantis", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, ok := FromLocation(tt.location)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in    string
		want  Division
		found bool
	}{
		{"North", North, true},
		{"south", South, true},
		{"EAST", East, true},
		{" west ", West, true},
		{"central", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.found, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRegions(t *testing.T) {
	rs := Regions()
	require.Len(t, rs, 4)
	assert.Equal(t, "North Bangalore", rs[0].Name)
	assert.Equal(t, "South Bangalore", rs[1].Name)

	for _, r := range rs {
		b := r.JSONBounds()
		assert.Greater(t, b.North, b.South, r.Name)
		assert.Greater(t, b.East, b.West, r.Name)
	}
}

func TestRegionLookup(t *testing.T) {
	r, ok := Region(South)
	require.True(t, ok)

	b := r.JSONBounds()
	assert.Equal(t, 12.95, b.North)
	assert.Equal(t, 12.7, b.South)
	assert.Equal(t, 77.65, b.East)
	assert.Equal(t, 77.45, b.West)

	_, ok = Region(Division("Central"))
	assert.False(t, ok)
}
