package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitySet_Basics(t *testing.T) {
	s := NewCapabilitySet("translate", "summarize", "translate")
	assert.Len(t, s, 2)
	assert.True(t, s.Has("translate"))
	assert.False(t, s.Has("math"))
	assert.Equal(t, []string{"summarize", "translate"}, s.Tags())
}

func TestCapabilitySet_Intersects(t *testing.T) {
	s := NewCapabilitySet("translate", "summarize")
	assert.True(t, s.Intersects(NewCapabilitySet("translate", "math")))
	assert.False(t, s.Intersects(NewCapabilitySet("math")))
	assert.False(t, s.Intersects(NewCapabilitySet()))
	assert.False(t, NewCapabilitySet().Intersects(s))
}

func TestCapabilitySet_ContainsAll(t *testing.T) {
	s := NewCapabilitySet("translate", "summarize")
	assert.True(t, s.ContainsAll(NewCapabilitySet("translate")))
	assert.True(t, s.ContainsAll(NewCapabilitySet()))
	assert.False(t, s.ContainsAll(NewCapabilitySet("translate", "math")))
}

func TestCapabilitySet_CloneIsIndependent(t *testing.T) {
	s := NewCapabilitySet("translate")
	c := s.Clone()
	c["math"] = struct{}{}
	assert.False(t, s.Has("math"))
	assert.True(t, c.Has("translate"))
}
