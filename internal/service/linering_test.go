package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineRing(t *testing.T) {
	r := newLineRing(3)
	require.Nil(t, r.lastN(10))

	r.add("line1")
	r.add("")
	r.add("line2")
	require.Equal(t, []string{"line1", "line2"}, r.lastN(10))

	r.add("line3")
	require.Equal(t, []string{"line1", "line2", "line3"}, r.lastN(10))

	// wrap
	r.add("line4")
	require.Equal(t, []string{"line2", "line3", "line4"}, r.lastN(10))
	require.Equal(t, []string{"line3", "line4"}, r.lastN(2))
	require.Nil(t, r.lastN(0))
}
