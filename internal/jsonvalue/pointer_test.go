package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupKeepsKeyOrder(t *testing.T) {
	doc, err := Parse([]byte(`{"5":{"10":1,"2":"x","3":[7,{"4":"y"}]},"a/b":{"c~d":true}}`))
	require.NoError(t, err)

	v, err := Lookup(doc, "/5")
	require.NoError(t, err)
	require.Equal(t, `{"10":1,"2":"x","3":[7,{"4":"y"}]}`, string(Marshal(v)))

	v, err = Lookup(doc, "/5/3/1/4")
	require.NoError(t, err)
	require.Equal(t, Text("y"), v)

	v, err = Lookup(doc, "/a~1b/c~0d")
	require.NoError(t, err)
	require.Equal(t, Bool(true), v)

	v, err = Lookup(doc, "")
	require.NoError(t, err)
	require.Same(t, doc, v)
}

func TestLookupMisses(t *testing.T) {
	doc, err := Parse([]byte(`{"1":[1,2],"2":"x"}`))
	require.NoError(t, err)

	for _, ptr := range []string{"/9", "/1/2", "/1/-1", "/1/x", "/2/0", "1"} {
		_, err := Lookup(doc, ptr)
		require.ErrorIs(t, err, ErrPointer, "pointer %q", ptr)
	}
}
