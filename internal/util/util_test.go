package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "ULIDs from one process sort by creation")
	assert.True(t, IsValidULID(a))
	assert.False(t, IsValidULID("not-a-ulid"))
}

func TestNullStrings(t *testing.T) {
	assert.False(t, StringToNullString("").Valid)
	ns := StringToNullString("x")
	assert.True(t, ns.Valid)
	assert.Equal(t, "x", NullStringToString(ns))
	assert.Equal(t, "", NullStringToString(StringToNullString("")))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c\\d`, EscapeLike(`c\d`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
