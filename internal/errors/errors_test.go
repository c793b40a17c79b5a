package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	baseErr := fmt.Errorf("search request failed")

	ee := New(baseErr).
		Component("wikidata").
		Category(CategoryNetwork).
		Context("query", "eiffel tower").
		Build()

	assert.Equal(t, "search request failed", ee.Error())
	assert.Equal(t, "wikidata", ee.Component)
	assert.Equal(t, CategoryNetwork, ee.Category)
	assert.Equal(t, "eiffel tower", ee.GetContext()["query"])
	assert.True(t, Is(ee, baseErr), "enhanced error should unwrap to its cause")
}

func TestBuildDefaults(t *testing.T) {
	ee := Newf("boom %d", 42).Build()

	assert.Equal(t, ComponentUnknown, ee.Component)
	assert.Equal(t, CategoryGeneric, ee.Category)
	assert.Nil(t, ee.GetContext())
	assert.False(t, ee.Timestamp.IsZero())
}

func TestCategoryMatching(t *testing.T) {
	a := Newf("a").Category(CategoryNotFound).Build()
	b := Newf("b").Category(CategoryNotFound).Build()
	c := Newf("c").Category(CategoryNetwork).Build()

	require.True(t, Is(a, b), "same category should match")
	require.False(t, Is(a, c), "different category should not match")
}

func TestContextCopyIsolation(t *testing.T) {
	ee := Newf("x").Context("k", "v").Build()

	ctx := ee.GetContext()
	ctx["k"] = "mutated"

	assert.Equal(t, "v", ee.GetContext()["k"])
}
