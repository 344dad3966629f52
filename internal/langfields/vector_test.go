package langfields

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorComposition(t *testing.T) {
	v := Vector{Config: "simple", Terms: []Term{
		{Text: "alpha", Weight: WeightA},
		{Text: "beta", Weight: WeightB},
	}}

	expr := v.Expr()
	assert.Equal(t,
		"setweight(to_tsvector('simple', ?), 'A') || ' ' || setweight(to_tsvector('simple', ?), 'B')",
		expr.SQL)
	assert.Equal(t, []any{"alpha", "beta"}, expr.Vars)
}

func TestVectorEmpty(t *testing.T) {
	v := Vector{Config: "simple"}
	assert.True(t, v.Empty())
	assert.Equal(t, "NULL", v.SQL())
	assert.Nil(t, vectorValue(v))
}

func TestVectorForFollowsDeclarationOrder(t *testing.T) {
	_, m := newTestMapping(t)

	v := m.vectorFor(map[string]any{"body": strPtr("second"), "title": 42, "note": "ignored"})
	assert.Equal(t, "simple", v.Config)
	assert.Equal(t, []Term{{Text: "42", Weight: WeightA}, {Text: "second", Weight: WeightB}}, v.Terms)

	v = m.vectorFor(map[string]any{})
	assert.Equal(t, []Term{{Text: "", Weight: WeightA}, {Text: "", Weight: WeightB}}, v.Terms)
}

func TestVectorUsesRegistrySearchConfig(t *testing.T) {
	m := NewRegistry(WithSearchConfig("russian")).MustRegister(&article{})
	assert.Contains(t, m.vectorFor(nil).SQL(), "to_tsvector('russian', ?)")
}
