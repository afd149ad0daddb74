package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyJQ_Identity(t *testing.T) {
	out, err := applyJQ(".", map[string]interface{}{"sol": 1.5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, map[string]interface{}{"sol": 1.5}, out[0])
}

func TestApplyJQ_FieldExtraction(t *testing.T) {
	type balance struct {
		SOL    float64 `json:"sol"`
		Tokens int     `json:"tokens"`
	}
	out, err := applyJQ(".sol", balance{SOL: 2.25, Tokens: 3})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2.25, out[0])
}

func TestApplyJQ_ArrayIteration(t *testing.T) {
	out, err := applyJQ(".[] | .id", []map[string]string{
		{"id": "a"}, {"id": "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, out)
}

func TestApplyJQ_ParseError(t *testing.T) {
	_, err := applyJQ("][", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse jq filter")
}

func TestApplyJQ_SelectFilter(t *testing.T) {
	out, err := applyJQ(`.[] | select(.tvl > 100)`, []map[string]interface{}{
		{"id": "small", "tvl": 50},
		{"id": "big", "tvl": 500},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "big", out[0].(map[string]interface{})["id"])
}
