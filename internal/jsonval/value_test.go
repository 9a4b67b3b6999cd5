package jsonval

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesObjectOrder(t *testing.T) {
	v, err := Parse([]byte(`{"b": 1, "a": [true, null, "x"]}`))
	require.NoError(t, err)

	assert.Equal(t, Object, v.Kind)
	assert.Equal(t, []string{"b", "a"}, v.Keys)
	assert.Equal(t, `{"b":1,"a":[true,null,"x"]}`, v.Canonical())
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`[1,2] [3]`))
	assert.Error(t, err)

	_, err = Parse([]byte(``))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same array", `[0,1]`, `[0, 1]`, true},
		{"order matters", `[1,0]`, `[0,1]`, false},
		{"integral float", `1.0`, `1`, true},
		{"exponent", `1e2`, `100`, true},
		{"fraction", `0.5`, `0.50`, true},
		{"string vs number", `"1"`, `1`, false},
		{"key order matters", `{"a":1,"b":2}`, `{"b":2,"a":1}`, false},
		{"nested", `[[1,2],[3]]`, `[[1,2],[3]]`, true},
		{"html characters", `"<a&b>"`, `"<a&b>"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(MustParse(tt.a), MustParse(tt.b)))
		})
	}
}

func TestArguments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"array spreads", `[[2,7,11,15], 9]`, 2},
		{"scalar wraps", `5`, 1},
		{"object wraps", `{"nums":[1]}`, 1},
		{"null is empty", `null`, 0},
		{"absent is empty", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := Arguments(json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Len(t, args, tt.want)
		})
	}
}

func TestInt64(t *testing.T) {
	i, ok := MustParse(`2147483648`).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(2147483648), i)

	_, ok = MustParse(`2.5`).Int64()
	assert.False(t, ok)

	assert.True(t, MustParse(`3.0`).IsIntegral())
	assert.False(t, MustParse(`3.25`).IsIntegral())
}

func TestQuoteDoesNotEscapeHTML(t *testing.T) {
	assert.Equal(t, `"a<b\n"`, Quote("a<b\n"))
}
