package numeric

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"42", 42},
		{" 42 ", 42},
		{"-7", -7},
		{"+7", 7},
		{"4.5", 4.5},
		{".5", 0.5},
		{"5.", 5},
		{"1e2", 100},
		{"1E-1", 0.1},
		{"0x10", 16},
		{"0o17", 15},
		{"0b101", 5},
		{"007", 7},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParse_RadixBeyondUint64(t *testing.T) {
	// 2^64 in hex, octal and binary.
	for _, in := range []string{"0x10000000000000000", "0o2000000000000000000000", "0b1" + strings.Repeat("0", 64)} {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, math.Ldexp(1, 64), Parse(in))
		})
	}

	assert.Equal(t, math.Inf(1), Parse("0x1"+strings.Repeat("0", 300)))
	assert.True(t, math.IsNaN(Parse("0x1"+strings.Repeat("0", 20)+"g")))
}

func TestParse_NaN(t *testing.T) {
	for _, in := range []string{"abc", "12abc", "inf", "NaN", "infinity", "1_000", "0x", "-0x10", "1e", ".", "+", "0x1.8p1", "1,5"} {
		t.Run(in, func(t *testing.T) {
			assert.True(t, math.IsNaN(Parse(in)), "Parse(%q) should be NaN", in)
		})
	}
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		nan  bool
	}{
		{name: "number", raw: `320`, want: 320},
		{name: "float", raw: `12.6`, want: 12.6},
		{name: "negative", raw: `-3`, want: -3},
		{name: "numeric string", raw: `"250"`, want: 250},
		{name: "padded string", raw: `" 250 "`, want: 250},
		{name: "empty string", raw: `""`, want: 0},
		{name: "word", raw: `"abc"`, nan: true},
		{name: "true", raw: `true`, want: 1},
		{name: "false", raw: `false`, want: 0},
		{name: "null", raw: `null`, want: 0},
		{name: "array", raw: `[1]`, nan: true},
		{name: "object", raw: `{"n":1}`, nan: true},
		{name: "missing", raw: ``, nan: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromJSON(json.RawMessage(tt.raw))
			if tt.nan {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}
