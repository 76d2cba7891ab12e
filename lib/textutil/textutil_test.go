package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "Acrylic Stand", expected: "acrylicstand"},
		{input: " ＡＣＲＹＬＩＣ　Stand\n", expected: "acrylicstand"},
		{input: "ｱｸﾘﾙ", expected: "アクリル"},
		{input: "", expected: ""},
	}

	for _, row := range table {
		require.Equal(t, row.expected, NormalizeName(row.input), row.input)
	}
}
