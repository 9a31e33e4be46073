package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		page, size          int
		wantOffset, wantLim int
	}{
		{name: "first page", page: 1, size: 10, wantOffset: 0, wantLim: 10},
		{name: "third page", page: 3, size: 25, wantOffset: 50, wantLim: 25},
		{name: "zero page", page: 0, size: 5, wantOffset: 0, wantLim: 5},
		{name: "zero size", page: 2, size: 0, wantOffset: 10, wantLim: DefaultPageSize},
		{name: "oversized", page: 1, size: 1000, wantOffset: 0, wantLim: DefaultPageSize},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			off, lim := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantOffset, off)
			assert.Equal(t, tt.wantLim, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
}
