package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "comma decimal", input: "-245,50", want: "-245.5", wantOK: true},
		{name: "space thousands", input: "-1 234,50", want: "-1234.5", wantOK: true},
		{name: "non-breaking space thousands", input: "25\u00a0000,00", want: "25000", wantOK: true},
		{name: "narrow no-break space", input: "1\u202f000", want: "1000", wantOK: true},
		{name: "dot decimal", input: "12.75", want: "12.75", wantOK: true},
		{name: "quoted", input: `"-99,90"`, want: "-99.9", wantOK: true},
		{name: "empty", input: "", want: "0"},
		{name: "garbage", input: "abc", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
