package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePDFImageName(t *testing.T) {
	cases := []struct {
		name string
		page int
		ok   bool
	}{
		{"stage_1_Im0.png", 1, true},
		{"stage_12_Im3.jpg", 12, true},
		{"stage_3_Image4.tiff", 3, true},
		{"stage.pdf", 0, false},
		{"notes.png", 0, false},
		{"stage_0_Im0.png", 0, false},
	}
	for _, tc := range cases {
		page, ok := parsePDFImageName(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.Equal(t, tc.page, page, tc.name)
		}
	}
}
