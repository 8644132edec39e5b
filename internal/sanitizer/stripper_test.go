package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLStripper_StripHTML(t *testing.T) {
	s := NewHTMLStripper()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Will it rain tomorrow?", "Will it rain tomorrow?"},
		{"script removed", `<script>alert(1)</script>ipfs://Qm123`, "ipfs://Qm123"},
		{"tags dropped", "<b>bold</b> claim", "bold claim"},
		{"ampersand escaped", "a & b", "a &amp; b"},
		{"whitespace trimmed", "  <p>hi</p>  ", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.StripHTML(tt.in))
		})
	}
}
