package operation

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   string
	}{
		{
			name:   "identical",
			before: "a\nb\n",
			after:  "a\nb\n",
			want:   "",
		},
		{
			name:   "single_line_change",
			before: "a\nb\nc\n",
			after:  "a\nB\nc\n",
			want:   "  a\n- b\n+ B\n  c\n",
		},
		{
			name:   "insertion",
			before: "a\nc\n",
			after:  "a\nb\nc\n",
			want:   "  a\n+ b\n  c\n",
		},
		{
			name:   "long_context_is_elided",
			before: "1\n2\n3\n4\n5\nx\n6\n7\n8\n9\n",
			after:  "1\n2\n3\n4\n5\ny\n6\n7\n8\n9\n",
			want:   "  ...\n  4\n  5\n- x\n+ y\n  6\n  7\n  ...\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.before, tt.after))
		})
	}
}

func TestPreviewManyLines(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		sb.WriteString("line ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString("\n")
	}
	before := sb.String()
	after := before + "tail\n"

	got := Preview(before, after)
	assert.Equal(t, "  ...\n  line 4998\n  line 4999\n+ tail\n", got)
}
