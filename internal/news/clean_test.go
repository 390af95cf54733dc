package news

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"already clean", "OpenAI 发布新模型", "OpenAI 发布新模型"},
		{"tags", "<p>机器人<b>量产</b></p>", "机器人量产"},
		{"entities", "A&amp;B&nbsp;&ldquo;C&rdquo;", "A&B “C”"},
		{"whitespace", "  a \n\t b   c  ", "a b c"},
		{"encoded tag", "x &lt;b&gt;y&lt;/b&gt; z", "x y z"},
		{"double encoded", "&amp;amp;", "&"},
		{"tag splits entity", "&am<i>p;", "&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestClean_Truncates(t *testing.T) {
	long := strings.Repeat("智", MaxSummaryRunes+50)
	got := Clean(long)
	assert.Equal(t, MaxSummaryRunes, utf8.RuneCountInString(got))

	assert.Equal(t, "ab", CleanN("ab   cd", 3))
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"<div>  AI &amp; robots </div>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;p&amp;gt;nested&amp;lt;/p&amp;gt;",
		"a <unclosed tag",
		"> stray > brackets <",
		"&nbsp;&nbsp;leading",
		strings.Repeat("词 ", 400),
		strings.Repeat("x", 499) + " &amp; tail",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}
