package taskkey

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "duplicates collapse in first-seen order",
			text: "Fixes AW-12 and AW-7, also AW-12 again",
			want: []string{"AW-12", "AW-7"},
		},
		{
			name: "title and body blob",
			text: "AW-100: add login form\nCloses AW-101 and relates to AW-100",
			want: []string{"AW-100", "AW-101"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
		{
			name: "no keys",
			text: "chore: bump dependencies",
			want: []string{},
		},
		{
			name: "lowercase is not a key",
			text: "aw-12 is not a task, AW-12 is",
			want: []string{"AW-12"},
		},
		{
			name: "three letter prefixes do not match",
			text: "ABC-1 has a three letter project",
			want: []string{},
		},
		{
			name: "key needs digits",
			text: "AW- is incomplete but AW-9 works",
			want: []string{"AW-9"},
		},
		{
			name: "keys embedded in markdown",
			text: "## Summary\n- [AW-55](https://tracker.example.com/AW-55)\n- part of AW-56",
			want: []string{"AW-55", "AW-56"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	text := "AW-1 AW-2 AW-1 AW-3"
	first := Extract(text)
	second := Extract(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent: %v vs %v", first, second)
	}
}
