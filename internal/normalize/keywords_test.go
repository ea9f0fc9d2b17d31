package normalize

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWords int
		want     []string
	}{
		{
			name:     "keeps order and lowercases",
			input:    "Analyzer CRASH during Dependency scan",
			maxWords: 8,
			want:     []string{"analyzer", "crash", "during", "dependency", "scan"},
		},
		{
			name:     "drops short tokens",
			input:    "app db is out of mem",
			maxWords: 8,
			want:     []string{DefaultFallbackKeyword},
		},
		{
			name:     "removes stop words",
			input:    "please help with this error issue in the analyzer",
			maxWords: 8,
			want:     []string{"analyzer"},
		},
		{
			name:     "dedupes case insensitively keeping first",
			input:    "Upgrade required: UPGRADE the engine, upgrade now",
			maxWords: 8,
			want:     []string{"upgrade", "required", "engine"},
		},
		{
			name:     "caps at max words",
			input:    "alpha bravo charlie delta echo foxtrot",
			maxWords: 3,
			want:     []string{"alpha", "bravo", "charlie"},
		},
		{
			name:     "empty input falls back to sentinel",
			input:    "",
			maxWords: 8,
			want:     []string{DefaultFallbackKeyword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.input, tt.maxWords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q, %d) = %v, want %v", tt.input, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsNeverEmpty(t *testing.T) {
	inputs := []string{"", "a b c", "the and for", "!!! ??? ..."}
	for _, in := range inputs {
		if got := ExtractKeywords(in, 8); len(got) == 0 {
			t.Errorf("ExtractKeywords(%q) returned an empty set", in)
		}
	}
}

func TestKeywordExtractorCustomConfig(t *testing.T) {
	e := NewKeywordExtractor(2, []string{"analyzer"}, "castsoftware")

	got := e.Extract("analyzer crash during scan")
	want := []string{"crash", "during"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract = %v, want %v", got, want)
	}

	if got := e.Extract("analyzer"); !reflect.DeepEqual(got, []string{"castsoftware"}) {
		t.Errorf("fallback = %v, want [castsoftware]", got)
	}
}
