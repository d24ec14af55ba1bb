package extraction

import (
	"reflect"
	"testing"
)

func TestResolveLanguages(t *testing.T) {
	cfg := DefaultLanguageConfig()
	cases := []struct {
		name      string
		requested string
		cfg       LanguageConfig
		want      []string
	}{
		{"default spec", "", cfg, []string{"vie+eng", "eng"}},
		{"requested with fallback appended", "fra", cfg, []string{"fra", "eng"}},
		{"fallback already present", "eng, vie", cfg, []string{"eng", "vie"}},
		{"semicolons and blanks", " jpn ;; kor ,", cfg, []string{"jpn", "kor", "eng"}},
		{"duplicates collapse", "eng,eng", cfg, []string{"eng"}},
		{"empty config", "", LanguageConfig{}, []string{"eng"}},
		{"multiple fallbacks", "vie", LanguageConfig{Default: "vie", Fallbacks: "eng;fra"}, []string{"vie", "eng", "fra"}},
	}
	for _, tc := range cases {
		got := ResolveLanguages(tc.requested, tc.cfg)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}
