package i18n

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		name  string
		value any
		lang  Lang
		want  string
	}{
		{"plain", "Halo", EN, "Halo"},
		{"localized en", map[string]any{"id": "Halo", "en": "Hello"}, EN, "Hello"},
		{"localized id", map[string]any{"id": "Halo", "en": "Hello"}, ID, "Halo"},
		{"empty en falls back", map[string]any{"id": "Halo", "en": ""}, EN, "Halo"},
		{"missing en falls back", map[string]any{"id": "Halo"}, EN, "Halo"},
		{"only en", map[string]any{"en": "Hello"}, ID, ""},
		{"null", nil, EN, ""},
		{"number", int64(3), ID, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.value, tc.lang)
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
			if again := Resolve(tc.value, tc.lang); again != got {
				t.Errorf("Resolve not idempotent: %q vs %q", got, again)
			}
		})
	}
}

func TestBilingual(t *testing.T) {
	m := Bilingual("Judul", "")
	if m["id"] != "Judul" || m["en"] != "Judul" {
		t.Errorf("Expected en to default to id, got %#v", m)
	}
	m = Bilingual("Judul", "Title")
	if m["en"] != "Title" {
		t.Errorf("Expected en Title, got %#v", m)
	}
}

func TestLang(t *testing.T) {
	if ID.Toggle() != EN || EN.Toggle() != ID {
		t.Error("Toggle must swap languages")
	}
	if ParseLang("EN") != EN || ParseLang("fr") != ID || ParseLang("") != ID {
		t.Error("ParseLang returned unexpected values")
	}
}

func TestSplit(t *testing.T) {
	id, en := Split("Go")
	if id != "Go" || en != "" {
		t.Errorf("Expected plain to fill only id, got %q %q", id, en)
	}
	id, en = Split(map[string]any{"id": "a", "en": "b"})
	if id != "a" || en != "b" {
		t.Errorf("Unexpected split %q %q", id, en)
	}
}
