package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func testTranslator() *Translator {
	return New(map[string]map[string]string{
		"en": {
			"greeting": "Hello, {name}!",
			"only_en":  "English only",
		},
		"ru": {
			"greeting": "Привет, {name}!",
		},
	}, "en", zerolog.Nop())
}

func TestLookupChain(t *testing.T) {
	tr := testTranslator()

	tests := []struct {
		name   string
		locale string
		key    string
		want   string
	}{
		{name: "exact hit", locale: "ru", key: "greeting", want: "Привет, {name}!"},
		{name: "fallback to default locale", locale: "ru", key: "only_en", want: "English only"},
		{name: "unknown locale uses default", locale: "de", key: "greeting", want: "Hello, {name}!"},
		{name: "miss everywhere returns key", locale: "en", key: "no.such.key", want: "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.T(tt.locale, tt.key); got != tt.want {
				t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	got := Render("Hello, {name}! Debt: ${debt}", map[string]string{
		"name": "Alice",
		"debt": "5.00",
	})
	want := "Hello, Alice! Debt: $5.00"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	en := "greeting: Hello\nbye: Bye\n"
	ru := "greeting: Привет\n"
	if err := os.WriteFile(filepath.Join(dir, "en.yaml"), []byte(en), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte(ru), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-catalog files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tr, err := Load(dir, "en", zerolog.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := tr.T("ru", "greeting"); got != "Привет" {
		t.Errorf("T(ru, greeting) = %q", got)
	}
	if got := tr.T("ru", "bye"); got != "Bye" {
		t.Errorf("T(ru, bye) = %q, want fallback to en", got)
	}
	if n := len(tr.Locales()); n != 2 {
		t.Errorf("Locales() returned %d tags, want 2", n)
	}
}

func TestLoadMissingDefaultLocale(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ru.yaml"), []byte("a: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, "en", zerolog.Nop()); err == nil {
		t.Fatal("expected error when default locale catalog is missing")
	}
}
