package i18n

import (
	"encoding/json"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, "en")
	ar := mustLoadLocaleMessages(t, "ar")

	missingInAR := missingKeys(en, ar)
	missingInEN := missingKeys(ar, en)

	if len(missingInAR) > 0 {
		t.Errorf("keys missing in ar locale: %s", strings.Join(missingInAR, ", "))
	}
	if len(missingInEN) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missingInEN, ", "))
	}
}

func TestEmbeddedManagerTranslatesAndFallsBack(t *testing.T) {
	manager, err := NewEmbeddedManager("fr")
	if err != nil {
		t.Fatalf("new embedded manager: %v", err)
	}
	if manager.DefaultLanguage() != LangEN {
		t.Fatalf("expected unsupported default to fall back to en, got %q", manager.DefaultLanguage())
	}

	if got := manager.Translate("ar-EG", "errors.not_found"); got != "المورد غير موجود" {
		t.Fatalf("expected arabic translation, got %q", got)
	}
	if got := manager.Translate("de", "errors.not_found"); got != "Resource not found" {
		t.Fatalf("expected english fallback, got %q", got)
	}
	if got := manager.Translate("en", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
}

func TestDetectFromAcceptLanguage(t *testing.T) {
	manager, err := NewEmbeddedManager(LangEN)
	if err != nil {
		t.Fatalf("new embedded manager: %v", err)
	}

	if got := manager.DetectFromAcceptLanguage("fr-FR,ar;q=0.8,en;q=0.5"); got != LangAR {
		t.Fatalf("expected ar, got %q", got)
	}
	if got := manager.DetectFromAcceptLanguage(""); got != LangEN {
		t.Fatalf("expected default en, got %q", got)
	}
}

func TestNewManagerRequiresEnglish(t *testing.T) {
	locales := fstest.MapFS{"ar.json": {Data: []byte(`{"k":"v"}`)}}
	if _, err := NewManager(LangAR, locales); err == nil {
		t.Fatal("expected manager without en locale to fail")
	}
}

func mustLoadLocaleMessages(t *testing.T, language string) map[string]string {
	t.Helper()

	content, err := fs.ReadFile(embeddedLocales, "locales/"+language+".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", language, err)
	}

	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", language, err)
	}
	if len(messages) == 0 {
		t.Fatalf("locale %q is empty", language)
	}
	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
