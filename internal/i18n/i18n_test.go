package i18n

import (
	"net/http"
	"testing"
)

func headers(pairs ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return h
}

func TestInfer(t *testing.T) {
	cases := []struct {
		name string
		h    http.Header
		want string
	}{
		{"explicit header ru", headers("X-Locale", "ru"), "ru"},
		{"explicit header uz", headers("X-Locale", "uz"), "uz"},
		{"explicit header regional", headers("X-Locale", "uz-Latn"), "uz"},
		{"explicit wins over accept", headers("X-Locale", "uz", "Accept-Language", "ru"), "uz"},
		{"explicit unsupported falls through", headers("X-Locale", "en", "Accept-Language", "uz"), "uz"},
		{"accept simple", headers("Accept-Language", "uz"), "uz"},
		{"accept regional subtag", headers("Accept-Language", "ru-RU"), "ru"},
		{"accept q ordering", headers("Accept-Language", "ru;q=0.3, uz;q=0.9"), "uz"},
		{"accept unsupported only", headers("Accept-Language", "en-US,fr;q=0.8"), "ru"},
		{"accept garbage", headers("Accept-Language", ";;;,,,"), "ru"},
		{"no headers", headers(), "ru"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Infer(tc.h, "ru", "X-Locale"); got != tc.want {
				t.Fatalf("Infer = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInferDefaultLocale(t *testing.T) {
	if got := Infer(headers(), "uz", "X-Locale"); got != "uz" {
		t.Fatalf("expected configured default uz, got %q", got)
	}
	if got := Infer(headers(), "en", "X-Locale"); got != "ru" {
		t.Fatalf("unsupported default must fall back to ru, got %q", got)
	}
}

func TestT(t *testing.T) {
	if got := T("uz", "anime_not_found"); got != "Anime katalogda topilmadi." {
		t.Fatalf("unexpected uz message: %q", got)
	}
	if got := T("ru", "anime_not_found"); got != "Не удалось найти аниме в каталоге." {
		t.Fatalf("unexpected ru message: %q", got)
	}
	if got := T("en", "internal_error"); got != T("ru", "internal_error") {
		t.Fatalf("unsupported locale must fall back to ru: %q", got)
	}
}

func TestCatalogsCoverSameKeys(t *testing.T) {
	for key := range messages["ru"] {
		if _, ok := messages["uz"][key]; !ok {
			t.Fatalf("uz catalog missing key %q", key)
		}
	}
	for key := range messages["uz"] {
		if _, ok := messages["ru"][key]; !ok {
			t.Fatalf("ru catalog missing key %q", key)
		}
	}
}
