package i18n

import (
	"context"
	"testing"
)

func TestLocalizer_T(t *testing.T) {
	en := NewLocalizer(LocaleEnglish)
	ms := NewLocalizer(LocaleMalay)

	if got := en.T("errors.already_clocked_in"); got != "staff member has already clocked in today" {
		t.Errorf("en translation = %q", got)
	}
	if got := ms.T("errors.already_clocked_in"); got != "kakitangan telah daftar masuk hari ini" {
		t.Errorf("ms translation = %q", got)
	}
}

func TestLocalizer_T_Params(t *testing.T) {
	en := NewLocalizer(LocaleEnglish)

	got := en.T("errors.not_found", map[string]string{"resource": "staff"})
	if got != "staff not found" {
		t.Errorf("interpolated translation = %q", got)
	}
}

func TestLocalizer_T_UnknownKeyFallsBackToKey(t *testing.T) {
	en := NewLocalizer(LocaleEnglish)

	if got := en.T("errors.definitely_not_a_key"); got != "errors.definitely_not_a_key" {
		t.Errorf("unknown key = %q, want the key itself", got)
	}
}

func TestNewLocalizer_UnsupportedLocale(t *testing.T) {
	l := NewLocalizer("de")
	if l.GetLocale() != DefaultLocale {
		t.Errorf("unsupported locale fell back to %q, want %q", l.GetLocale(), DefaultLocale)
	}
}

func TestParseAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", LocaleEnglish},
		{"en-US,en;q=0.9", LocaleEnglish},
		{"ms-MY,ms;q=0.9,en;q=0.8", LocaleMalay},
		{"MS", LocaleMalay},
		{"fr-FR", LocaleEnglish},
	}

	for _, tt := range tests {
		if got := ParseAcceptLanguage(tt.header); got != tt.want {
			t.Errorf("ParseAcceptLanguage(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestLocaleContext(t *testing.T) {
	ctx := WithLocale(context.Background(), LocaleMalay)

	if got := GetLocaleFromContext(ctx); got != LocaleMalay {
		t.Errorf("GetLocaleFromContext() = %q, want %q", got, LocaleMalay)
	}
	if got := GetLocaleFromContext(context.Background()); got != DefaultLocale {
		t.Errorf("GetLocaleFromContext() on empty context = %q, want %q", got, DefaultLocale)
	}

	got := TFromContext(ctx, "errors.forbidden")
	if got != "akses dinafikan" {
		t.Errorf("TFromContext() = %q", got)
	}
}
