package advisory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kisansense/internal/config"
)

const (
	neemEnglish     = "Neem oil 3–5 ml per litre. Avoid excess nitrogen. Use Imidacloprid if infestation is severe."
	pmKisanHindi    = "पीएम किसान योजना से ₹6000 प्रति वर्ष मिलते हैं।"
	fallbackEnglish = "Please provide more details or consult your local agriculture officer."
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	content, err := config.DefaultContent()
	if err != nil {
		t.Fatalf("DefaultContent() error = %v", err)
	}
	table, err := FromContent(content)
	if err != nil {
		t.Fatalf("FromContent() error = %v", err)
	}
	return table
}

func TestLookup_Examples(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		name     string
		query    string
		language string
		wantRule string
		wantText string
	}{
		{
			name:     "aphid in English",
			query:    "I have an aphid problem",
			language: "English",
			wantRule: "aphid",
			wantText: neemEnglish,
		},
		{
			name:     "pm kisan in Hindi",
			query:    "tell me about PM kisan scheme",
			language: "Hindi",
			wantRule: "scheme",
			wantText: pmKisanHindi,
		},
		{
			name:     "unknown query falls back",
			query:    "xyz",
			language: "English",
			wantRule: "",
			wantText: fallbackEnglish,
		},
		{
			name:     "language by code",
			query:    "which fertilizer?",
			language: "ta",
			wantRule: "fertilizer",
			wantText: "மண் பரிசோதனை அடிப்படையில் NPK பயன்படுத்தவும்.",
		},
		{
			name:     "language by native name",
			query:    "fertilizer",
			language: "తెలుగు",
			wantRule: "fertilizer",
			wantText: "నేల పరీక్ష ఆధారంగా సమతుల్య NPK వాడాలి.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := table.Lookup(tt.query, tt.language)
			if ans.Rule != tt.wantRule {
				t.Errorf("Rule = %q, want %q", ans.Rule, tt.wantRule)
			}
			if ans.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", ans.Text, tt.wantText)
			}
			if ans.Notice != nil {
				t.Errorf("Notice = %v, want nil", ans.Notice)
			}
		})
	}
}

func TestLookup_FallbackInEveryLanguage(t *testing.T) {
	table := defaultTable(t)
	content, _ := config.DefaultContent()

	for _, lang := range []string{"English", "Telugu", "Hindi", "Tamil"} {
		t.Run(lang, func(t *testing.T) {
			l, _ := table.ResolveLanguage(lang)
			ans := table.Lookup("xyz", lang)
			if ans.Text != content.Fallback[l.Code] {
				t.Errorf("Lookup(xyz, %s) = %q, want fallback %q", lang, ans.Text, content.Fallback[l.Code])
			}
			if ans.Matched() {
				t.Error("Matched() = true for fallback")
			}
			if ans.Outcome() != FallbackOutcome {
				t.Errorf("Outcome() = %q, want %q", ans.Outcome(), FallbackOutcome)
			}
		})
	}
}

func TestLookup_EveryKeywordReachesItsRule(t *testing.T) {
	table := defaultTable(t)

	rules := table.Rules()
	for i, rule := range rules {
		for _, kw := range rule.Keywords {
			// A keyword only reaches its rule if no earlier rule claims it.
			earlier := false
			for _, prev := range rules[:i] {
				for _, pk := range prev.Keywords {
					if strings.Contains(kw, pk) {
						earlier = true
					}
				}
			}
			if earlier {
				continue
			}
			ans := table.Lookup("question about "+kw+" today", "English")
			if ans.Rule != rule.Key {
				t.Errorf("keyword %q matched %q, want %q", kw, ans.Rule, rule.Key)
			}
			if ans.Text != rule.Responses["en"] {
				t.Errorf("keyword %q text = %q, want %q", kw, ans.Text, rule.Responses["en"])
			}
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	table := defaultTable(t)

	upper := table.Lookup("APHID", "English")
	lower := table.Lookup("aphid", "English")
	if diff := cmp.Diff(lower, upper); diff != "" {
		t.Errorf("APHID vs aphid mismatch (-lower +upper):\n%s", diff)
	}
	if upper.Rule != "aphid" {
		t.Errorf("Rule = %q, want aphid", upper.Rule)
	}
}

func TestLookup_Idempotent(t *testing.T) {
	table := defaultTable(t)

	for _, q := range []string{"aphid", "PM-Kisan", "", "xyz", "blight on tomato"} {
		first := table.Lookup(q, "Hindi")
		second := table.Lookup(q, "Hindi")
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Lookup(%q) not idempotent (-first +second):\n%s", q, diff)
		}
	}
}

func TestLookup_EmptyQueryFallsBack(t *testing.T) {
	table := defaultTable(t)

	for _, q := range []string{"", "   ", "\n\t"} {
		if ans := table.Lookup(q, "English"); ans.Matched() || ans.Text != fallbackEnglish {
			t.Errorf("Lookup(%q) = %+v, want fallback", q, ans)
		}
	}
}

func TestLookup_FirstRuleWins(t *testing.T) {
	table := defaultTable(t)

	// aphid is declared before fertilizer and scheme.
	ans := table.Lookup("is there a scheme for fertilizer against aphid?", "English")
	if ans.Rule != "aphid" {
		t.Errorf("Rule = %q, want aphid (first declared rule)", ans.Rule)
	}

	ans = table.Lookup("scheme for fertilizer", "English")
	if ans.Rule != "fertilizer" {
		t.Errorf("Rule = %q, want fertilizer", ans.Rule)
	}
}

func TestLookup_UnsupportedLanguage(t *testing.T) {
	table := defaultTable(t)

	ans := table.Lookup("aphid", "Klingon")
	if ans.Text != neemEnglish {
		t.Errorf("Text = %q, want source text", ans.Text)
	}
	if !errors.Is(ans.Notice, ErrUnsupportedLanguage) {
		t.Errorf("Notice = %v, want ErrUnsupportedLanguage", ans.Notice)
	}
	if ans.Requested.Name != "Klingon" {
		t.Errorf("Requested = %+v, want pass-through name", ans.Requested)
	}
}

func TestLookup_DeclaredButNotLocalized(t *testing.T) {
	table := defaultTable(t)

	ans := table.Lookup("aphid", "Marathi")
	if ans.Text != neemEnglish {
		t.Errorf("Text = %q, want source text", ans.Text)
	}
	if ans.Language.Code != "en" {
		t.Errorf("Language = %+v, want en", ans.Language)
	}
	if !errors.Is(ans.Notice, ErrNotLocalized) {
		t.Errorf("Notice = %v, want ErrNotLocalized", ans.Notice)
	}
}

func TestLocalized(t *testing.T) {
	table := defaultTable(t)

	for code, want := range map[string]bool{"en": true, "hi": true, "te": true, "ta": true, "mr": false, "kn": false} {
		if got := table.Localized(code); got != want {
			t.Errorf("Localized(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestNewTable_Validation(t *testing.T) {
	langs := []Language{{Code: "en", Name: "English"}, {Code: "hi", Name: "Hindi"}}
	fallback := map[string]string{"en": "Ask again."}

	tests := []struct {
		name     string
		source   string
		rules    []Rule
		fallback map[string]string
		wantErr  string
	}{
		{
			name:     "valid",
			source:   "en",
			rules:    []Rule{{Key: "a", Keywords: []string{" Aphid "}, Responses: map[string]string{"en": "x"}}},
			fallback: fallback,
		},
		{
			name:     "undeclared source",
			source:   "fr",
			fallback: fallback,
			wantErr:  "source language",
		},
		{
			name:     "missing keywords",
			source:   "en",
			rules:    []Rule{{Key: "a", Keywords: []string{"  "}, Responses: map[string]string{"en": "x"}}},
			fallback: fallback,
			wantErr:  "keyword",
		},
		{
			name:   "duplicate key",
			source: "en",
			rules: []Rule{
				{Key: "a", Keywords: []string{"x"}, Responses: map[string]string{"en": "x"}},
				{Key: "a", Keywords: []string{"y"}, Responses: map[string]string{"en": "y"}},
			},
			fallback: fallback,
			wantErr:  "duplicate",
		},
		{
			name:     "missing source text",
			source:   "en",
			rules:    []Rule{{Key: "a", Keywords: []string{"x"}, Responses: map[string]string{"hi": "x"}}},
			fallback: fallback,
			wantErr:  "missing en text",
		},
		{
			name:     "undeclared response language",
			source:   "en",
			rules:    []Rule{{Key: "a", Keywords: []string{"x"}, Responses: map[string]string{"en": "x", "fr": "x"}}},
			fallback: fallback,
			wantErr:  "undeclared language",
		},
		{
			name:     "fallback without source text",
			source:   "en",
			fallback: map[string]string{"hi": "x"},
			wantErr:  "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.source, langs, tt.rules, tt.fallback)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewTable() error = %v", err)
				}
				if ans := table.Lookup("APHID!", "en"); ans.Rule != "a" {
					t.Errorf("keywords not normalised: %+v", ans)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTable() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// fakeTranslator "translates" via a lookup map and records calls.
type fakeTranslator struct {
	dict  map[string]string
	err   error
	calls []string
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) (string, error) {
	f.calls = append(f.calls, source+">"+target)
	if f.err != nil {
		return "", f.err
	}
	if out, ok := f.dict[text]; ok {
		return out, nil
	}
	return "[" + target + "] " + text, nil
}

func TestRespond_WithoutTranslatorMatchesLookup(t *testing.T) {
	table := defaultTable(t)
	r := NewResponder(table)

	for _, q := range []string{"aphid", "xyz", "PM Kisan"} {
		got := r.Respond(context.Background(), q, "Hindi")
		want := table.Lookup(q, "Hindi")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Respond(%q) mismatch (-want +got):\n%s", q, diff)
		}
	}
	if r.CanTranslate() {
		t.Error("CanTranslate() = true without translator")
	}
}

func TestRespond_TranslatesUnlocalizedAnswer(t *testing.T) {
	table := defaultTable(t)
	tr := &fakeTranslator{}
	r := NewResponder(table, WithTranslator(tr))

	ans := r.Respond(context.Background(), "aphid", "Marathi")
	if !ans.Translated {
		t.Error("Translated = false, want true")
	}
	if ans.Text != "[mr] "+neemEnglish {
		t.Errorf("Text = %q", ans.Text)
	}
	if ans.Language.Code != "mr" || ans.Notice != nil {
		t.Errorf("Language = %+v Notice = %v", ans.Language, ans.Notice)
	}
}

func TestRespond_TranslatesQueryBeforeFallingBack(t *testing.T) {
	table := defaultTable(t)
	tr := &fakeTranslator{dict: map[string]string{"माहू कीट": "aphid pest"}}
	r := NewResponder(table, WithTranslator(tr))

	ans := r.Respond(context.Background(), "माहू कीट", "Hindi")
	if ans.Rule != "aphid" {
		t.Errorf("Rule = %q, want aphid", ans.Rule)
	}
	if ans.Text != "नीम तेल 3–5 मि.ली. प्रति लीटर पानी में छिड़कें। अधिक नाइट्रोजन से बचें।" {
		t.Errorf("Text = %q", ans.Text)
	}
	if diff := cmp.Diff([]string{"hi>en"}, tr.calls); diff != "" {
		t.Errorf("translator calls (-want +got):\n%s", diff)
	}
}

func TestRespond_SourceLanguageNeverTranslates(t *testing.T) {
	tr := &fakeTranslator{}
	r := NewResponder(defaultTable(t), WithTranslator(tr))

	r.Respond(context.Background(), "xyz", "English")
	if len(tr.calls) != 0 {
		t.Errorf("translator called %v for English query", tr.calls)
	}
}

func TestRespond_TranslationFailureKeepsSourceText(t *testing.T) {
	boom := errors.New("service down")
	r := NewResponder(defaultTable(t), WithTranslator(&fakeTranslator{err: boom}))

	ans := r.Respond(context.Background(), "aphid", "Kannada")
	if ans.Text != neemEnglish {
		t.Errorf("Text = %q, want source text", ans.Text)
	}
	if !errors.Is(ans.Notice, boom) {
		t.Errorf("Notice = %v, want wrapping %v", ans.Notice, boom)
	}
	if ans.Translated {
		t.Error("Translated = true after failure")
	}
}

func TestRespond_QueryTranslationFailureKeepsLocalizedFallback(t *testing.T) {
	boom := errors.New("service down")
	tr := &fakeTranslator{err: boom}
	r := NewResponder(defaultTable(t), WithTranslator(tr))

	ans := r.Respond(context.Background(), "मेरी फसल", "Hindi")
	if ans.Matched() {
		t.Errorf("Rule = %q, want fallback", ans.Rule)
	}
	if ans.Text != "कृपया अधिक विवरण दें या स्थानीय कृषि अधिकारी से संपर्क करें।" {
		t.Errorf("Text = %q, want Hindi fallback", ans.Text)
	}
	if ans.Language.Code != "hi" || ans.Notice != nil {
		t.Errorf("Language = %+v Notice = %v, want hi without notice", ans.Language, ans.Notice)
	}
	if diff := cmp.Diff([]string{"hi>en"}, tr.calls); diff != "" {
		t.Errorf("translator calls (-want +got):\n%s", diff)
	}
}

func TestRespond_Observer(t *testing.T) {
	var seen []string
	r := NewResponder(defaultTable(t), WithObserver(func(a Answer) {
		seen = append(seen, a.Outcome()+"/"+a.Requested.Code)
	}))

	r.Respond(context.Background(), "aphid", "te")
	r.Respond(context.Background(), "nothing", "Tamil")

	if diff := cmp.Diff([]string{"aphid/te", "fallback/ta"}, seen); diff != "" {
		t.Errorf("observed outcomes (-want +got):\n%s", diff)
	}
}
