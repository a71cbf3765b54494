// Package advisory answers farming questions by matching keywords against a
// static, localized table of canned responses.
package advisory

import (
	"errors"
	"fmt"
	"strings"

	"kisansense/internal/config"
)

var (
	// ErrUnsupportedLanguage is set on an answer whose requested language is
	// not declared in the table. The text is in the source language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrNotLocalized is set on an answer whose requested language is declared
	// but has no text for the matched entry. The text is in the source language.
	ErrNotLocalized = errors.New("response not localized")
)

// FallbackOutcome is the outcome name recorded when no rule matched.
const FallbackOutcome = "fallback"

// Language is a selectable response language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native,omitempty"`
}

// Rule routes queries containing any of its keywords to a canned response.
type Rule struct {
	Key       string
	Keywords  []string          // Lower-case; checked in order
	Responses map[string]string // Language code -> text
}

// Table is an ordered keyword table. It is immutable after construction and
// safe for concurrent use.
type Table struct {
	source    Language
	languages []Language
	rules     []Rule
	fallback  map[string]string
}

// NewTable validates and builds a table. Rules keep their given order, which
// is the only precedence between rules whose keywords both occur in a query.
func NewTable(sourceCode string, languages []Language, rules []Rule, fallback map[string]string) (*Table, error) {
	var errs []error

	declared := make(map[string]bool, len(languages))
	var source *Language
	for i := range languages {
		code := languages[i].Code
		if code == "" || languages[i].Name == "" {
			errs = append(errs, fmt.Errorf("language %d: code and name are required", i))
			continue
		}
		if declared[code] {
			errs = append(errs, fmt.Errorf("language %q declared twice", code))
		}
		declared[code] = true
		if code == sourceCode {
			source = &languages[i]
		}
	}
	if source == nil {
		return nil, errors.Join(append(errs, fmt.Errorf("source language %q is not declared", sourceCode))...)
	}

	checkTexts := func(owner string, texts map[string]string) {
		if strings.TrimSpace(texts[sourceCode]) == "" {
			errs = append(errs, fmt.Errorf("%s: missing %s text", owner, sourceCode))
		}
		for code := range texts {
			if !declared[code] {
				errs = append(errs, fmt.Errorf("%s: text for undeclared language %q", owner, code))
			}
		}
	}

	seen := make(map[string]bool, len(rules))
	built := make([]Rule, 0, len(rules))
	for i, r := range rules {
		owner := fmt.Sprintf("rule %q", r.Key)
		if r.Key == "" {
			owner = fmt.Sprintf("rule %d", i)
			errs = append(errs, fmt.Errorf("%s: key is required", owner))
		} else if seen[r.Key] {
			errs = append(errs, fmt.Errorf("%s: duplicate key", owner))
		}
		seen[r.Key] = true

		var keywords []string
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			errs = append(errs, fmt.Errorf("%s: at least one keyword is required", owner))
		}
		checkTexts(owner, r.Responses)

		built = append(built, Rule{Key: r.Key, Keywords: keywords, Responses: r.Responses})
	}
	checkTexts("fallback", fallback)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Table{
		source:    *source,
		languages: languages,
		rules:     built,
		fallback:  fallback,
	}, nil
}

// FromContent builds a table from the content file.
func FromContent(content *config.ContentConfig) (*Table, error) {
	languages := make([]Language, len(content.Languages))
	for i, l := range content.Languages {
		languages[i] = Language{Code: l.Code, Name: l.Name, Native: l.Native}
	}
	rules := make([]Rule, len(content.Advisories))
	for i, a := range content.Advisories {
		rules[i] = Rule{Key: a.Key, Keywords: a.Keywords, Responses: a.Responses}
	}
	return NewTable(content.SourceLanguage, languages, rules, content.Fallback)
}

// Source returns the language every entry is guaranteed to have text in.
func (t *Table) Source() Language {
	return t.source
}

// Languages returns the declared languages in file order.
func (t *Table) Languages() []Language {
	out := make([]Language, len(t.languages))
	copy(out, t.languages)
	return out
}

// Rules returns the rules in match order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// ResolveLanguage finds a declared language by code, English name or native
// name, ignoring case and surrounding space.
func (t *Table) ResolveLanguage(input string) (Language, bool) {
	input = strings.TrimSpace(input)
	for _, l := range t.languages {
		if strings.EqualFold(input, l.Code) || strings.EqualFold(input, l.Name) || (l.Native != "" && input == l.Native) {
			return l, true
		}
	}
	return Language{}, false
}

// Localized reports whether every entry has text in the given language code.
func (t *Table) Localized(code string) bool {
	if t.fallback[code] == "" {
		return false
	}
	for _, r := range t.rules {
		if r.Responses[code] == "" {
			return false
		}
	}
	return true
}

// Match returns the first rule with a keyword contained in the case-folded
// query, or nil.
func (t *Table) Match(query string) *Rule {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return nil
	}
	for i := range t.rules {
		for _, kw := range t.rules[i].Keywords {
			if strings.Contains(q, kw) {
				return &t.rules[i]
			}
		}
	}
	return nil
}

// Lookup answers a query from the table alone. It is deterministic: the same
// query and language always produce the same answer.
func (t *Table) Lookup(query, language string) Answer {
	requested, known := t.ResolveLanguage(language)
	if !known {
		requested = Language{Code: language, Name: language}
	}

	texts := t.fallback
	var key string
	if rule := t.Match(query); rule != nil {
		texts = rule.Responses
		key = rule.Key
	}

	ans := Answer{Rule: key, Requested: requested}
	switch text := texts[requested.Code]; {
	case !known:
		ans.Text, ans.Language, ans.Notice = texts[t.source.Code], t.source, ErrUnsupportedLanguage
	case text == "":
		ans.Text, ans.Language, ans.Notice = texts[t.source.Code], t.source, ErrNotLocalized
	default:
		ans.Text, ans.Language = text, requested
	}
	return ans
}

// Answer is the responder's reply to one query.
type Answer struct {
	Text       string
	Rule       string   // Matched rule key, empty for the fallback
	Language   Language // Language Text is written in
	Requested  Language
	Translated bool
	Notice     error // Why Text is not in the requested language, if it isn't
}

// Matched reports whether a rule matched rather than the fallback.
func (a Answer) Matched() bool {
	return a.Rule != ""
}

// Outcome returns the rule key or FallbackOutcome.
func (a Answer) Outcome() string {
	if a.Rule == "" {
		return FallbackOutcome
	}
	return a.Rule
}
