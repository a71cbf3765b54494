package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"kisansense/internal/db"
	"kisansense/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONTENT_FILE", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "english default",
			args: []string{"ask", "I", "have", "an", "aphid", "problem"},
			want: []string{"Neem oil", "rule: aphid, language: en"},
		},
		{
			name: "hindi by name",
			args: []string{"ask", "--language", "Hindi", "tell me about PM kisan scheme"},
			want: []string{"पीएम किसान", "rule: scheme, language: hi"},
		},
		{
			name: "fallback",
			args: []string{"ask", "-l", "te", "xyz"},
			want: []string{"rule: fallback, language: te"},
		},
		{
			name: "not localized",
			args: []string{"ask", "-l", "kn", "aphid"},
			want: []string{"Neem oil", "language: en", "note: response not localized"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("ask error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate embedded content: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok: 8 rules") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "warning: Marathi (mr)") {
		t.Errorf("expected a warning for partially translated Marathi:\n%s", out)
	}

	bad := `source_language: en
languages:
  - code: en
    name: English
advisories:
  - key: aphid
    keywords: [aphid]
    responses:
      en: "Neem oil"
fallback:
  en: "Ask your officer"
schemes:
  - id: pm-kisan
    name: PM-Kisan
    link: "javascript:alert(1)"
  - id: pm-kisan
    name: Duplicate
    link: https://pmkisan.gov.in
`
	path := filepath.Join(t.TempDir(), "content.yaml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err = run(t, "validate", path)
	if err == nil {
		t.Fatalf("validate accepted a bad file:\n%s", out)
	}
	for _, want := range []string{"must use http:// or https://", "duplicate id"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, "validate", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("validate accepted a missing file")
	}
}

func TestLanguages(t *testing.T) {
	out, err := run(t, "languages")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d languages, want 6:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "en") || !strings.HasSuffix(lines[0], "source") {
		t.Errorf("first line = %q, want the source language", lines[0])
	}
}

type fakeOfficerStore struct {
	officers []models.Officer
	updated  map[uuid.UUID]string
}

func (f *fakeOfficerStore) ListOfficers(context.Context) ([]models.Officer, error) {
	return f.officers, nil
}

func (f *fakeOfficerStore) UpdateOfficerRole(_ context.Context, id uuid.UUID, role string) error {
	f.updated[id] = role
	return nil
}

func useFakeStore(t *testing.T, store *fakeOfficerStore) {
	t.Helper()
	orig := openOfficerStore
	openOfficerStore = func(context.Context) (officerStore, func(), error) {
		return store, func() {}, nil
	}
	t.Cleanup(func() { openOfficerStore = orig })
}

func TestOfficerPromote(t *testing.T) {
	anita := models.Officer{ID: uuid.New(), Sub: "sub-anita", Email: "anita@agri.gov.in", Name: "Anita", Role: models.RoleViewer}
	ravi := models.Officer{ID: uuid.New(), Sub: "sub-ravi", Email: "ravi@agri.gov.in", Name: "Ravi", Role: models.RoleViewer}
	store := &fakeOfficerStore{officers: []models.Officer{anita, ravi}, updated: map[uuid.UUID]string{}}
	useFakeStore(t, store)

	out, err := run(t, "officer", "promote", "ANITA@agri.gov.in", "officer")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "anita@agri.gov.in is now officer") {
		t.Errorf("output = %q", out)
	}

	if _, err := run(t, "officer", "promote", "sub-ravi", "admin"); err != nil {
		t.Fatal(err)
	}

	want := map[uuid.UUID]string{anita.ID: models.RoleOfficer, ravi.ID: models.RoleAdmin}
	if diff := cmp.Diff(want, store.updated); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}

	if _, err := run(t, "officer", "promote", "nobody@agri.gov.in", "admin"); !errors.Is(err, db.ErrOfficerNotFound) {
		t.Errorf("unknown officer error = %v, want ErrOfficerNotFound", err)
	}
	if _, err := run(t, "officer", "promote", "sub-ravi", "superuser"); err == nil {
		t.Error("accepted an unknown role")
	}
}

func TestOfficerList(t *testing.T) {
	useFakeStore(t, &fakeOfficerStore{officers: []models.Officer{
		{Sub: "sub-anita", Email: "anita@agri.gov.in", Name: "Anita", Role: models.RoleAdmin},
	}})

	out, err := run(t, "officer", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "anita@agri.gov.in") || !strings.Contains(out, "admin") {
		t.Errorf("output = %q", out)
	}
}
