package farmer

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/go-cmp/cmp"

	"kisansense/internal/models"
	"kisansense/internal/testutil"
)

func testProfile() models.Profile {
	return models.Profile{
		Name:     "Ramesh",
		Village:  "Guntur",
		Phone:    "9876543210",
		LandSize: 2.5,
		Language: "te",
	}
}

func TestNew(t *testing.T) {
	s := New(testProfile(), 0)
	if !s.SignedIn() {
		t.Error("SignedIn() = false after New")
	}
	if s.Language != "te" {
		t.Errorf("Language = %q, want te", s.Language)
	}

	var empty *Session
	if empty.SignedIn() {
		t.Error("nil session reports signed in")
	}
}

func TestSession_AppendCapsTranscript(t *testing.T) {
	s := New(testProfile(), 3)
	for i := range 5 {
		s.Append(models.ChatMessage{Role: models.RoleUserMessage, Content: strings.Repeat("x", i+1)})
	}

	if len(s.Transcript) != 3 {
		t.Fatalf("len(Transcript) = %d, want 3", len(s.Transcript))
	}
	if s.Transcript[0].Content != "xxx" || s.Transcript[2].Content != "xxxxx" {
		t.Errorf("oldest entries were not dropped: %+v", s.Transcript)
	}
	for _, m := range s.Transcript {
		if m.Timestamp.IsZero() {
			t.Error("Append left a zero timestamp")
		}
	}
}

func TestSession_UnboundedTranscript(t *testing.T) {
	s := New(testProfile(), 0)
	for range 250 {
		s.Append(models.ChatMessage{Role: models.RoleUserMessage, Content: "hi"})
	}
	if len(s.Transcript) != 250 {
		t.Errorf("len(Transcript) = %d, want 250", len(s.Transcript))
	}

	s.SetLimit(10)
	if len(s.Transcript) != 10 {
		t.Errorf("len(Transcript) after SetLimit = %d, want 10", len(s.Transcript))
	}

	s.ClearTranscript()
	if len(s.Transcript) != 0 {
		t.Errorf("len(Transcript) after clear = %d", len(s.Transcript))
	}
}

func TestSession_Apply(t *testing.T) {
	s := New(testProfile(), 0)
	if !s.Apply("pm-kisan") {
		t.Error("first Apply() = false")
	}
	if s.Apply("pm-kisan") {
		t.Error("second Apply() = true")
	}
	s.Apply("kcc")

	if diff := cmp.Diff([]string{"pm-kisan", "kcc"}, s.AppliedSchemes); diff != "" {
		t.Errorf("AppliedSchemes mismatch (-want +got):\n%s", diff)
	}
	if !s.HasApplied("kcc") || s.HasApplied("pmfby") {
		t.Error("HasApplied() returned wrong result")
	}
}

func TestSession_SetLanguage(t *testing.T) {
	s := New(testProfile(), 0)
	s.SetLanguage("hi")
	if s.Language != "hi" || s.Profile.Language != "hi" {
		t.Errorf("SetLanguage did not update both fields: %q %q", s.Language, s.Profile.Language)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	app := testutil.NewSessionApp()

	app.Post("/start", func(c fiber.Ctx) error {
		s := New(testProfile(), 2)
		s.Append(models.ChatMessage{Role: models.RoleUserMessage, Content: "aphid", Timestamp: time.Unix(1, 0)})
		s.Apply("pmfby")
		if err := Start(c, s); err != nil {
			return err
		}
		return c.SendString("ok")
	})
	app.Post("/append", func(c fiber.Ctx) error {
		s, err := Load(c, 2)
		if err != nil {
			return err
		}
		s.Append(models.ChatMessage{Role: models.RoleAssistantMessage, Content: "neem"})
		s.Append(models.ChatMessage{Role: models.RoleUserMessage, Content: "thanks"})
		return Save(c, s)
	})
	app.Get("/read", func(c fiber.Ctx) error {
		s, err := Load(c, 2)
		if err != nil {
			return err
		}
		if !s.SignedIn() {
			return c.SendString("signed-out")
		}
		var parts []string
		for _, m := range s.Transcript {
			parts = append(parts, m.Content)
		}
		return c.SendString(s.Profile.Name + "|" + strings.Join(parts, ",") + "|" + strings.Join(s.AppliedSchemes, ","))
	})
	app.Post("/logout", func(c fiber.Ctx) error {
		if err := Destroy(c); err != nil {
			return err
		}
		return c.SendString("bye")
	})

	client := testutil.NewClient(app)

	_, body := client.Do(t, httpReq(t, "GET", "/read"))
	if body != "signed-out" {
		t.Fatalf("before login: body = %q", body)
	}

	client.Do(t, httpReq(t, "POST", "/start"))
	client.Do(t, httpReq(t, "POST", "/append"))

	_, body = client.Do(t, httpReq(t, "GET", "/read"))
	if want := "Ramesh|neem,thanks|pmfby"; body != want {
		t.Errorf("after append: body = %q, want %q", body, want)
	}

	client.Do(t, httpReq(t, "POST", "/logout"))
	_, body = client.Do(t, httpReq(t, "GET", "/read"))
	if body != "signed-out" {
		t.Errorf("after logout: body = %q", body)
	}
}

func TestLoad_WithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		if _, err := Load(c, 0); err != ErrNoSession {
			t.Errorf("Load() error = %v, want ErrNoSession", err)
		}
		return nil
	})
	if _, err := app.Test(httpReq(t, "GET", "/")); err != nil {
		t.Fatal(err)
	}
}

func httpReq(t *testing.T, method, target string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	return req
}
