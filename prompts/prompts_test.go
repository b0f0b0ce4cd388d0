package prompts

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "prompts.json"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	return s
}

func TestDefaultPromptsComplete(t *testing.T) {
	defaults := DefaultPrompts()

	for _, id := range []string{"idea_forge", "global_compass", "pitch_perfect", "prd_generator"} {
		p, ok := defaults[id]
		if !ok {
			t.Errorf("missing default prompt for %s", id)
			continue
		}
		if p.ID != id || p.Template == "" || p.SystemMessage == "" {
			t.Errorf("incomplete default for %s: %+v", id, p)
		}
		if p.IsCustom {
			t.Errorf("default prompt %s must not be marked custom", id)
		}
		for _, v := range p.Variables {
			if !strings.Contains(p.Template, "{"+v.Name+"}") {
				t.Errorf("%s declares variable %q not present in template", id, v.Name)
			}
		}
	}
}

func TestSubstitute(t *testing.T) {
	template := "Generate {count} ideas about {topic}. Keep {topic} central."
	got := Substitute(template, map[string]string{
		"count": "3",
		"topic": "robotics",
	})
	want := "Generate 3 ideas about robotics. Keep robotics central."
	if got != want {
		t.Errorf("Substitute = %q, want %q", got, want)
	}
}

func TestSubstituteLeavesUnresolvedIntact(t *testing.T) {
	template := "Analyze {product} in {region}"
	got := Substitute(template, map[string]string{"product": "widgets"})
	if got != "Analyze widgets in {region}" {
		t.Errorf("unresolved placeholder altered: %q", got)
	}
}

func TestGetFallsBackToDefault(t *testing.T) {
	s := openTestStore(t)

	p, err := s.Get("idea_forge")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.IsCustom {
		t.Error("untouched tool should return the default prompt")
	}

	if _, err := s.Get("nonexistent"); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestSaveMarksCustomAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.json")
	s, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	p, err := s.Get("pitch_perfect")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	p.Template = "Review this pitch: {pitch_content}"
	if err := s.Save("pitch_perfect", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened, err := OpenStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	got, err := reopened.Get("pitch_perfect")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.IsCustom {
		t.Error("saved prompt must be marked custom")
	}
	if got.Template != "Review this pitch: {pitch_content}" {
		t.Errorf("custom template lost: %q", got.Template)
	}
}

func TestResetRestoresDefault(t *testing.T) {
	s := openTestStore(t)

	p, _ := s.Get("idea_forge")
	p.Template = "changed"
	if err := s.Save("idea_forge", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Reset("idea_forge"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	got, _ := s.Get("idea_forge")
	if got.IsCustom || got.Template == "changed" {
		t.Errorf("reset did not restore the default: custom=%v", got.IsCustom)
	}

	// Resetting an already-default tool is fine.
	if err := s.Reset("idea_forge"); err != nil {
		t.Errorf("second reset failed: %v", err)
	}

	if err := s.Reset("nonexistent"); err == nil {
		t.Error("expected error when resetting unknown tool")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := openTestStore(t)

	p, _ := src.Get("prd_generator")
	p.Template = "Draft a PRD for {feature_name}"
	if err := src.Save("prd_generator", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := src.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	dst := openTestStore(t)
	if err := dst.Import(data); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got, err := dst.Get("prd_generator")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Template != "Draft a PRD for {feature_name}" {
		t.Errorf("imported template lost: %q", got.Template)
	}
	if !got.IsCustom {
		t.Error("imported prompts must be marked custom")
	}
}

func TestImportRejectsInvalidInputWithoutClobbering(t *testing.T) {
	s := openTestStore(t)

	p, _ := s.Get("idea_forge")
	p.Template = "keep me"
	if err := s.Save("idea_forge", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Import("not json"); err == nil {
		t.Error("expected error for malformed input")
	}
	if err := s.Import(`{"version":"1.0.0"}`); err == nil {
		t.Error("expected error for missing prompts map")
	}
	if err := s.Import(`{"version":"1.0.0","prompts":{"x":{"id":"x","template":""}}}`); err == nil {
		t.Error("expected error for empty template")
	}

	got, _ := s.Get("idea_forge")
	if got.Template != "keep me" {
		t.Errorf("failed import must not modify the collection: %q", got.Template)
	}
}
