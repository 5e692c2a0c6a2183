package testfixtures

import "testing"

func TestIDGeneratorSequence(t *testing.T) {
	gen := NewIDGenerator()

	first, _ := gen.NextUUID()
	second, _ := gen.NextUUID()
	if first == second {
		t.Fatal("expected distinct ids")
	}
	if first.Version() != 7 {
		t.Fatalf("expected version 7, got %d", first.Version())
	}
	if got := first.String(); got != "01900000-0000-7000-8000-000000000001" {
		t.Fatalf("unexpected first id %s", got)
	}

	slug, _ := gen.NextSlug()
	if slug != "slug0003" || len(slug) != 8 {
		t.Fatalf("unexpected slug %q", slug)
	}

	gen.Reset()
	again, _ := gen.NextUUID()
	if again != first {
		t.Fatalf("expected %s after reset, got %s", first, again)
	}
}
