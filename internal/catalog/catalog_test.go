package catalog

import "testing"

func TestAllIsStableAndCopied(t *testing.T) {
	a := All()
	b := All()

	if len(a) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(a))
	}
	if a[0] != "08:00" || a[len(a)-1] != "16:30" {
		t.Errorf("unexpected grid bounds: %s .. %s", a[0], a[len(a)-1])
	}

	// Mutating one copy must not affect the next call.
	a[0] = "00:00"
	if b[0] != "08:00" || All()[0] != "08:00" {
		t.Error("All() returned a shared slice")
	}
}

func TestLunchGapExcluded(t *testing.T) {
	for _, tok := range []Slot{"12:00", "12:30"} {
		if IsValid(tok) {
			t.Errorf("%s should not be bookable", tok)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Slot
	}{
		{"H08_00", "08:00"},
		{"h16_30", "16:30"},
		{"08:00", "08:00"},
		{"  13:30 ", "13:30"},
		{"H12_00", "12:00"}, // normalizes fine, just not valid
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIndexOrdering(t *testing.T) {
	if Index("08:00") != 0 {
		t.Errorf("08:00 should be first")
	}
	if Index("11:30") >= Index("13:00") {
		t.Error("grid order must skip the lunch gap without reordering")
	}
	if Index("12:00") != -1 || Index("bogus") != -1 {
		t.Error("non-members must report -1")
	}
}

func TestTimeOfDay(t *testing.T) {
	h, m, ok := TimeOfDay("13:30")
	if !ok || h != 13 || m != 30 {
		t.Errorf("TimeOfDay(13:30) = %d:%d ok=%v", h, m, ok)
	}
	if _, _, ok := TimeOfDay("12:00"); ok {
		t.Error("non-member slots must not resolve")
	}
}
