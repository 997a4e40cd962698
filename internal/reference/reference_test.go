package reference

import "testing"

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	catalog, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return catalog
}

func TestFindStatePrograms(t *testing.T) {
	programs, err := mustCatalog(t).FindStatePrograms("MN", []string{"pmap", "snbc"})
	if err != nil {
		t.Fatalf("FindStatePrograms: %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("got %d programs, want 2", len(programs))
	}
	if programs[0].Name != "PMAP" || !programs[1].IsRateProgram {
		t.Fatalf("unexpected programs: %+v", programs)
	}
}

func TestFindStateProgramsUnknownID(t *testing.T) {
	if _, err := mustCatalog(t).FindStatePrograms("MN", []string{"nope"}); err == nil {
		t.Fatal("expected error for unknown program id")
	}
}

func TestFindStateProgramsUnknownState(t *testing.T) {
	if _, err := mustCatalog(t).FindStatePrograms("XX", nil); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestStateCodesSorted(t *testing.T) {
	codes := mustCatalog(t).StateCodes()
	if len(codes) == 0 {
		t.Fatal("catalog is empty")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

func TestTwoCatalogsAreIndependent(t *testing.T) {
	a := mustCatalog(t)
	b := mustCatalog(t)
	if a == b {
		t.Fatal("LoadCatalog returned a shared instance")
	}
	if len(a.StateCodes()) != len(b.StateCodes()) {
		t.Fatal("catalogs disagree on state codes")
	}
}
