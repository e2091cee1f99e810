package auth

import "testing"

func TestPermissionsAllows(t *testing.T) {
	p := NewPermissions(CapExport)

	if !p.Allows(CapExport) {
		t.Fatal("expected export capability granted")
	}
	if p.Allows(CapWriteViews) {
		t.Fatal("expected view writes denied")
	}
	if p.Allows(CapWriteMappings) {
		t.Fatal("expected mapping writes denied")
	}
}

func TestPermissionsListIsSorted(t *testing.T) {
	p := NewPermissions(CapWriteViews, CapExport, CapWriteMappings)

	got := p.List()
	want := []string{"export", "mappings:write", "views:write"}
	if len(got) != len(want) {
		t.Fatalf("expected %d capabilities, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sorted list %v, got %v", want, got)
		}
	}
}

func TestEmptyPermissionsDenyEverything(t *testing.T) {
	p := NewPermissions()
	for _, c := range []Capability{CapExport, CapWriteViews, CapWriteMappings} {
		if p.Allows(c) {
			t.Fatalf("expected %q denied by default", c)
		}
	}
	if len(p.List()) != 0 {
		t.Fatalf("expected empty list, got %v", p.List())
	}
}
