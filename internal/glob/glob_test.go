package glob

import "testing"

func TestSelector_Matches(t *testing.T) {
	tests := []struct {
		name    string
		sel     *Selector
		path    string
		matches bool
	}{
		{"all matches nested", All(), "a/b/c.txt", true},
		{"nil selector matches everything", nil, "a/b/c.txt", true},
		{"pattern matches", New("src/**"), "src/main.go", true},
		{"pattern rejects outside", New("src/**"), "docs/readme.md", false},
		{"single matches exact", Single("patches/x.patch"), "patches/x.patch", true},
		{"single rejects sibling", Single("patches/x.patch"), "patches/y.patch", false},
		{"backslashes normalized", New("src/**"), "src\\main.go", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.Matches(tt.path); got != tt.matches {
				t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.matches)
			}
		})
	}
}

func TestDifference(t *testing.T) {
	content := Difference(All(), New("AUTOPATCHES/**"))
	content = Difference(content, Single("snapshot.patch"))

	if content.Matches("AUTOPATCHES/x.txt.patch") {
		t.Error("difference should exclude the autopatch directory")
	}
	if content.Matches("snapshot.patch") {
		t.Error("difference should exclude the snapshot patch path")
	}
	if !content.Matches("src/x.txt") {
		t.Error("difference should keep regular content files")
	}
}

func TestDifference_NilOperands(t *testing.T) {
	if got := Difference(New("a/**"), nil); got.Matches("b/x") {
		t.Error("nil removed selector should leave base unchanged")
	}
	got := Difference(nil, Single("x.txt"))
	if got.Matches("x.txt") {
		t.Error("nil base should behave as match-all before subtraction")
	}
	if !got.Matches("y.txt") {
		t.Error("nil base should still match other paths")
	}
}

func TestDifference_DoesNotMutateBase(t *testing.T) {
	base := All()
	_ = Difference(base, Single("x.txt"))
	if !base.Matches("x.txt") {
		t.Error("Difference must not mutate the base selector")
	}
}
