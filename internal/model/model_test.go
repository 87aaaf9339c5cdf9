package model

import "testing"

func TestChecklistProgress(t *testing.T) {
	c := Card{Checklist: []ChecklistItem{
		{Text: "a", Completed: true},
		{Text: "b"},
		{Text: "c", Completed: true},
	}}
	done, total := c.ChecklistProgress()
	if done != 2 || total != 3 {
		t.Errorf("got %d/%d, want 2/3", done, total)
	}

	done, total = Card{}.ChecklistProgress()
	if done != 0 || total != 0 {
		t.Errorf("empty checklist: got %d/%d", done, total)
	}
}

func TestHasMember(t *testing.T) {
	c := Card{AssignedMembers: []string{"u1", "u2"}}
	if !c.HasMember("u2") {
		t.Error("assigned member not found")
	}
	if c.HasMember("u3") {
		t.Error("unassigned member reported")
	}
}

func TestDescriptionPreview(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain", "Fix the login bug", "Fix the login bug"},
		{"first paragraph only", "First line here.\n\nSecond paragraph.", "First line here."},
		{"strips emphasis", "Do it **now** please", "Do it now please"},
		{"skips heading", "# Title\n\nBody text", "Body text"},
		{"soft break joins", "one\ntwo", "one two"},
		{"empty", "", ""},
		{"whitespace only", "  \n\t", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DescriptionPreview(tc.in); got != tc.want {
				t.Errorf("DescriptionPreview(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
