package mdast

import "testing"

func TestListItem_Numbered(t *testing.T) {
	tests := []struct {
		leader string
		want   bool
	}{
		{"1.", true},
		{"12)", true},
		{"-", false},
		{"*", false},
		{"+", false},
		{"", false},
	}
	for _, tt := range tests {
		li := &ListItem{Leader: tt.leader}
		if got := li.Numbered(); got != tt.want {
			t.Errorf("leader %q: expected Numbered()=%v, got %v", tt.leader, tt.want, got)
		}
	}
}

func TestText_ConcatenatesRawContent(t *testing.T) {
	p := &Paragraph{Children: []Node{
		Raw("Hello"),
		&LineBreak{},
		&Strong{Children: []Node{Raw("bold")}},
		&Link{Target: "https://example.com", Children: []Node{Raw(" link")}},
	}}
	want := "Hello bold link"
	if got := Text(p); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestText_Table(t *testing.T) {
	tbl := &Table{
		Header: &TableRow{Cells: []*TableCell{{Children: []Node{Raw("A")}}}},
		Rows:   []*TableRow{{Cells: []*TableCell{{Children: []Node{Raw("b")}}}}},
	}
	if got := Text(tbl); got != "Ab" {
		t.Errorf("expected %q, got %q", "Ab", got)
	}
}

func TestChildren_Leaves(t *testing.T) {
	for _, n := range []Node{Raw("x"), &LineBreak{}, &ThematicBreak{}, &Table{}} {
		if c := Children(n); c != nil {
			t.Errorf("%s: expected nil children, got %v", n.Kind(), c)
		}
	}
}
