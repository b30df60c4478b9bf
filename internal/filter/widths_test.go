package filter

import (
	"strings"
	"testing"
)

const markedTable = `[Para [Str "before"]
,RawBlock (Format "html") "<!-- mdbook-pandoc::table: 4|12 -->"
,Table ("",[],[]) (Caption Nothing []) [(AlignDefault,ColWidthDefault),(AlignDefault,ColWidthDefault)] (TableHead ("",[],[]) [Row ("",[],[]) [Cell ("",[],[]) AlignDefault (RowSpan 1) (ColSpan 1) [Plain [Str "AB"]]
,Cell ("",[],[]) AlignDefault (RowSpan 1) (ColSpan 1) [Plain [Str "0123456789"]]]]) [(TableBody ("",[],[]) (RowHeadColumns 0) [] [])] (TableFoot ("",[],[]) [])]
`

func TestApplyColumnWidths(t *testing.T) {
	t.Parallel()

	got := string(ApplyColumnWidths([]byte(markedTable)))

	if strings.Contains(got, "mdbook-pandoc::table") {
		t.Error("marker block not removed")
	}
	if strings.Contains(got, "ColWidthDefault") {
		t.Error("default column specs not substituted")
	}
	if !strings.Contains(got, "(AlignDefault,(ColWidth 0.25))") {
		t.Errorf("first column width missing:\n%s", got)
	}
	if !strings.Contains(got, "(AlignDefault,(ColWidth 0.75))") {
		t.Errorf("second column width missing:\n%s", got)
	}
	if !strings.Contains(got, `[Para [Str "before"]`+"\n,Table (") {
		t.Errorf("separator around the deleted marker mangled:\n%s", got)
	}
}

func TestApplyColumnWidths_NoMarker(t *testing.T) {
	t.Parallel()

	doc := []byte(`[Para [Str "plain"]]` + "\n")
	got := ApplyColumnWidths(doc)
	if string(got) != string(doc) {
		t.Errorf("document without markers changed: %q", got)
	}
}

func TestApplyColumnWidths_MultipleMarkers(t *testing.T) {
	t.Parallel()

	doc := markedTable + strings.Replace(markedTable, "4|12", "10|10", 1)
	got := string(ApplyColumnWidths([]byte(doc)))

	if strings.Contains(got, "mdbook-pandoc::table") {
		t.Error("a marker survived")
	}
	if !strings.Contains(got, "(ColWidth 0.25)") || !strings.Contains(got, "(ColWidth 0.5)") {
		t.Errorf("per-table widths wrong:\n%s", got)
	}
}

func TestApplyColumnWidths_MalformedSpecLeavesTable(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(markedTable, "4|12", "x|y", 1)
	got := string(ApplyColumnWidths([]byte(doc)))

	if strings.Contains(got, "mdbook-pandoc::table") {
		t.Error("malformed marker should still be deleted")
	}
	if !strings.Contains(got, "ColWidthDefault") {
		t.Error("malformed spec must not rewrite column specs")
	}
}
