package aggregate

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
)

var travelRules = []byte(`
root = "Travel"

[[levels]]
name = "season"
[[levels.categories]]
name = "Spring"
keywords = ["spring", "april"]
[[levels.categories]]
name = "Summer"
keywords = ["summer", "july", "beach"]

[[levels]]
name = "activity"
default = "General"
[[levels.categories]]
name = "Adventure"
keywords = ["hike", "trek"]
`)

func TestParseRules(t *testing.T) {
	rs, err := ParseRules(travelRules)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if rs.Root != "Travel" {
		t.Errorf("Root = %q, want Travel", rs.Root)
	}
	if len(rs.Levels) != 2 {
		t.Fatalf("levels = %d, want 2", len(rs.Levels))
	}
	if rs.Levels[0].Name != "season" || len(rs.Levels[0].Categories) != 2 {
		t.Errorf("level 0 = %+v", rs.Levels[0])
	}
	if rs.Levels[1].Default != "General" {
		t.Errorf("level 1 default = %q, want General", rs.Levels[1].Default)
	}
}

func TestParseRulesValidation(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want error
	}{
		{"no levels", `root = "x"`, ErrNoLevels},
		{"empty level", "[[levels]]\nname = \"a\"", ErrEmptyLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tt.toml))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseRulesDefaultRoot(t *testing.T) {
	rs, err := ParseRules([]byte("[[levels]]\nname = \"a\"\n[[levels.categories]]\nname = \"X\"\nkeywords = [\"x\"]"))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	if rs.Root != "root" {
		t.Errorf("Root = %q, want root", rs.Root)
	}
}

func TestLevelInfer(t *testing.T) {
	lvl := Level{
		Name:    "season",
		Default: "Other",
		Categories: []Category{
			{Name: "Spring", Keywords: []string{"spring", "april"}},
			{Name: "Summer", Keywords: []string{"summer"}},
		},
	}

	tests := []struct {
		text string
		want string
	}{
		{"A lovely SPRING walk", "Spring"},       // case-insensitive
		{"booked for april", "Spring"},           // any keyword
		{"spring or summer, spring wins", "Spring"}, // first category wins
		{"nothing seasonal here", "Other"},       // default
	}

	for _, tt := range tests {
		got, ok := lvl.Infer(tt.text)
		if !ok || got != tt.want {
			t.Errorf("Infer(%q) = %q/%v, want %q/true", tt.text, got, ok, tt.want)
		}
	}

	lvl.Default = ""
	if _, ok := lvl.Infer("nothing seasonal here"); ok {
		t.Error("Infer without default should report no match")
	}
}

func TestAggregate(t *testing.T) {
	rules, err := ParseRules(travelRules)
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}

	records := []Record{
		{Text: "spring hike in the hills"},
		{Text: "lazy summer beach day"},
		{Text: "another spring trek", Weight: 3},
		{Text: "winter skiing"}, // no season match, skipped
	}

	raw, stats := Aggregate(records, rules)

	if stats.Records != 4 {
		t.Errorf("Records = %d, want 4", stats.Records)
	}
	if stats.Matched != 3 {
		t.Errorf("Matched = %d, want 3", stats.Matched)
	}
	if stats.Leaves != 3 {
		t.Errorf("Leaves = %d, want 3", stats.Leaves)
	}
	if raw.Name != "Travel" {
		t.Errorf("root name = %q, want Travel", raw.Name)
	}

	if got := leafValue(t, raw, "Spring", "Adventure"); got != 4 {
		t.Errorf("Spring/Adventure = %v, want 1 + weighted 3", got)
	}
	if got := leafValue(t, raw, "Summer", "General"); got != 1 {
		t.Errorf("Summer/General = %v, want 1", got)
	}
}

func TestAggregateNonPositiveWeightCountsAsOne(t *testing.T) {
	rules, _ := ParseRules(travelRules)
	records := []Record{
		{Text: "spring hike", Weight: 0},
		{Text: "spring hike", Weight: -5},
	}

	raw, _ := Aggregate(records, rules)
	if got := leafValue(t, raw, "Spring", "Adventure"); got != 2 {
		t.Errorf("leaf value = %v, want 2", got)
	}
}

func TestAggregateNoMatches(t *testing.T) {
	rules, _ := ParseRules(travelRules)
	raw, stats := Aggregate([]Record{{Text: "winter skiing"}}, rules)

	if stats.Matched != 0 {
		t.Errorf("Matched = %d, want 0", stats.Matched)
	}
	// An all-skipped run leaves a bare root leaf with value zero.
	if !raw.IsLeaf() {
		t.Errorf("root should be a leaf when nothing matched, got %+v", raw)
	}
}

func TestReadJSONArray(t *testing.T) {
	in := `[{"text": "a"}, {"text": "b", "weight": 2}]`
	records, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := []Record{{Text: "a"}, {Text: "b", Weight: 2}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("records = %+v, want %+v", records, want)
	}
}

func TestReadJSONLines(t *testing.T) {
	in := "{\"text\": \"a\"}\n\n{\"text\": \"b\"}\n"
	records, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(records) != 2 || records[0].Text != "a" || records[1].Text != "b" {
		t.Errorf("records = %+v", records)
	}
}

func TestReadJSONMalformedLine(t *testing.T) {
	in := "{\"text\": \"a\"}\n{broken\n"
	if _, err := ReadJSON(strings.NewReader(in)); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestReadCSV(t *testing.T) {
	in := "id,comment,score\n1,spring hike,5\n2,,3\n3,beach day,4\n"
	records, err := ReadCSV(strings.NewReader(in), "comment")
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (empty cell skipped)", len(records))
	}
	if records[0].Text != "spring hike" || records[1].Text != "beach day" {
		t.Errorf("records = %+v", records)
	}
}

func TestReadRecordsFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "records.csv")
	if err := os.WriteFile(csvPath, []byte("text\nspring hike\n"), 0644); err != nil {
		t.Fatal(err)
	}
	records, err := ReadRecordsFile(csvPath, "")
	if err != nil {
		t.Fatalf("ReadRecordsFile csv: %v", err)
	}
	if len(records) != 1 || records[0].Text != "spring hike" {
		t.Errorf("csv records = %+v", records)
	}

	jsonPath := filepath.Join(dir, "records.json")
	if err := os.WriteFile(jsonPath, []byte(`[{"text": "beach day"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	records, err = ReadRecordsFile(jsonPath, "")
	if err != nil {
		t.Fatalf("ReadRecordsFile json: %v", err)
	}
	if len(records) != 1 || records[0].Text != "beach day" {
		t.Errorf("json records = %+v", records)
	}

	if _, err := ReadRecordsFile(filepath.Join(dir, "missing.json"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeRecords(t *testing.T) {
	csvData := []byte("text\nspring hike\n")
	records, err := DecodeRecords("input.CSV", csvData, "")
	if err != nil {
		t.Fatalf("DecodeRecords csv: %v", err)
	}
	if len(records) != 1 || records[0].Text != "spring hike" {
		t.Errorf("csv records = %+v", records)
	}

	jsonData := []byte(`[{"text": "beach day"}]`)
	records, err = DecodeRecords("input.jsonl", jsonData, "")
	if err != nil {
		t.Fatalf("DecodeRecords json: %v", err)
	}
	if len(records) != 1 || records[0].Text != "beach day" {
		t.Errorf("json records = %+v", records)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	in := "id,comment\n1,hello\n"
	if _, err := ReadCSV(strings.NewReader(in), "text"); err == nil {
		t.Error("expected error for missing column")
	}
}

// leafValue walks raw following child names below the root and returns the
// leaf's value.
func leafValue(t *testing.T, raw *hierarchy.Raw, path ...string) float64 {
	t.Helper()
	cur := raw
steps:
	for _, name := range path {
		for i := range cur.Children {
			if cur.Children[i].Name == name {
				cur = &cur.Children[i]
				continue steps
			}
		}
		t.Fatalf("path %v not found under %q", path, raw.Name)
	}
	if cur.Value == nil {
		t.Fatalf("node %v has no value", path)
	}
	return *cur.Value
}
