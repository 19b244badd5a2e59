package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/byteness/pasmigrate/migrate"
)

func testRecords() []*migrate.Record {
	return []*migrate.Record{
		{
			SecretTemplateName: "Unix Account (SSH)",
			SecretName:         `web-01\root`,
			Target:             "web-01",
			Username:           "root",
			Password:           "pw",
			Folder:             "Linux",
			SourceID:           "a1",
			SourceKind:         migrate.SourceAccount,
			HasConflicts:       true,
		},
		{
			SecretName: "Cfg",
			Target:     "infra",
			Password:   "hunter2",
			SourceID:   "s1",
			SourceKind: migrate.SourceSecret,
		},
	}
}

func TestJSONSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	s := &JSONSink{Path: path}

	if s.Name() != "json" {
		t.Errorf("Name() = %q, want json", s.Name())
	}

	report, err := s.Write(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.Written != 2 || len(report.Failed) != 0 {
		t.Errorf("report = %+v, want 2 written", report)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d records, want 2", len(decoded))
	}
	if decoded[0]["secret_name"] != `web-01\root` {
		t.Errorf("secret_name = %v", decoded[0]["secret_name"])
	}
	if decoded[0]["has_conflicts"] != true {
		t.Errorf("has_conflicts = %v, want true", decoded[0]["has_conflicts"])
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("output mode = %o, want 0600", info.Mode().Perm())
	}
}

func TestCSVSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.csv")
	s := &CSVSink{Path: path}

	report, err := s.Write(context.Background(), testRecords())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report.Written != 2 {
		t.Errorf("Written = %d, want 2", report.Written)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "template" || rows[0][1] != "secret_name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != `web-01\root` || rows[1][7] != "true" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[2][9] != "secret" {
		t.Errorf("row 2 source_kind = %q, want secret", rows[2][9])
	}
}
