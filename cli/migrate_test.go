package cli

import (
	"context"
	"testing"

	"github.com/byteness/pasmigrate/sink"
)

func TestBuildSink(t *testing.T) {
	tests := []struct {
		name     string
		input    MigrateCommandInput
		wantName string
	}{
		{"json", MigrateCommandInput{SinkName: "json", Out: "/tmp/r.json"}, "json"},
		{"csv", MigrateCommandInput{SinkName: "csv", Out: "/tmp/r.csv"}, "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := buildSink(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("buildSink() error = %v", err)
			}
			if s.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.wantName)
			}
		})
	}
}

func TestBuildSink_FileSinkPaths(t *testing.T) {
	s, err := buildSink(context.Background(), MigrateCommandInput{SinkName: "json", Out: "/tmp/out.json"})
	if err != nil {
		t.Fatal(err)
	}
	js, ok := s.(*sink.JSONSink)
	if !ok {
		t.Fatalf("sink type = %T, want *sink.JSONSink", s)
	}
	if js.Path != "/tmp/out.json" {
		t.Errorf("Path = %q", js.Path)
	}
}

func TestBuildSink_Unknown(t *testing.T) {
	if _, err := buildSink(context.Background(), MigrateCommandInput{SinkName: "carrier-pigeon"}); err == nil {
		t.Error("buildSink() with unknown sink returned nil error")
	}
}
