package object

import "testing"

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"512 B", 512, false},
		{"2 KB", 2048, false},
		{"1 MB", 1048576, false},
		{"1.5 MB", 1572864, false},
		{"3 GB", 3 << 30, false},
		{"1 TB", 1 << 40, false},
		{"2 kb", 2048, false},
		{"  2 KB  ", 2048, false},
		{"2KB", 0, true},
		{"two KB", 0, true},
		{"-1 KB", 0, true},
		{"2 XB", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFileSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFileSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
