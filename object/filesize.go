package object

import (
	"fmt"
	"strconv"
	"strings"
)

// fileSizeUnits maps the tenant's size-unit suffixes to byte multipliers.
// Units are powers of 1024, not 1000.
var fileSizeUnits = map[string]int64{
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
	"TB": 1 << 40,
}

// ParseFileSize converts a "<number> <unit>" size string (e.g. "2 KB",
// "1.5 MB") to bytes. File-secret rows carry sizes in this display form;
// aggregation needs exact byte values.
func ParseFileSize(s string) (int64, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 {
		return 0, fmt.Errorf("unparseable file size %q", s)
	}

	mult, ok := fileSizeUnits[strings.ToUpper(fields[1])]
	if !ok {
		return 0, fmt.Errorf("unknown file size unit %q", fields[1])
	}

	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unparseable file size %q", s)
	}
	return int64(n * float64(mult)), nil
}
