package replay

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/pointertrack/internal/pointer"
)

// Format identifies an event stream encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ErrUnsupportedFormat is returned for stream formats other than jsonl and csv.
var ErrUnsupportedFormat = errors.New("unsupported event format")

// FormatFromPath infers the stream format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: cannot infer format of %q", ErrUnsupportedFormat, path)
	}
}

// Decode reads a full event stream in the given format.
func Decode(r io.Reader, format Format) ([]Op, error) {
	switch format {
	case FormatJSONL:
		return DecodeJSONL(r)
	case FormatCSV:
		return DecodeCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// record is the JSON Lines schema. time_ms is milliseconds on the stream's
// own clock and may be fractional.
type record struct {
	Action    string  `json:"action"`
	PointerID *int    `json:"pointer_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	OffsetX   float64 `json:"offset_x"`
	OffsetY   float64 `json:"offset_y"`
	TimeMs    float64 `json:"time_ms"`
}

// DecodeJSONL reads one JSON object per line. Blank lines and lines starting
// with '#' are skipped.
func DecodeJSONL(r io.Reader) ([]Op, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var ops []Op
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse event: %w", line, err)
		}
		action, err := ParseAction(rec.Action)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var id int
		switch {
		case rec.PointerID != nil:
			id = *rec.PointerID
		case action != ActionReset:
			return nil, fmt.Errorf("line %d: missing pointer_id", line)
		}
		ops = append(ops, Op{
			Action: action,
			Event: pointer.Event{
				PointerID: id,
				X:         rec.X,
				Y:         rec.Y,
				OffsetX:   rec.OffsetX,
				OffsetY:   rec.OffsetY,
				Time:      streamTime(rec.TimeMs),
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return ops, nil
}

var csvRequired = []string{"action", "pointer_id", "x", "y", "time_ms"}

// DecodeCSV reads a CSV stream whose header names the columns action,
// pointer_id, x, y, offset_x, offset_y and time_ms in any order. The offset
// columns are optional and default to zero. Reset rows may leave every column
// but action and time_ms blank.
func DecodeCSV(r io.Reader) ([]Op, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvRequired {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("CSV header missing column %q", name)
		}
	}

	var ops []Op
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		op, err := parseCSVRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseCSVRow(row []string, cols map[string]int) (Op, error) {
	action, err := ParseAction(row[cols["action"]])
	if err != nil {
		return Op{}, err
	}
	var id int
	if raw := strings.TrimSpace(row[cols["pointer_id"]]); raw != "" || action != ActionReset {
		if id, err = strconv.Atoi(raw); err != nil {
			return Op{}, fmt.Errorf("invalid pointer_id: %w", err)
		}
	}

	floats := map[string]float64{}
	for _, name := range []string{"x", "y", "offset_x", "offset_y", "time_ms"} {
		i, ok := cols[name]
		if !ok {
			continue
		}
		raw := strings.TrimSpace(row[i])
		if raw == "" && action == ActionReset && name != "time_ms" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Op{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		floats[name] = v
	}

	return Op{
		Action: action,
		Event: pointer.Event{
			PointerID: id,
			X:         floats["x"],
			Y:         floats["y"],
			OffsetX:   floats["offset_x"],
			OffsetY:   floats["offset_y"],
			Time:      streamTime(floats["time_ms"]),
		},
	}, nil
}

// streamTime maps stream milliseconds onto a UTC time anchored at the Unix
// epoch, keeping microsecond precision.
func streamTime(ms float64) time.Time {
	return time.UnixMicro(int64(math.Round(ms * 1000))).UTC()
}
