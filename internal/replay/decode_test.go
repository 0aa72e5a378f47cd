package replay

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/pointertrack/internal/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Action{
		"down":   ActionDown,
		" MOVE ": ActionMove,
		"Up":     ActionUp,
		"cancel": ActionCancel,
		"reset":  ActionReset,
	} {
		got, err := ParseAction(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseAction("hover")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDecodeJSONL(t *testing.T) {
	t.Parallel()

	input := `# two-finger tap
{"action":"down","pointer_id":1,"x":10,"y":20,"offset_x":1,"offset_y":2,"time_ms":0}

{"action":"move","pointer_id":1,"x":12.5,"y":20,"time_ms":16.5}
{"action":"up","pointer_id":1,"x":12.5,"y":20,"time_ms":33}
`
	ops, err := DecodeJSONL(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, Op{
		Action: ActionDown,
		Event: pointer.Event{
			PointerID: 1, X: 10, Y: 20, OffsetX: 1, OffsetY: 2,
			Time: time.Unix(0, 0).UTC(),
		},
	}, ops[0])
	assert.Equal(t, ActionMove, ops[1].Action)
	assert.Equal(t, 12.5, ops[1].Event.X)
	assert.Equal(t, time.Unix(0, 0).Add(16500*time.Microsecond).UTC(), ops[1].Event.Time)
	assert.Equal(t, ActionUp, ops[2].Action)
}

func TestDecodeJSONLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
		is      error
	}{
		{"bad json", `{"action":`, "line 1", nil},
		{"missing pointer", `{"action":"down","x":1}`, "missing pointer_id", nil},
		{"unknown action", "\n" + `{"action":"hover","pointer_id":1}`, "line 2", ErrUnknownAction},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeJSONL(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestDecodeCSV(t *testing.T) {
	t.Parallel()

	input := `pointer_id,action,x,y,time_ms,offset_x,offset_y
# comment rows are skipped
1,down,10,20,0,1,2
1,move,11,21,8.25,2,3
2,down,50,60,10,5,6
1,cancel,11,21,12,2,3
`
	ops, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, pointer.Event{
		PointerID: 1, X: 11, Y: 21, OffsetX: 2, OffsetY: 3,
		Time: time.Unix(0, 0).Add(8250 * time.Microsecond).UTC(),
	}, ops[1].Event)
	assert.Equal(t, ActionCancel, ops[3].Action)
	assert.Equal(t, 2, ops[2].Event.PointerID)
}

func TestDecodeResetWithoutPointer(t *testing.T) {
	t.Parallel()

	ops, err := DecodeJSONL(strings.NewReader(`{"action":"reset","time_ms":40}`))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, ActionReset, ops[0].Action)
	assert.Equal(t, 0, ops[0].Event.PointerID)

	ops, err = DecodeCSV(strings.NewReader(`action,pointer_id,x,y,time_ms
down,3,1,2,0
reset,,,,40
`))
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, ActionReset, ops[1].Action)
	assert.Equal(t, time.Unix(0, 0).Add(40*time.Millisecond).UTC(), ops[1].Event.Time)

	// Only reset rows may omit the pointer.
	_, err = DecodeCSV(strings.NewReader(`action,pointer_id,x,y,time_ms
move,,1,2,0
`))
	assert.ErrorContains(t, err, "invalid pointer_id")
}

func TestDecodeCSVOptionalOffsets(t *testing.T) {
	t.Parallel()

	ops, err := DecodeCSV(strings.NewReader("action,pointer_id,x,y,time_ms\ndown,4,1,2,3\n"))
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, 0.0, ops[0].Event.OffsetX)
	assert.Equal(t, 0.0, ops[0].Event.OffsetY)
}

func TestDecodeCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing column", "action,x,y,time_ms\ndown,1,2,3\n", `missing column "pointer_id"`},
		{"bad pointer id", "action,pointer_id,x,y,time_ms\ndown,one,1,2,3\n", "line 2: invalid pointer_id"},
		{"bad float", "action,pointer_id,x,y,time_ms\ndown,1,1,wide,3\n", "invalid y"},
		{"unknown action", "action,pointer_id,x,y,time_ms\nhover,1,1,2,3\n", "unknown action"},
		{"short row", "action,pointer_id,x,y,time_ms\ndown,1,1\n", "failed to read CSV row"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeCSVEmpty(t *testing.T) {
	t.Parallel()

	ops, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	f, err := FormatFromPath("events.JSONL")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	f, err = FormatFromPath("/tmp/pinch.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromPath("events.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(strings.NewReader(""), Format("xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
