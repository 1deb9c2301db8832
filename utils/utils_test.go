package utils

import (
	"bytes"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUtils_MinMaxClamp(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(int32(7), Abs(int32(-7)))
	assert.Equal(2.5, Abs(-2.5))

	assert.Equal(0.0, Clamp(-3.5, 0, 255))
	assert.Equal(255.0, Clamp(300.0, 0, 255))
	assert.Equal(int16(12), Clamp(int16(12), -10, 20))
}

func TestUtils_DecorateText(t *testing.T) {
	s := DecorateText("done", SuccessMessage)
	if !strings.HasPrefix(s, SuccessColor) || !strings.HasSuffix(s, DefaultColor) {
		t.Errorf("unexpected decoration: %q", s)
	}
	if got := DecorateText("plain", MessageType(42)); got != "plain" {
		t.Errorf("unknown message types should not be decorated, got %q", got)
	}
}

func TestUtils_FormatTime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m 30.00s"},
		{2*time.Hour + 3*time.Minute, "2h 3m 0.00s"},
		{26 * time.Hour, "1d 2h 0m 0.00s"},
	}
	for _, tc := range cases {
		if got := FormatTime(tc.d); got != tc.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestUtils_SpinnerStopMessage(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "working", time.Millisecond, false)
	s.StopMsg = "finished"

	s.Start()
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	s.Stop()

	assert.True(t, strings.HasSuffix(out.String(), "finished"))
	assert.Contains(t, out.String(), "working")
}

func TestUtils_FormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2<<20))
}

func TestUtils_SpinnerSetMessage(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "downloading", time.Millisecond, false)

	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.SetMessage("processing")
	time.Sleep(5 * time.Millisecond)
	s.Stop()

	assert.Contains(t, out.String(), "downloading")
	assert.Contains(t, out.String(), "processing")
}

func TestUtils_SpinnerRestoreCursor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("cursor sequences are not written on windows")
	}
	var out syncBuffer
	NewSpinnerTo(&out, "working", time.Millisecond, true).RestoreCursor()
	assert.Equal(t, "\033[?25h", out.String())

	var visible syncBuffer
	NewSpinnerTo(&visible, "working", time.Millisecond, false).RestoreCursor()
	assert.Empty(t, visible.String())
}
