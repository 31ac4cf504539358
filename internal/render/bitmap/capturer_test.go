package bitmap_test

import (
	"bytes"
	"context"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/port"
	"tmsbilling/internal/render/bitmap"
)

func encodeSnapshot(t *testing.T, w, h int, fill color.Color, format imaging.Format) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, fill), format))
	return &buf
}

func TestCapturer_ScalesSnapshot(t *testing.T) {
	snap := encodeSnapshot(t, 100, 250, color.NRGBA{A: 255}, imaging.PNG)

	bmp, err := bitmap.NewCapturer().Capture(context.Background(), port.Region{Width: 100, Snapshot: snap}, port.CaptureOptions{Scale: 2})

	require.NoError(t, err)
	assert.Equal(t, 200, bmp.Width)
	assert.Equal(t, 500, bmp.Height)
	assert.Equal(t, 200, bmp.Image.Bounds().Dx())
}

func TestCapturer_FlattensTransparencyOntoBackground(t *testing.T) {
	snap := encodeSnapshot(t, 10, 10, color.NRGBA{}, imaging.PNG)

	bmp, err := bitmap.NewCapturer().Capture(context.Background(), port.Region{Snapshot: snap}, port.CaptureOptions{Scale: 1, Background: color.White})

	require.NoError(t, err)
	r, g, b, a := bmp.Image.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})
}

func TestCapturer_DecodesJPEG(t *testing.T) {
	snap := encodeSnapshot(t, 30, 40, color.NRGBA{R: 255, A: 255}, imaging.JPEG)

	bmp, err := bitmap.NewCapturer().Capture(context.Background(), port.Region{Snapshot: snap}, port.CaptureOptions{Scale: 1.5})

	require.NoError(t, err)
	assert.Equal(t, 45, bmp.Width)
	assert.Equal(t, 60, bmp.Height)
}

func TestCapturer_InvalidSnapshot(t *testing.T) {
	_, err := bitmap.NewCapturer().Capture(context.Background(), port.Region{Snapshot: strings.NewReader("not an image")}, port.CaptureOptions{Scale: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestCapturer_MissingSnapshot(t *testing.T) {
	_, err := bitmap.NewCapturer().Capture(context.Background(), port.Region{}, port.CaptureOptions{Scale: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
}

func TestCapturer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap := encodeSnapshot(t, 10, 10, color.White, imaging.PNG)

	_, err := bitmap.NewCapturer().Capture(ctx, port.Region{Snapshot: snap}, port.CaptureOptions{Scale: 1})

	assert.ErrorIs(t, err, context.Canceled)
}
