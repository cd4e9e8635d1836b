package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docubot/internal/models"
)

// fakeCaptioner returns a deterministic description derived from the
// image bytes, or fails for images whose payload is in failOn.
type fakeCaptioner struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]error
}

func (f *fakeCaptioner) Caption(_ context.Context, image []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failOn != nil {
		if err, ok := f.failOn[string(image)]; ok {
			return "", err
		}
	}
	return "description of " + string(image), nil
}

func buildZip(t *testing.T, files map[string][]byte, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write(files[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestCaptionAllPreservesOrder(t *testing.T) {
	svc := NewService(&fakeCaptioner{}, 3)

	refs := make([]imageRef, 8)
	for i := range refs {
		refs[i] = imageRef{
			seg:      0,
			display:  1,
			ordinal:  i + 1,
			filename: fmt.Sprintf("page_1_img_%d.png", i+1),
			data:     []byte(fmt.Sprintf("img-%d", i)),
		}
	}

	markers := svc.captionAll(context.Background(), models.KindPage, refs)
	require.Len(t, markers, len(refs))
	for i, m := range markers {
		assert.Contains(t, m, fmt.Sprintf("page_1_img_%d.png", i+1))
		assert.Contains(t, m, fmt.Sprintf("description of img-%d", i))
	}
}

func TestCaptionAllRendersFailureMarkers(t *testing.T) {
	captioner := &fakeCaptioner{failOn: map[string]error{
		"bad": errors.New("model unavailable"),
	}}
	svc := NewService(captioner, 2)

	refs := []imageRef{
		{seg: 0, display: 1, ordinal: 1, filename: "page_1_img_1.png", data: []byte("good")},
		{seg: 0, display: 1, ordinal: 2, filename: "page_1_img_2.png", data: []byte("bad")},
		{seg: 0, display: 1, ordinal: 3, err: errors.New("corrupt stream")},
	}

	markers := svc.captionAll(context.Background(), models.KindPage, refs)
	assert.Contains(t, markers[0], "[Image: page_1_img_1.png]")
	assert.Contains(t, markers[1], "[Image Extraction Failed: Page 1, Image 2]")
	assert.Contains(t, markers[1], "model unavailable")
	assert.Contains(t, markers[2], "[Image Extraction Failed: Page 1, Image 3]")
	assert.Contains(t, markers[2], "corrupt stream")
}

func TestCaptionAllWithoutCaptioner(t *testing.T) {
	svc := NewService(nil, 1)
	markers := svc.captionAll(context.Background(), models.KindSlide, []imageRef{
		{seg: 0, display: 2, ordinal: 1, data: []byte("x")},
	})
	assert.Contains(t, markers[0], "[Image Extraction Failed: Slide 2, Image 1]")
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	svc := NewService(nil, 1)
	_, err := svc.Extract(context.Background(), []byte("x"), "f.bin", models.Format(99))
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}
