// Package extract converts raw document bytes into a linear text
// stream, fusing captions for embedded images into the page or slide
// they belong to.
package extract

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"docubot/internal/caption"
	"docubot/internal/models"
)

// Service extracts documents, delegating image description to a
// Captioner. Captioning of a document's images runs on a small worker
// pool; captions re-enter their segment in original order.
type Service struct {
	captioner caption.Captioner
	workers   int
}

func NewService(captioner caption.Captioner, workers int) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{captioner: captioner, workers: workers}
}

// Extract dispatches on the format tag. The returned segments are in
// the original page/slide order.
func (s *Service) Extract(ctx context.Context, data []byte, filename string, format models.Format) (models.ExtractedText, error) {
	log.Debug().Str("file", filename).Str("format", format.String()).Int("bytes", len(data)).Msg("Extracting document")
	switch format {
	case models.FormatPdf:
		return s.extractPDF(ctx, data)
	case models.FormatDocx:
		return s.extractDOCX(ctx, data)
	case models.FormatSlides:
		return s.extractPPTX(ctx, data)
	case models.FormatTxt:
		return extractText(data)
	default:
		return models.ExtractedText{}, models.ErrUnsupportedFormat
	}
}

// imageRef is one embedded image found while walking a document,
// tagged with its origin so concurrent caption results can be put
// back in sequence.
type imageRef struct {
	seg      int // index into the segments slice
	display  int // page or slide number shown in markers
	ordinal  int // 1-based position within the segment
	filename string
	data     []byte
	err      error // extraction failure recorded before captioning
}

var errNoCaptioner = errors.New("no captioner configured")

// captionAll describes every image and returns the rendered marker
// blocks aligned with refs. A failed image yields a visible failure
// marker; it never aborts the document.
func (s *Service) captionAll(ctx context.Context, kind models.SegmentKind, refs []imageRef) []string {
	out := make([]string, len(refs))
	if len(refs) == 0 {
		return out
	}

	workers := s.workers
	if workers > len(refs) {
		workers = len(refs)
	}
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = s.captionOne(ctx, kind, refs[i])
			}
		}()
	}
	for i := range refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (s *Service) captionOne(ctx context.Context, kind models.SegmentKind, ref imageRef) string {
	if ref.err != nil {
		return models.ImageFailureMarker(kind, ref.display, ref.ordinal, ref.err)
	}
	if s.captioner == nil {
		return models.ImageFailureMarker(kind, ref.display, ref.ordinal, errNoCaptioner)
	}
	desc, err := s.captioner.Caption(ctx, ref.data)
	if err != nil {
		log.Warn().Err(err).Int("segment", ref.display).Int("image", ref.ordinal).Msg("Captioning failed")
		return models.ImageFailureMarker(kind, ref.display, ref.ordinal, err)
	}
	return models.ImageMarker(ref.filename, desc)
}

// fuse appends the rendered markers to their segments, preserving the
// encounter order within each segment.
func fuse(segments []models.Segment, refs []imageRef, markers []string) {
	for i, ref := range refs {
		segments[ref.seg].Captions = append(segments[ref.seg].Captions, markers[i])
	}
}
