package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"

	"docubot/internal/models"
)

// extractPDF reads page text in file order and collects the embedded
// raster images of each page. A failure on one image degrades to a
// visible marker; a failure of image extraction as a whole degrades to
// a text-only document.
func (s *Service) extractPDF(ctx context.Context, data []byte) (models.ExtractedText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("reading pdf: %w", err)
	}

	numPages := reader.NumPage()
	segments := make([]models.Segment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return models.ExtractedText{}, fmt.Errorf("extracting text of page %d: %w", i, err)
		}
		segments = append(segments, models.Segment{Index: i, Text: pageText})
	}

	refs, err := pdfImageRefs(data, numPages)
	if err != nil {
		log.Warn().Err(err).Msg("PDF image extraction failed, continuing with text only")
		refs = nil
	}

	markers := s.captionAll(ctx, models.KindPage, refs)
	fuse(segments, refs, markers)
	return models.ExtractedText{Kind: models.KindPage, Segments: segments}, nil
}

// pdfcpu names extracted files <base>_<page>_<resource>.<ext>; the
// staged file is named without underscores so the first group is
// always the page number.
var pdfImageNameRe = regexp.MustCompile(`_(\d+)_[^/\\]*\.[A-Za-z0-9]+$`)

func parsePDFImageName(name string) (page int, ok bool) {
	m := pdfImageNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	page, err := strconv.Atoi(m[1])
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// pdfImageRefs extracts every embedded image to a scratch directory
// and maps them back to their pages in file order.
func pdfImageRefs(data []byte, numPages int) ([]imageRef, error) {
	tmpDir, err := os.MkdirTemp("", "docubot-pdf")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	inFile := filepath.Join(tmpDir, "stage.pdf")
	if err := os.WriteFile(inFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("staging pdf: %w", err)
	}
	outDir := filepath.Join(tmpDir, "images")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := api.ExtractImagesFile(inFile, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("extracting images: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var refs []imageRef
	perPage := make(map[int]int, numPages)
	for _, name := range names {
		page, ok := parsePDFImageName(name)
		if !ok || page > numPages {
			log.Debug().Str("file", name).Msg("Skipping unrecognized extracted image name")
			continue
		}
		perPage[page]++
		ordinal := perPage[page]
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		ref := imageRef{
			seg:      page - 1,
			display:  page,
			ordinal:  ordinal,
			filename: fmt.Sprintf("page_%d_img_%d.%s", page, ordinal, ext),
		}
		img, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			ref.err = err
		} else {
			ref.data = img
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
