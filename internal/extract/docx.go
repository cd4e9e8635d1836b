package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"docubot/internal/models"
)

// extractDOCX walks the word-processing document in order. Segments
// follow explicit page breaks; documents without page breaks yield a
// single segment. Image anchors are resolved through the relationship
// table to the archive's media parts, per segment in anchor order.
func (s *Service) extractDOCX(ctx context.Context, data []byte) (models.ExtractedText, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("reading docx: %w", err)
	}
	defer r.Close()
	content := r.Editable().GetContent()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("opening docx archive: %w", err)
	}
	rels := map[string]string{}
	if relsXML, err := readZipFile(zr, "word/_rels/document.xml.rels"); err == nil {
		rels = parseRels(string(relsXML))
	}

	// Explicit page breaks delimit segments; the split cuts through
	// the <w:br/> element itself, which carries no text runs.
	fragments := strings.Split(content, `w:type="page"`)

	segments := make([]models.Segment, 0, len(fragments))
	var refs []imageRef
	for fragIdx, fragment := range fragments {
		pageNum := fragIdx + 1
		segments = append(segments, models.Segment{
			Index: pageNum,
			Text:  paragraphTexts(fragment, "w:p", "w:t"),
		})

		for ordinal, relID := range blipEmbedIDs(fragment) {
			ref := imageRef{seg: fragIdx, display: pageNum, ordinal: ordinal + 1}
			target, ok := rels[relID]
			if !ok {
				ref.err = fmt.Errorf("unresolved image relationship %s", relID)
				refs = append(refs, ref)
				continue
			}
			ref.filename = fmt.Sprintf("page_%d_img_%d.%s", pageNum, ordinal+1, imageExt(target))
			img, err := readZipFile(zr, path.Clean("word/"+target))
			if err != nil {
				ref.err = err
			} else {
				ref.data = img
			}
			refs = append(refs, ref)
		}
	}

	markers := s.captionAll(ctx, models.KindPage, refs)
	fuse(segments, refs, markers)
	return models.ExtractedText{Kind: models.KindPage, Segments: segments}, nil
}
