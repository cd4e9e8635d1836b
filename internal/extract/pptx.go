package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"

	"docubot/internal/models"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX iterates slides in deck order, concatenating the text
// runs of every text-bearing shape, then resolves the slide's image
// shapes through its relationship part.
func (s *Service) extractPPTX(ctx context.Context, data []byte) (models.ExtractedText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("opening presentation archive: %w", err)
	}

	type slideEntry struct {
		num  int
		name string
	}
	var slides []slideEntry
	for _, f := range zr.File {
		if m := slidePathRe.FindStringSubmatch(f.Name); m != nil {
			num, _ := strconv.Atoi(m[1])
			slides = append(slides, slideEntry{num: num, name: f.Name})
		}
	}
	if len(slides) == 0 {
		return models.ExtractedText{}, fmt.Errorf("no slides found in presentation")
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	segments := make([]models.Segment, 0, len(slides))
	var refs []imageRef
	for segIdx, slide := range slides {
		slideXML, err := readZipFile(zr, slide.name)
		if err != nil {
			return models.ExtractedText{}, err
		}
		xml := string(slideXML)
		slideNum := segIdx + 1
		segments = append(segments, models.Segment{
			Index: slideNum,
			Text:  paragraphTexts(xml, "a:p", "a:t"),
		})

		rels := map[string]string{}
		relsName := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", slide.num)
		if relsXML, err := readZipFile(zr, relsName); err == nil {
			rels = parseRels(string(relsXML))
		}

		for ordinal, relID := range blipEmbedIDs(xml) {
			ref := imageRef{seg: segIdx, display: slideNum, ordinal: ordinal + 1}
			target, ok := rels[relID]
			if !ok {
				ref.err = fmt.Errorf("unresolved image relationship %s", relID)
				refs = append(refs, ref)
				continue
			}
			ref.filename = fmt.Sprintf("slide_%d_img_%d.%s", slideNum, ordinal+1, imageExt(target))
			img, err := readZipFile(zr, path.Clean("ppt/slides/"+target))
			if err != nil {
				ref.err = err
			} else {
				ref.data = img
			}
			refs = append(refs, ref)
		}
	}

	markers := s.captionAll(ctx, models.KindSlide, refs)
	fuse(segments, refs, markers)
	return models.ExtractedText{Kind: models.KindSlide, Segments: segments}, nil
}
