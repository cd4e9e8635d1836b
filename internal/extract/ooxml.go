package extract

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// Minimal OOXML plumbing. The slide/document XML is walked with string
// scanning rather than a full XML decoder: the files are
// machine-generated and the only elements of interest are text runs,
// image anchors and relationship entries.

var xmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// tagTexts returns the text content of every <tag>...</tag> element
// in document order.
func tagTexts(s, tag string) []string {
	var out []string
	open := "<" + tag
	close := "</" + tag + ">"
	for i := 0; i < len(s); {
		idx := strings.Index(s[i:], open)
		if idx < 0 {
			break
		}
		start := i + idx + len(open)
		if start >= len(s) {
			break
		}
		// skip longer tag names sharing the prefix, e.g. w:tbl for w:t
		if c := s[start]; c != '>' && c != ' ' && c != '/' {
			i = start
			continue
		}
		gt := strings.IndexByte(s[start:], '>')
		if gt < 0 {
			break
		}
		bodyStart := start + gt + 1
		if s[bodyStart-2] == '/' { // self-closing, empty run
			out = append(out, "")
			i = bodyStart
			continue
		}
		end := strings.Index(s[bodyStart:], close)
		if end < 0 {
			break
		}
		out = append(out, xmlUnescaper.Replace(s[bodyStart:bodyStart+end]))
		i = bodyStart + end + len(close)
	}
	return out
}

// elements returns the full opening tag of every <tag .../> occurrence
// in document order.
func elements(s, tag string) []string {
	var out []string
	open := "<" + tag
	for i := 0; i < len(s); {
		idx := strings.Index(s[i:], open)
		if idx < 0 {
			break
		}
		start := i + idx
		after := start + len(open)
		if after < len(s) {
			if c := s[after]; c != ' ' && c != '>' && c != '/' {
				i = after
				continue
			}
		}
		gt := strings.IndexByte(s[start:], '>')
		if gt < 0 {
			break
		}
		out = append(out, s[start:start+gt+1])
		i = start + gt + 1
	}
	return out
}

// attrValue pulls a double-quoted attribute value out of an opening tag.
func attrValue(elem, attr string) string {
	key := attr + `="`
	i := strings.Index(elem, key)
	if i < 0 {
		return ""
	}
	rest := elem[i+len(key):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}

// parseRels maps relationship ids to their targets.
func parseRels(relsXML string) map[string]string {
	rels := make(map[string]string)
	for _, e := range elements(relsXML, "Relationship") {
		if id := attrValue(e, "Id"); id != "" {
			rels[id] = attrValue(e, "Target")
		}
	}
	return rels
}

// blipEmbedIDs returns the relationship ids of image anchors in
// document order.
func blipEmbedIDs(s string) []string {
	var ids []string
	for _, e := range elements(s, "a:blip") {
		if id := attrValue(e, "r:embed"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// paragraphTexts joins the text runs of each paragraph, one line per
// non-empty paragraph.
func paragraphTexts(fragment, paragraphTag, runTag string) string {
	var b strings.Builder
	for _, par := range strings.Split(fragment, "</"+paragraphTag+">") {
		runs := tagTexts(par, runTag)
		if len(runs) == 0 {
			continue
		}
		line := strings.Join(runs, "")
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// imageExt derives the marker filename extension from a media target.
func imageExt(target string) string {
	if i := strings.LastIndexByte(target, '.'); i >= 0 && i+1 < len(target) {
		return strings.ToLower(target[i+1:])
	}
	return "bin"
}
