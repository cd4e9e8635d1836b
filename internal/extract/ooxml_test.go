package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagTexts(t *testing.T) {
	xml := `<w:p><w:t>plain</w:t><w:tbl>skip</w:tbl><w:t xml:space="preserve"> spaced </w:t><w:t/></w:p>`
	assert.Equal(t, []string{"plain", " spaced ", ""}, tagTexts(xml, "w:t"))
}

func TestTagTextsUnescapes(t *testing.T) {
	xml := `<a:t>Q&amp;A &lt;draft&gt;</a:t>`
	assert.Equal(t, []string{"Q&A <draft>"}, tagTexts(xml, "a:t"))
}

func TestParseRels(t *testing.T) {
	xml := `<Relationships>` +
		`<Relationship Id="rId1" Type="t" Target="media/image1.png"/>` +
		`<Relationship Id="rId2" Type="t" Target="../media/image2.jpeg"/>` +
		`</Relationships>`
	rels := parseRels(xml)
	assert.Equal(t, "media/image1.png", rels["rId1"])
	assert.Equal(t, "../media/image2.jpeg", rels["rId2"])
}

func TestBlipEmbedIDsOrder(t *testing.T) {
	xml := `<p:pic><a:blip r:embed="rId3"/></p:pic><p:pic><a:blip r:embed="rId1"/></p:pic>`
	assert.Equal(t, []string{"rId3", "rId1"}, blipEmbedIDs(xml))
}

func TestImageExt(t *testing.T) {
	assert.Equal(t, "png", imageExt("../media/image1.png"))
	assert.Equal(t, "jpeg", imageExt("media/photo.JPEG"))
	assert.Equal(t, "bin", imageExt("media/blob"))
}
