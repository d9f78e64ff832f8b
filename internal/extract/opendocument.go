package extract

import (
	"fmt"
	"regexp"
)

// OpenDocument text, spreadsheet and presentation files all keep their body in content.xml.
const odfContentPath = "content.xml"

// odfTextTag matches text:p, text:h and text:span elements.
var odfTextTag = regexp.MustCompile(`<text:(?:p|h|span)[^>/]*>([^<]*)<`)

func extractOpenDocument(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	body, err := readZipPart(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: %w", err)
	}
	if body == nil {
		return "", fmt.Errorf("extract OpenDocument: %s not found", odfContentPath)
	}
	return joinTagText(odfTextTag, body), nil
}
