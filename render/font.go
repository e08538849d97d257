package render

import (
	_ "embed"
	"fmt"
	"io/ioutil"
)

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuRegular []byte

//go:embed fonts/DejaVuSansCondensed-Bold.ttf
var dejaVuBold []byte

// fontFamily is the name the summary font is registered under
const fontFamily = "SummaryFont"

// Font is a TrueType font family. Summaries are set entirely in one family,
// text is encoded as unicode so runes without a glyph keep their identity.
type Font struct {
	// Regular face
	Regular []byte

	// Bold face, the regular face is used if empty
	Bold []byte
}

// DefaultFont is DejaVu Sans Condensed. It covers Latin, Greek and Cyrillic
// scripts, CJK text needs a font loaded with LoadFont.
func DefaultFont() Font {
	return Font{
		Regular: dejaVuRegular,
		Bold:    dejaVuBold,
	}
}

// LoadFont reads a font family from TrueType files. boldPath may be empty.
func LoadFont(regularPath, boldPath string) (Font, error) {
	font := Font{}

	regular, err := ioutil.ReadFile(regularPath)
	if err != nil {
		return font, fmt.Errorf("failed to read font \"%s\": %w", regularPath, err)
	}
	font.Regular = regular

	if len(boldPath) > 0 {
		bold, err := ioutil.ReadFile(boldPath)
		if err != nil {
			return font, fmt.Errorf("failed to read bold font \"%s\": %w", boldPath, err)
		}
		font.Bold = bold
	}

	return font, nil
}
