package render

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/kscout/paper-submission-api/models"

	"github.com/go-pdf/fpdf"
)

// KeywordSeparator joins keywords in the rendered document
const KeywordSeparator = ", "

// CorrespondingSuffix is appended to the name of the corresponding author
const CorrespondingSuffix = "(Corresponding Author)"

// Summary is the metadata shown in a submission summary document
type Summary struct {
	// ApplicationID the submission is for
	ApplicationID string

	// Title of the paper
	Title string

	// Theme is the conference track, omitted from the document if empty
	Theme string

	// Authors in display order
	Authors []models.Author

	// Keywords describing the paper
	Keywords []string
}

// SummaryFromRequest extracts the rendered metadata from a submission
func SummaryFromRequest(req models.SubmissionRequest) Summary {
	return Summary{
		ApplicationID: req.ApplicationID,
		Title:         req.Title,
		Theme:         req.Theme,
		Authors:       req.Authors,
		Keywords:      req.Keywords,
	}
}

// Affiliation composes the affiliation line of an author from the parts which are set
func Affiliation(a models.Author) string {
	parts := []string{}

	for _, part := range []string{a.Department, a.Institution, a.CityCountry} {
		if part = strings.TrimSpace(part); len(part) > 0 {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ", ")
}

// Renderer writes submission summaries as PDF documents
type Renderer struct {
	// Compress content streams. Disabled in tests so text can be searched.
	Compress bool

	// Font all text is set in, DefaultFont if nil
	Font *Font
}

// font returns the font family of the document
func (r Renderer) font() Font {
	font := DefaultFont()
	if r.Font != nil {
		font = *r.Font
	}

	if len(font.Bold) == 0 {
		font.Bold = font.Regular
	}

	return font
}

// encodable replaces runes the document text encoding cannot represent, those
// outside the Basic Multilingual Plane and invalid UTF-8, with U+FFFD
func encodable(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return utf8.RuneError
		}

		return r
	}, s)
}

// build lays out the document
func (r Renderer) build(summary Summary) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(encodable(summary.Title), true)
	pdf.SetCreator("paper-submission-api", true)

	font := r.font()
	pdf.AddUTF8FontFromBytes(fontFamily, "", font.Regular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", font.Bold)

	heading := func(text string) {
		pdf.Ln(6)
		pdf.SetFont(fontFamily, "B", 13)
		pdf.MultiCell(0, 7, encodable(text), "B", "L", false)
		pdf.Ln(2)
	}

	pdf.AddPage()

	// {{{1 Title block
	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(0, 9, encodable(summary.Title), "", "C", false)
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 11)
	pdf.MultiCell(0, 6, encodable(fmt.Sprintf("Application ID: %s", summary.ApplicationID)),
		"", "C", false)

	if len(summary.Theme) > 0 {
		pdf.MultiCell(0, 6, encodable(fmt.Sprintf("Theme: %s", summary.Theme)), "", "C", false)
	}

	// {{{1 Authors
	heading("Authors")

	for i, author := range summary.Authors {
		name := author.Name
		if author.IsCorresponding {
			name = fmt.Sprintf("%s %s", name, CorrespondingSuffix)
		}

		pdf.SetFont(fontFamily, "B", 11)
		pdf.MultiCell(0, 6, encodable(fmt.Sprintf("%d. %s", i+1, name)), "", "L", false)

		pdf.SetFont(fontFamily, "", 10)
		pdf.MultiCell(0, 5, encodable(author.Email), "", "L", false)

		if affiliation := Affiliation(author); len(affiliation) > 0 {
			pdf.MultiCell(0, 5, encodable(affiliation), "", "L", false)
		}

		pdf.Ln(3)
	}

	// {{{1 Keywords
	heading("Keywords")

	pdf.SetFont(fontFamily, "", 11)
	pdf.MultiCell(0, 6, encodable(strings.Join(summary.Keywords, KeywordSeparator)),
		"", "L", false)

	return pdf
}

// Render writes the summary document to path. It returns only once the document
// has been completely written, synced and closed, the file can be read as soon
// as Render returns nil.
func (r Renderer) Render(ctx context.Context, summary Summary, path string) error {
	pdf := r.build(summary)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to lay out summary: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open summary file: %w", err)
	}

	if err := pdf.Output(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush summary: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close summary file: %w", err)
	}

	return nil
}
