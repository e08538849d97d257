package parsing

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"strings"

	"github.com/kscout/paper-submission-api/models"
)

// KeywordDelimiter separates keywords in the keywords form field
const KeywordDelimiter = ","

// SplitKeywords splits a delimited keywords field into a set, keeping the order
// keywords were first given in. Blank and repeated keywords are dropped.
func SplitKeywords(raw string) []string {
	keywords := []string{}
	seen := map[string]bool{}

	for _, keyword := range strings.Split(raw, KeywordDelimiter) {
		keyword = strings.TrimSpace(keyword)
		if len(keyword) == 0 || seen[keyword] {
			continue
		}

		seen[keyword] = true
		keywords = append(keywords, keyword)
	}

	return keywords
}

// ParseAuthors decodes the JSON encoded authors form field
func ParseAuthors(raw string) ([]models.Author, error) {
	if len(strings.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	authors := []models.Author{}
	if err := json.Unmarshal([]byte(raw), &authors); err != nil {
		return nil, ParseError{
			What:            "`authors` field",
			Why:             fmt.Sprintf("not a JSON array of authors: %s", err.Error()),
			FixInstructions: "send authors as a JSON array of objects with name, email, department, institution, cityCountry and isCorresponding keys",
		}
	}

	for i := range authors {
		authors[i].Name = strings.TrimSpace(authors[i].Name)
		authors[i].Email = strings.TrimSpace(authors[i].Email)
	}

	return authors, nil
}

// readFilePart returns the contents of the first file sent under name, nil if
// no file was sent
func readFilePart(form *multipart.Form, name string) ([]byte, error) {
	headers, ok := form.File[name]
	if !ok || len(headers) == 0 {
		return nil, nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, ParseError{
			What:          fmt.Sprintf("`%s` file", name),
			Why:           "the uploaded file could not be opened",
			InternalError: err,
		}
	}
	defer f.Close()

	content, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, ParseError{
			What:          fmt.Sprintf("`%s` file", name),
			Why:           "the uploaded file could not be read",
			InternalError: err,
		}
	}

	return content, nil
}

// formValue returns the first trimmed value of a text field
func formValue(form *multipart.Form, name string) string {
	values := form.Value[name]
	if len(values) == 0 {
		return ""
	}

	return strings.TrimSpace(values[0])
}

// ParseSubmissionForm builds a SubmissionRequest from a parsed multipart form.
// Only the encoding of fields is checked here, constraints on their values are
// checked by validation.ValidateSubmission.
func ParseSubmissionForm(form *multipart.Form) (*models.SubmissionRequest, error) {
	// {{{1 Text fields
	req := models.SubmissionRequest{
		ApplicationID:    formValue(form, "applicationId"),
		Title:            formValue(form, "title"),
		Theme:            formValue(form, "theme"),
		Keywords:         SplitKeywords(formValue(form, "keywords")),
		SubmissionFormat: models.SubmissionFormatT(strings.ToLower(formValue(form, "submissionFormat"))),
		RequiredFiles:    map[string][]byte{},
	}

	authors, err := ParseAuthors(formValue(form, "authors"))
	if err != nil {
		return nil, err
	}
	req.Authors = authors

	// {{{1 Files
	for _, name := range models.RequiredFileNames {
		content, err := readFilePart(form, name)
		if err != nil {
			return nil, err
		}

		if content != nil {
			req.RequiredFiles[name] = content
		}
	}

	req.OptionalFile, err = readFilePart(form, models.FileLatexSource)
	if err != nil {
		return nil, err
	}

	return &req, nil
}
