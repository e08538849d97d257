package render

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/kscout/paper-submission-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSummary = Summary{
	ApplicationID: "A1",
	Title:         "On Things",
	Theme:         "Systems",
	Authors: []models.Author{
		{
			Name:            "Ada Byron",
			Email:           "ada@example.org",
			Department:      "Mathematics",
			Institution:     "Analytical Society",
			CityCountry:     "London, UK",
			IsCorresponding: true,
		},
		{
			Name:  "Charles Babbage",
			Email: "charles@example.org",
		},
	},
	Keywords: []string{"engines", "notes"},
}

// pdfText is s as it appears in a text operator of the uncompressed document,
// UTF-16BE with string delimiters escaped
func pdfText(s string) []byte {
	buf := []byte{}
	for _, unit := range utf16.Encode([]rune(s)) {
		buf = append(buf, byte(unit>>8), byte(unit))
	}

	escaper := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, "\r", `\r`)
	return []byte(escaper.Replace(string(buf)))
}

// renderFile renders summary and reads the document back
func renderFile(t *testing.T, renderer Renderer, summary Summary) []byte {
	path := filepath.Join(t.TempDir(), "summary.pdf")

	require.NoError(t, renderer.Render(context.Background(), summary, path))

	content, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF-")))

	return content
}

func TestAffiliation(t *testing.T) {
	assert.Equal(t, "Mathematics, Analytical Society, London, UK",
		Affiliation(testSummary.Authors[0]))
	assert.Equal(t, "", Affiliation(testSummary.Authors[1]))
	assert.Equal(t, "Analytical Society", Affiliation(models.Author{
		Department:  " ",
		Institution: "Analytical Society",
	}))
}

func TestRender(t *testing.T) {
	content := renderFile(t, Renderer{}, testSummary)

	for _, text := range []string{
		"On Things",
		"Application ID: A1",
		"Theme: Systems",
		"Authors",
		"1. Ada Byron",
		"Corresponding Author",
		"ada@example.org",
		"Mathematics, Analytical Society, London, UK",
		"2. Charles Babbage",
		"Keywords",
		"engines, notes",
	} {
		assert.Truef(t, bytes.Contains(content, pdfText(text)), "missing %q", text)
	}

	assert.False(t, bytes.Contains(content, pdfText("Charles Babbage (Corresponding")))
}

func TestRenderWithoutTheme(t *testing.T) {
	summary := testSummary
	summary.Theme = ""

	content := renderFile(t, Renderer{}, summary)
	assert.False(t, bytes.Contains(content, pdfText("Theme:")))
}

func TestRenderNonLatinText(t *testing.T) {
	content := renderFile(t, Renderer{}, Summary{
		ApplicationID: "A1",
		Title:         "Łódź networks",
		Authors: []models.Author{
			{Name: "张伟", Email: "wei@example.org"},
			{Name: "Łukasz Żółkiewski", Email: "lukasz@example.org"},
			{Name: "Анна Петрова", Email: "anna@example.org"},
		},
		Keywords: []string{"Ωmega", "naïve"},
	})

	for _, text := range []string{
		"Łódź networks",
		"1. 张伟",
		"2. Łukasz Żółkiewski",
		"3. Анна Петрова",
		"Ωmega, naïve",
	} {
		assert.Truef(t, bytes.Contains(content, pdfText(text)), "missing %q", text)
	}

	assert.False(t, bytes.Contains(content, []byte("(.mega)")))
}

func TestRenderUnencodableText(t *testing.T) {
	content := renderFile(t, Renderer{}, Summary{
		ApplicationID: "A1",
		Title:         "On Things \xff",
		Authors: []models.Author{
			{Name: "Ada 🙂", Email: "ada@example.org"},
		},
	})

	assert.True(t, bytes.Contains(content, pdfText("1. Ada \uFFFD")))
	assert.True(t, bytes.Contains(content, pdfText("On Things \uFFFD")))
}

func TestEncodable(t *testing.T) {
	assert.Equal(t, "Łódź 张伟 Ωmega", encodable("Łódź 张伟 Ωmega"))
	assert.Equal(t, "Ada \uFFFD", encodable("Ada 🙂"))
	assert.Equal(t, "x\uFFFDy", encodable("x\xffy"))
}

func TestRenderLoadedFont(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, ioutil.WriteFile(path, dejaVuRegular, 0o600))

	font, err := LoadFont(path, "")
	require.NoError(t, err)
	assert.Equal(t, dejaVuRegular, font.Regular)
	assert.Empty(t, font.Bold)

	content := renderFile(t, Renderer{Font: &font}, testSummary)
	assert.True(t, bytes.Contains(content, pdfText("1. Ada Byron")))
}

func TestLoadFontMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFont(filepath.Join(dir, "missing.ttf"), "")
	assert.Error(t, err)

	path := filepath.Join(dir, "font.ttf")
	require.NoError(t, ioutil.WriteFile(path, dejaVuRegular, 0o600))

	_, err = LoadFont(path, filepath.Join(dir, "missing-bold.ttf"))
	assert.Error(t, err)
}

func TestRenderUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "summary.pdf")

	assert.Error(t, Renderer{}.Render(context.Background(), testSummary, path))
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "summary.pdf")
	assert.Equal(t, context.Canceled, Renderer{}.Render(ctx, testSummary, path))
}
