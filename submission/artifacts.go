package submission

import (
	"github.com/kscout/paper-submission-api/models"
	"github.com/kscout/paper-submission-api/storage"
)

// Names of the objects in a submission folder
const (
	// SummaryArtifact is the rendered summary document
	SummaryArtifact = "submission_summary.pdf"

	// CopyrightArtifact is the signed copyright form
	CopyrightArtifact = "copyright.pdf"

	// LatexSourceArtifact is the LaTeX source archive
	LatexSourceArtifact = "latex_source.zip"

	// ManifestArtifact marks a folder as complete, it is always written last
	ManifestArtifact = "manifest.json"
)

// manuscriptArtifacts maps formats to the name their manuscript is stored under
var manuscriptArtifacts = map[models.SubmissionFormatT]string{
	models.SubmissionFormatStandard: "manuscript.docx",
	models.SubmissionFormatLatex:    "manuscript.pdf",
}

// Folder is the store path holding the submission of an application
func Folder(basePath, applicationID string) string {
	return storage.Join(basePath, applicationID)
}

// ArtifactName returns the name a submitted file is stored under
func ArtifactName(file string, format models.SubmissionFormatT) string {
	switch file {
	case models.FileManuscript:
		return manuscriptArtifacts[format]
	case models.FileCopyright:
		return CopyrightArtifact
	case models.FileLatexSource:
		return LatexSourceArtifact
	}

	return file
}

// BuildArtifacts lists everything uploaded for a validated request: the summary
// document, each required file, and the optional file if it was sent.
func BuildArtifacts(req models.SubmissionRequest, summary []byte) []models.Artifact {
	artifacts := []models.Artifact{
		{
			Name:    SummaryArtifact,
			Content: summary,
		},
	}

	for _, file := range models.RequiredFileNames {
		artifacts = append(artifacts, models.Artifact{
			Name:    ArtifactName(file, req.SubmissionFormat),
			Content: req.RequiredFiles[file],
		})
	}

	if len(req.OptionalFile) > 0 {
		artifacts = append(artifacts, models.Artifact{
			Name:    ArtifactName(models.FileLatexSource, req.SubmissionFormat),
			Content: req.OptionalFile,
		})
	}

	return artifacts
}

// Manifest is written into a folder after all its artifacts were uploaded. A
// folder without one may hold a partial submission.
type Manifest struct {
	// SubmissionID of the submission the folder holds
	SubmissionID string `json:"submissionId"`

	// ApplicationID the folder belongs to
	ApplicationID string `json:"applicationId"`

	// Artifacts in the folder, not including the manifest
	Artifacts []string `json:"artifacts"`
}
