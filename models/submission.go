package models

import (
	"time"
)

// SubmissionFormatT identifies how a paper was authored. It decides which
// extension the manuscript is stored with and whether a LaTeX source archive
// must accompany the submission.
type SubmissionFormatT string

// SubmissionFormatStandard is a word processor manuscript
var SubmissionFormatStandard SubmissionFormatT = "standard"

// SubmissionFormatLatex is a LaTeX manuscript, the source archive is required
var SubmissionFormatLatex SubmissionFormatT = "latex"

// RequiresOptionalFile indicates if the optional file must be provided for this format
func (f SubmissionFormatT) RequiresOptionalFile() bool {
	return f == SubmissionFormatLatex
}

// Names of the multipart file parts a submission is made of
const (
	// FileManuscript is the paper itself
	FileManuscript = "manuscript"

	// FileCopyright is the signed copyright transfer form
	FileCopyright = "copyright"

	// FileLatexSource is the LaTeX source archive, the optional file
	FileLatexSource = "latexSource"
)

// RequiredFileNames lists the files every submission must include, in upload order
var RequiredFileNames = []string{FileManuscript, FileCopyright}

// Author of a paper. The order of authors in a submission is the order they are
// displayed in.
type Author struct {
	// Name of the author
	Name string `json:"name" bson:"name" validate:"required"`

	// Email of the author
	Email string `json:"email" bson:"email" validate:"required,email"`

	// Department the author works in
	Department string `json:"department" bson:"department"`

	// Institution the author is affiliated with
	Institution string `json:"institution" bson:"institution"`

	// CityCountry is where the institution is located, free text
	CityCountry string `json:"cityCountry" bson:"city_country"`

	// IsCorresponding is true for the author who handles correspondence
	IsCorresponding bool `json:"isCorresponding" bson:"is_corresponding"`
}

// SubmissionRequest holds everything a submitter sends for one paper
type SubmissionRequest struct {
	// ApplicationID is the identity issued to the paper when it was accepted
	ApplicationID string `form:"applicationId" validate:"required,max=128,folder_safe"`

	// Title of the paper
	Title string `form:"title" validate:"required"`

	// Theme is the conference track, optional
	Theme string `form:"theme"`

	// Authors of the paper, in display order
	Authors []Author `form:"authors" validate:"required,min=1,dive"`

	// Keywords describing the paper
	Keywords []string `form:"keywords" validate:"required,min=1,dive,required"`

	// SubmissionFormat is how the paper was authored
	SubmissionFormat SubmissionFormatT `form:"submissionFormat" validate:"required,submission_format"`

	// RequiredFiles holds file contents keyed by the names in RequiredFileNames
	RequiredFiles map[string][]byte `form:"files" validate:"required_files"`

	// OptionalFile is the LaTeX source archive, nil if not sent
	OptionalFile []byte `form:"latexSource"`
}

// Artifact is a single object uploaded into a submission folder
type Artifact struct {
	// Name is the path of the object relative to the submission folder
	Name string

	// Content of the object
	Content []byte
}

// SubmissionRecord is saved after a submission completes. It is the operator
// facing history of the latest submission for each application.
type SubmissionRecord struct {
	// SubmissionID is the unique token returned to the submitter
	SubmissionID string `bson:"submission_id" json:"submissionId"`

	// ApplicationID the submission was made for
	ApplicationID string `bson:"application_id" json:"applicationId"`

	// Title of the paper
	Title string `bson:"title" json:"title"`

	// Format of the submission
	Format SubmissionFormatT `bson:"format" json:"format"`

	// Authors of the paper
	Authors []Author `bson:"authors" json:"authors"`

	// Folder is the store path the artifacts were uploaded under
	Folder string `bson:"folder" json:"folder"`

	// Artifacts are the names of the uploaded objects, relative to Folder
	Artifacts []string `bson:"artifacts" json:"artifacts"`

	// SubmittedAt is when the submission completed
	SubmittedAt time.Time `bson:"submitted_at" json:"submittedAt"`
}
