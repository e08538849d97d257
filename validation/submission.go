package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/kscout/paper-submission-api/models"

	"gopkg.in/go-playground/validator.v9"
)

// FieldsError holds every constraint a submission request violated. Problems are
// meant to be presented to users.
type FieldsError struct {
	// Problems are user facing descriptions, one per violated constraint
	Problems []string
}

// Error implements error
func (e FieldsError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// validateSubmissionFormat ensures a field holds one of the models.SubmissionFormatT values.
// Only works on fields which are strings.
func validateSubmissionFormat(fl validator.FieldLevel) bool {
	f := models.SubmissionFormatT(fl.Field().String())
	return f == models.SubmissionFormatStandard ||
		f == models.SubmissionFormatLatex
}

// validateFolderSafe ensures a string can be used as a single store path segment.
// Only works on fields which are strings.
func validateFolderSafe(fl validator.FieldLevel) bool {
	s := fl.Field().String()

	if strings.TrimSpace(s) != s || s == "." || s == ".." {
		return false
	}

	return !strings.ContainsAny(s, "/\\")
}

// validateRequiredFiles ensures every name in models.RequiredFileNames has non-empty
// content. Only works on map[string][]byte fields.
func validateRequiredFiles(fl validator.FieldLevel) bool {
	files, ok := fl.Field().Interface().(map[string][]byte)
	if !ok {
		return false
	}

	return len(missingFiles(files)) == 0
}

// missingFiles returns the required file names which have no content
func missingFiles(files map[string][]byte) []string {
	missing := []string{}

	for _, name := range models.RequiredFileNames {
		if len(files[name]) == 0 {
			missing = append(missing, name)
		}
	}

	return missing
}

// validateFormatFiles checks the optional file against the submission format
func validateFormatFiles(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.SubmissionRequest)

	if req.SubmissionFormat.RequiresOptionalFile() && len(req.OptionalFile) == 0 {
		sl.ReportError(req.OptionalFile, "latexSource", "OptionalFile",
			"required_for_format", string(req.SubmissionFormat))
	}
}

// formTagName names fields after their form or json tag so messages match what
// the submitter sent
func formTagName(field reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if len(name) > 0 {
			return name
		}
	}

	return field.Name
}

// ValidateSubmission ensures a SubmissionRequest meets all constraints, including
// the cross field rule between the submission format and the optional file.
// Returns a FieldsError if the request is invalid.
func ValidateSubmission(req models.SubmissionRequest) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(formTagName)
	validate.RegisterValidation("submission_format", validateSubmissionFormat)
	validate.RegisterValidation("folder_safe", validateFolderSafe)
	validate.RegisterValidation("required_files", validateRequiredFiles)
	validate.RegisterStructValidation(validateFormatFiles, models.SubmissionRequest{})

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to run validation: %s", err.Error())
	}

	problems := []string{}
	for _, fieldErr := range fieldErrs {
		problems = append(problems, describe(fieldErr, req))
	}
	sort.Strings(problems)

	return FieldsError{
		Problems: problems,
	}
}

// describe turns a validator error into a message for the submitter
func describe(fe validator.FieldError, req models.SubmissionRequest) string {
	// Namespace starts with the struct name, which means nothing to users
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "submission_format":
		return fmt.Sprintf("%s must be one of: %s, %s", field,
			models.SubmissionFormatStandard, models.SubmissionFormatLatex)
	case "folder_safe":
		return fmt.Sprintf("%s must not contain path separators or "+
			"surrounding whitespace", field)
	case "required_files":
		return fmt.Sprintf("missing required file(s): %s",
			strings.Join(missingFiles(req.RequiredFiles), ", "))
	case "required_for_format":
		return fmt.Sprintf("%s file is required for %s submissions", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
