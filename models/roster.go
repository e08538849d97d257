package models

// RosterRow is one line of the acceptance roster
type RosterRow struct {
	// ApplicationID is the identity issued to the paper
	ApplicationID string

	// Decision is the free text review outcome, as typed by the program committee
	Decision string

	// Title of the paper
	Title string
}

// EligibilityResult is the outcome of a successful eligibility check
type EligibilityResult struct {
	// Eligible is always true, ineligible identities are reported as errors
	Eligible bool `json:"eligible"`

	// ApplicationID which was checked
	ApplicationID string `json:"applicationId"`

	// Title of the paper from the roster, may be empty
	Title string `json:"title,omitempty"`
}
