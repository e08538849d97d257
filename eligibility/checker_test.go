package eligibility

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kscout/paper-submission-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockRoster is a roster.Source
type mockRoster struct {
	mock.Mock
}

// FetchRows implements roster.Source
func (m *mockRoster) FetchRows(ctx context.Context) ([]models.RosterRow, error) {
	args := m.Called(ctx)

	rows, _ := args.Get(0).([]models.RosterRow)
	return rows, args.Error(1)
}

// checkerWith returns a Checker whose roster returns rows on every fetch
func checkerWith(rows []models.RosterRow, err error) (Checker, *mockRoster) {
	src := &mockRoster{}
	src.On("FetchRows", mock.Anything).Return(rows, err)

	return Checker{Roster: src}, src
}

func TestIsAccepted(t *testing.T) {
	for _, label := range []string{"Accepted", " accept ", "ACCEPTED WITH MINOR REVISIONS",
		"Accepted with revisions", "accept with revision", "Accepted as it is",
		"\tAccept with minor revision\n"} {
		assert.True(t, IsAccepted(label), label)
	}

	for _, label := range []string{"", "Rejected", "accepted!", "accepted  with revisions",
		"pending"} {
		assert.False(t, IsAccepted(label), label)
	}
}

func TestCheckEligible(t *testing.T) {
	checker, src := checkerWith([]models.RosterRow{
		{ApplicationID: "A0", Decision: "Rejected"},
		{ApplicationID: "A1", Decision: "Accepted", Title: "On Things"},
	}, nil)

	result, err := checker.Check(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, &models.EligibilityResult{
		Eligible:      true,
		ApplicationID: "A1",
		Title:         "On Things",
	}, result)

	// Not cached
	_, err = checker.Check(context.Background(), "A1")
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "FetchRows", 2)
}

func TestCheckNotFound(t *testing.T) {
	checker, _ := checkerWith([]models.RosterRow{
		{ApplicationID: "A1", Decision: "Accepted"},
	}, nil)

	for _, id := range []string{"A2", "a1", " A1", ""} {
		_, err := checker.Check(context.Background(), id)
		assert.Equal(t, NotFoundError{ApplicationID: id}, err)
	}
}

func TestCheckNotEligible(t *testing.T) {
	checker, _ := checkerWith([]models.RosterRow{
		{ApplicationID: "A1", Decision: "Major Revision"},
		{ApplicationID: "A2", Decision: "  "},
	}, nil)

	_, err := checker.Check(context.Background(), "A1")
	assert.Equal(t, NotEligibleError{ApplicationID: "A1", Decision: "Major Revision"}, err)

	_, err = checker.Check(context.Background(), "A2")
	assert.Equal(t, NotEligibleError{ApplicationID: "A2", Decision: UndecidedLabel}, err)
}

func TestCheckFirstMatchWins(t *testing.T) {
	checker, _ := checkerWith([]models.RosterRow{
		{ApplicationID: "A1", Decision: "Rejected"},
		{ApplicationID: "A1", Decision: "Accepted"},
	}, nil)

	_, err := checker.Check(context.Background(), "A1")
	assert.IsType(t, NotEligibleError{}, err)
}

func TestCheckRosterUnavailable(t *testing.T) {
	cause := errors.New("worksheet missing")
	checker, _ := checkerWith(nil, cause)

	_, err := checker.Check(context.Background(), "A1")

	var unavailable RosterUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.True(t, errors.Is(err, cause))
}

// slowRoster blocks until its context is done
type slowRoster struct{}

// FetchRows implements roster.Source
func (slowRoster) FetchRows(ctx context.Context) ([]models.RosterRow, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCheckRosterDeadline(t *testing.T) {
	checker := Checker{
		Roster:  slowRoster{},
		Timeout: 10 * time.Millisecond,
	}

	_, err := checker.Check(context.Background(), "A1")

	var unavailable RosterUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
