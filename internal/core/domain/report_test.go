package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportStatus_CanTransitionTo(t *testing.T) {
	all := []ReportStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
	legal := map[[2]ReportStatus]bool{
		{StatusOpen, StatusInProgress}:     true,
		{StatusInProgress, StatusResolved}: true,
		{StatusResolved, StatusClosed}:     true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]ReportStatus{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
			if want {
				assert.Equal(t, from.Rank()+1, to.Rank())
			}
		}
	}
	assert.False(t, ReportStatus("ARCHIVED").CanTransitionTo(StatusOpen))
}

func TestParseReportStatus(t *testing.T) {
	s, err := ParseReportStatus("RESOLVED")
	assert.NoError(t, err)
	assert.Equal(t, StatusResolved, s)

	_, err = ParseReportStatus("resolved")
	assert.True(t, IsKind(err, KindValidation))

	_, err = ParseReportStatus("")
	assert.True(t, IsKind(err, KindValidation))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("STAFF")
	assert.NoError(t, err)
	assert.Equal(t, RoleStaff, r)

	_, err = ParseRole("ROOT")
	assert.True(t, IsKind(err, KindValidation))
}

func TestKindOf_Wrapped(t *testing.T) {
	base := NewError(KindNotFound, "report %s not found", "abc")
	wrapped := fmt.Errorf("assign: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "not_found: report abc not found", base.Error())
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.False(t, IsKind(nil, KindNotFound))
}

func TestLocation_Validate(t *testing.T) {
	assert.NoError(t, Location{Latitude: -90, Longitude: 180}.Validate())
	assert.Error(t, Location{Latitude: -90.0001}.Validate())
	assert.Error(t, Location{Longitude: 180.5}.Validate())
}
