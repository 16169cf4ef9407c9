package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCohortValidate(t *testing.T) {
	assert.NoError(t, EventCohort(uuid.New()).Validate())
	assert.NoError(t, CityCohort("Berlin").Validate())
	assert.NoError(t, GlobalCohort().Validate())

	assert.ErrorIs(t, Cohort{Kind: CohortEvent}.Validate(), ErrInvalidCohort)
	assert.ErrorIs(t, Cohort{Kind: CohortCity}.Validate(), ErrInvalidCohort)
	assert.ErrorIs(t, Cohort{Kind: "neighborhood"}.Validate(), ErrInvalidCohort)
}

func TestCohortString(t *testing.T) {
	eventID := uuid.New()
	assert.Equal(t, "event:"+eventID.String(), EventCohort(eventID).String())
	assert.Equal(t, "city:Berlin", CityCohort("Berlin").String())
	assert.Equal(t, "global", GlobalCohort().String())
}

func TestCohortContext(t *testing.T) {
	assert.Equal(t, "Berlin", CityCohort("Berlin").Context())
	assert.Equal(t, "global community", GlobalCohort().Context())
	assert.Equal(t, "", EventCohort(uuid.New()).Context())
}
