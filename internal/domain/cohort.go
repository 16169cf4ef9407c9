package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// CohortKind names the population candidates are drawn from.
type CohortKind string

const (
	// CohortEvent limits matching to participants of one event.
	CohortEvent CohortKind = "event"
	// CohortCity limits matching to profiles in the same city.
	CohortCity CohortKind = "city"
	// CohortGlobal spans everyone who opted into global matching.
	CohortGlobal CohortKind = "global"
)

// Cohort is a reference to one candidate population. Exactly one of
// EventID / City is meaningful depending on Kind.
type Cohort struct {
	Kind    CohortKind
	EventID uuid.UUID
	City    string
}

func EventCohort(eventID uuid.UUID) Cohort {
	return Cohort{Kind: CohortEvent, EventID: eventID}
}

func CityCohort(city string) Cohort {
	return Cohort{Kind: CohortCity, City: city}
}

func GlobalCohort() Cohort {
	return Cohort{Kind: CohortGlobal}
}

// Validate rejects unknown kinds and kinds missing their scope value.
func (c Cohort) Validate() error {
	switch c.Kind {
	case CohortEvent:
		if c.EventID == uuid.Nil {
			return fmt.Errorf("%w: event cohort requires an event id", ErrInvalidCohort)
		}
	case CohortCity:
		if c.City == "" {
			return fmt.Errorf("%w: city cohort requires a city", ErrInvalidCohort)
		}
	case CohortGlobal:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCohort, c.Kind)
	}
	return nil
}

// Context is the free-text hint passed to the compatibility analysis,
// e.g. the event name for event cohorts.
func (c Cohort) Context() string {
	switch c.Kind {
	case CohortCity:
		return c.City
	case CohortGlobal:
		return "global community"
	}
	return ""
}

func (c Cohort) String() string {
	switch c.Kind {
	case CohortEvent:
		return "event:" + c.EventID.String()
	case CohortCity:
		return "city:" + c.City
	case CohortGlobal:
		return "global"
	}
	return string(c.Kind)
}
