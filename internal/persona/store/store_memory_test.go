package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"personadesk/internal/persona"
	"personadesk/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemory()
}

func (s *MemoryStoreSuite) TestLookupBehavior() {
	s.Run("returns record by external ref when it exists", func() {
		stored, err := s.store.Upsert(context.Background(), &persona.Record{
			ExternalRef: "u1",
			JobTitle:    "Strategic Consultant",
			PainPoints:  []string{"slow onboarding"},
		})
		s.Require().NoError(err)
		s.NotZero(stored.LocalID)

		found, err := s.store.FindByExternalRef(context.Background(), "u1")
		s.Require().NoError(err)
		s.Equal("Strategic Consultant", found.JobTitle)
		s.Equal([]string{"slow onboarding"}, found.PainPoints)
	})

	s.Run("returns ErrNotFound when external ref does not exist", func() {
		_, err := s.store.FindByExternalRef(context.Background(), "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("batch fetch skips missing refs", func() {
		_, err := s.store.Upsert(context.Background(), &persona.Record{ExternalRef: "u1"})
		s.Require().NoError(err)
		_, err = s.store.Upsert(context.Background(), &persona.Record{ExternalRef: "u3"})
		s.Require().NoError(err)

		found, err := s.store.FindByExternalRefs(context.Background(), []string{"u1", "u2", "u3"})
		s.Require().NoError(err)
		s.Len(found, 2)
		s.Contains(found, "u1")
		s.Contains(found, "u3")
		s.NotContains(found, "u2")
	})
}

func (s *MemoryStoreSuite) TestUpsertBehavior() {
	s.Run("second upsert updates in place and keeps the local id", func() {
		first, err := s.store.Upsert(context.Background(), &persona.Record{
			ExternalRef: "u1",
			Country:     "India",
		})
		s.Require().NoError(err)

		second, err := s.store.Upsert(context.Background(), &persona.Record{
			ExternalRef: "u1",
			Country:     "Germany",
			Goals:       []string{"expand to EU"},
		})
		s.Require().NoError(err)

		s.Equal(first.LocalID, second.LocalID)
		s.Equal("Germany", second.Country)

		found, err := s.store.FindByExternalRef(context.Background(), "u1")
		s.Require().NoError(err)
		s.Equal("Germany", found.Country)
		s.Equal([]string{"expand to EU"}, found.Goals)
	})

	s.Run("distinct refs get distinct local ids", func() {
		first, err := s.store.Upsert(context.Background(), &persona.Record{ExternalRef: "u1"})
		s.Require().NoError(err)
		second, err := s.store.Upsert(context.Background(), &persona.Record{ExternalRef: "u2"})
		s.Require().NoError(err)
		s.NotEqual(first.LocalID, second.LocalID)
	})

	s.Run("callers cannot mutate stored slices", func() {
		stored, err := s.store.Upsert(context.Background(), &persona.Record{
			ExternalRef: "u1",
			PainPoints:  []string{"one"},
		})
		s.Require().NoError(err)

		stored.PainPoints[0] = "mutated"

		found, err := s.store.FindByExternalRef(context.Background(), "u1")
		s.Require().NoError(err)
		s.Equal([]string{"one"}, found.PainPoints)
	})
}
