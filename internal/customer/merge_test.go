package customer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personadesk/internal/identity"
	"personadesk/internal/persona"
)

func annLee() identity.Record {
	return identity.Record{
		ExternalID: "u1",
		FullName:   "Ann Lee",
		Email:      "ann@x.com",
		CreatedAt:  time.Date(2024, 12, 27, 14, 15, 30, 0, time.UTC),
	}
}

func TestMergeWithoutPersona(t *testing.T) {
	merged := Merge(annLee(), nil)

	assert.Equal(t, "u1", merged.ExternalID)
	assert.Equal(t, "Ann Lee", merged.FullName)
	assert.Equal(t, "ann@x.com", merged.Email)
	assert.Equal(t, PaymentStatusUnpaid, merged.PaymentStatus)
	assert.False(t, merged.HasPersona)
	assert.Equal(t, uuid.Nil, merged.LocalID)
	assert.Empty(t, merged.JobTitle)
	assert.Empty(t, merged.Bio)
	// Enrichment sequences are present but empty, never nil.
	assert.NotNil(t, merged.PainPoints)
	assert.Empty(t, merged.PainPoints)
	assert.NotNil(t, merged.Goals)
	assert.Empty(t, merged.Goals)
}

func TestMergeWithPersona(t *testing.T) {
	localID := uuid.New()
	enrichment := &persona.Record{
		LocalID:     localID,
		ExternalRef: "u1",
		Country:     "India",
		PainPoints:  []string{"slow onboarding"},
	}

	merged := Merge(annLee(), enrichment)

	// The external identity stays authoritative for identity.
	assert.Equal(t, "u1", merged.ExternalID)
	assert.NotEqual(t, localID.String(), merged.ExternalID)
	assert.Equal(t, localID, merged.LocalID)
	assert.True(t, merged.HasPersona)

	// Identity fields untouched by persona fields that were not supplied.
	assert.Equal(t, "Ann Lee", merged.FullName)
	assert.Equal(t, "ann@x.com", merged.Email)

	// Local override wins for the overlapping field.
	assert.Equal(t, "India", merged.Country)
	assert.Equal(t, []string{"slow onboarding"}, merged.PainPoints)
}

func TestMergeFieldPrecedence(t *testing.T) {
	t.Run("persona country wins when both present", func(t *testing.T) {
		record := annLee()
		record.Country = "USA"
		merged := Merge(record, &persona.Record{ExternalRef: "u1", Country: "India"})
		assert.Equal(t, "India", merged.Country)
	})

	t.Run("identity country survives an empty persona value", func(t *testing.T) {
		record := annLee()
		record.Country = "USA"
		merged := Merge(record, &persona.Record{ExternalRef: "u1"})
		assert.Equal(t, "USA", merged.Country)
	})

	t.Run("persona image wins when non-empty", func(t *testing.T) {
		record := annLee()
		record.Image = "https://upstream/avatar.png"
		merged := Merge(record, &persona.Record{ExternalRef: "u1", Image: "data:image/png;base64,xyz"})
		assert.Equal(t, "data:image/png;base64,xyz", merged.Image)
	})
}

func TestMergeIsPure(t *testing.T) {
	enrichment := &persona.Record{
		ExternalRef: "u1",
		Country:     "India",
		PainPoints:  []string{"slow onboarding"},
		Goals:       []string{"expand"},
	}

	first := Merge(annLee(), enrichment)
	second := Merge(annLee(), enrichment)
	assert.Equal(t, first, second)

	// Output slices are copies: mutating one result must not leak into the
	// input or later merges.
	first.PainPoints[0] = "mutated"
	assert.Equal(t, []string{"slow onboarding"}, enrichment.PainPoints)
	third := Merge(annLee(), enrichment)
	assert.Equal(t, []string{"slow onboarding"}, third.PainPoints)
}

func TestDerivedPaymentStatus(t *testing.T) {
	t.Run("no orders means unpaid", func(t *testing.T) {
		record := annLee()
		record.Orders = nil
		assert.Equal(t, PaymentStatusUnpaid, Merge(record, nil).PaymentStatus)

		record.Orders = []json.RawMessage{}
		assert.Equal(t, PaymentStatusUnpaid, Merge(record, nil).PaymentStatus)
	})

	t.Run("any order means paid", func(t *testing.T) {
		record := annLee()
		record.Orders = []json.RawMessage{json.RawMessage(`{"sku":"pro"}`)}
		assert.Equal(t, PaymentStatusPaid, Merge(record, nil).PaymentStatus)
	})
}

func TestMergeTimestamps(t *testing.T) {
	updated := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	researched := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	merged := Merge(annLee(), &persona.Record{
		ExternalRef:    "u1",
		UpdatedAt:      updated,
		LastResearched: &researched,
	})

	require.NotNil(t, merged.UpdatedAt)
	assert.True(t, merged.UpdatedAt.Equal(updated))
	require.NotNil(t, merged.LastResearched)
	assert.True(t, merged.LastResearched.Equal(researched))
}
