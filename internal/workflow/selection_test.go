package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

func referenceFixture() *models.ReferenceSnapshot {
	snap := models.NewReferenceSnapshot()
	snap.Locations = []models.Location{{ID: 3, Name: "Paris"}, {ID: 1, Name: "Lyon"}}
	snap.Venues = []models.Venue{{ID: 7, Street: "12 rue Lafayette"}}
	snap.Certifications = []models.Certification{{ID: 1, Name: "Bachelor"}, {ID: 2, Name: "Mastère"}, {ID: 3, Name: "Expert"}}
	snap.ExamTypes = []models.ExamType{{ID: 10, Name: "Partiel"}, {ID: 11, Name: "Projet"}}
	snap.Durations = []models.Duration{{ID: 4, Name: "2h"}}
	snap.Classes = []models.Class{
		{
			ID:             100,
			Name:           "B3 DEV",
			Certifications: []models.Certification{{ID: 2, Name: "Mastère"}, {ID: 1, Name: "Bachelor"}},
			ExamTypes:      []models.ExamType{{ID: 11, Name: "Projet"}},
		},
		{
			ID:             200,
			Name:           "M1 DATA",
			Certifications: []models.Certification{{ID: 2, Name: "Mastère"}, {ID: 99, Name: "Orphan"}},
			ExamTypes:      []models.ExamType{},
		},
		{ID: 300, Name: "Sans rattachement"},
	}
	return snap
}

func TestFilterOptionsNoClassReturnsSameSlices(t *testing.T) {
	snap := referenceFixture()
	opts := FilterOptions(0, snap.Certifications, snap.ExamTypes, snap.Classes)

	require.Len(t, opts.Certifications, len(snap.Certifications))
	assert.Same(t, &snap.Certifications[0], &opts.Certifications[0])
	assert.Same(t, &snap.ExamTypes[0], &opts.ExamTypes[0])
}

func TestFilterOptionsMatchedClass(t *testing.T) {
	snap := referenceFixture()
	opts := FilterOptions(100, snap.Certifications, snap.ExamTypes, snap.Classes)

	assert.Equal(t, []models.Certification{{ID: 2, Name: "Mastère"}, {ID: 1, Name: "Bachelor"}}, opts.Certifications)
	assert.Equal(t, []models.ExamType{{ID: 11, Name: "Projet"}}, opts.ExamTypes)
}

func TestFilterOptionsEmptyAssociationsDoNotFallBack(t *testing.T) {
	snap := referenceFixture()
	opts := FilterOptions(300, snap.Certifications, snap.ExamTypes, snap.Classes)

	assert.NotNil(t, opts.Certifications)
	assert.Empty(t, opts.Certifications)
	assert.NotNil(t, opts.ExamTypes)
	assert.Empty(t, opts.ExamTypes)
}

func TestFilterOptionsStaleClassIsEmpty(t *testing.T) {
	snap := referenceFixture()
	opts := FilterOptions(999, snap.Certifications, snap.ExamTypes, snap.Classes)

	assert.Empty(t, opts.Certifications)
	assert.Empty(t, opts.ExamTypes)
}

func TestFilterOptionsAlwaysSubsetOfFullSets(t *testing.T) {
	snap := referenceFixture()
	certIDs := map[int]bool{}
	for _, c := range snap.Certifications {
		certIDs[c.ID] = true
	}
	typeIDs := map[int]bool{}
	for _, e := range snap.ExamTypes {
		typeIDs[e.ID] = true
	}

	classIDs := []int{0, 999}
	for _, class := range snap.Classes {
		classIDs = append(classIDs, class.ID)
	}
	for _, id := range classIDs {
		opts := FilterOptions(id, snap.Certifications, snap.ExamTypes, snap.Classes)
		for _, c := range opts.Certifications {
			assert.True(t, certIDs[c.ID], "class %d offers unknown certification %d", id, c.ID)
		}
		for _, e := range opts.ExamTypes {
			assert.True(t, typeIDs[e.ID], "class %d offers unknown exam type %d", id, e.ID)
		}
	}

	// class 200 references certification 99 which is not in the full set
	opts := FilterOptions(200, snap.Certifications, snap.ExamTypes, snap.Classes)
	assert.Equal(t, []models.Certification{{ID: 2, Name: "Mastère"}}, opts.Certifications)
}

func TestSelectClassResetsDependentsOnChange(t *testing.T) {
	snap := referenceFixture()
	form := GenerationForm{ClassID: 100, CertificationID: 2, ExamTypeID: 11, LocationID: 3}

	// Mastère (2) is still offered by class 200 but the reset is unconditional.
	next, opts := SelectClass(form, 200, snap)
	assert.Equal(t, 200, next.ClassID)
	assert.Zero(t, next.CertificationID)
	assert.Zero(t, next.ExamTypeID)
	assert.Equal(t, 3, next.LocationID)
	assert.Equal(t, []models.Certification{{ID: 2, Name: "Mastère"}}, opts.Certifications)
}

func TestSelectClassToNoneResetsAndRestoresFullSets(t *testing.T) {
	snap := referenceFixture()
	form := GenerationForm{ClassID: 100, CertificationID: 1, ExamTypeID: 11}

	next, opts := SelectClass(form, 0, snap)
	assert.Zero(t, next.ClassID)
	assert.Zero(t, next.CertificationID)
	assert.Zero(t, next.ExamTypeID)
	assert.Same(t, &snap.Certifications[0], &opts.Certifications[0])
}

func TestSelectClassSameClassKeepsSelections(t *testing.T) {
	snap := referenceFixture()
	form := GenerationForm{ClassID: 100, CertificationID: 1, ExamTypeID: 11}

	next, opts := SelectClass(form, 100, snap)
	assert.Equal(t, form, next)
	assert.Len(t, opts.Certifications, 2)
}

func TestSelectClassWithoutSnapshot(t *testing.T) {
	next, opts := SelectClass(GenerationForm{CertificationID: 1}, 5, nil)
	assert.Equal(t, 5, next.ClassID)
	assert.Zero(t, next.CertificationID)
	assert.Empty(t, opts.Certifications)
}
