package workflow

import "github.com/Mk-yl/convocation-portal/internal/models"

// Options are the certification and exam type choices offered for the
// selected class.
type Options struct {
	Certifications []models.Certification `json:"certifications"`
	ExamTypes      []models.ExamType      `json:"typesExamen"`
}

// FilterOptions derives the allowed choices for classID. Class 0 returns the
// full slices themselves. A known class returns its own associations limited
// to entities present in the full sets, possibly none. An unknown class
// returns no choices.
func FilterOptions(classID int, certs []models.Certification, types []models.ExamType, classes []models.Class) Options {
	if classID == 0 {
		return Options{Certifications: certs, ExamTypes: types}
	}
	for _, class := range classes {
		if class.ID != classID {
			continue
		}
		return Options{
			Certifications: restrict(class.Certifications, certs),
			ExamTypes:      restrict(class.ExamTypes, types),
		}
	}
	return Options{Certifications: []models.Certification{}, ExamTypes: []models.ExamType{}}
}

// SelectClass moves form to classID. Any change of class clears the
// certification and exam type before the choices are recomputed, even when
// the old values would remain valid.
func SelectClass(form GenerationForm, classID int, snap *models.ReferenceSnapshot) (GenerationForm, Options) {
	if classID < 0 {
		classID = 0
	}
	if classID != form.ClassID {
		form.CertificationID = 0
		form.ExamTypeID = 0
		form.ClassID = classID
	}
	if snap == nil {
		snap = models.NewReferenceSnapshot()
	}
	return form, FilterOptions(form.ClassID, snap.Certifications, snap.ExamTypes, snap.Classes)
}

// restrict keeps the entries of wanted, in their order, that also appear in
// full, returning the instances from full.
func restrict[T models.ReferenceEntity](wanted, full []T) []T {
	index := make(map[int]int, len(full))
	for i, entity := range full {
		if _, seen := index[entity.EntityID()]; !seen {
			index[entity.EntityID()] = i
		}
	}
	out := make([]T, 0, len(wanted))
	for _, entity := range wanted {
		if i, ok := index[entity.EntityID()]; ok {
			out = append(out, full[i])
		}
	}
	return out
}
