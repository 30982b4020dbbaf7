package models

import "fmt"

// ReferenceKind names a lookup collection as it appears in admin paths.
type ReferenceKind string

const (
	KindLocations      ReferenceKind = "villes"
	KindVenues         ReferenceKind = "adresses"
	KindCertifications ReferenceKind = "certifications"
	KindExamTypes      ReferenceKind = "types-examen"
	KindDurations      ReferenceKind = "durees"
	KindClasses        ReferenceKind = "classes"
)

// ReferenceKinds lists every kind in the order screens load them.
var ReferenceKinds = []ReferenceKind{
	KindLocations,
	KindVenues,
	KindCertifications,
	KindExamTypes,
	KindDurations,
	KindClasses,
}

// ParseReferenceKind validates a path segment.
func ParseReferenceKind(raw string) (ReferenceKind, bool) {
	for _, kind := range ReferenceKinds {
		if string(kind) == raw {
			return kind, true
		}
	}
	return "", false
}

// ReferenceEntity is implemented by every lookup entity.
type ReferenceEntity interface {
	EntityID() int
	Label() string
}

// Location is a city hosting exams.
type Location struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"nom" validate:"required"`
}

func (l Location) EntityID() int { return l.ID }
func (l Location) Label() string { return l.Name }

// Venue is a street address where candidates are convened.
type Venue struct {
	ID     int    `json:"id,omitempty"`
	Street string `json:"rue" validate:"required"`
}

func (v Venue) EntityID() int { return v.ID }
func (v Venue) Label() string { return v.Street }

// Certification is a diploma a class prepares for.
type Certification struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"nom" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (c Certification) EntityID() int { return c.ID }
func (c Certification) Label() string { return c.Name }

// ExamType is the kind of assessment being convened.
type ExamType struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"nom" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (e ExamType) EntityID() int { return e.ID }
func (e ExamType) Label() string { return e.Name }

// Duration is a named exam length.
type Duration struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"nom" validate:"required"`
}

func (d Duration) EntityID() int { return d.ID }
func (d Duration) Label() string { return d.Name }

// Class groups candidates and carries back-references to the certifications
// and exam types it is associated with.
type Class struct {
	ID             int             `json:"id,omitempty"`
	Name           string          `json:"nom" validate:"required"`
	Certifications []Certification `json:"certifications"`
	ExamTypes      []ExamType      `json:"typesExamen"`
}

func (c Class) EntityID() int { return c.ID }
func (c Class) Label() string { return c.Name }

// ClassDraft is the id-based form used to create or edit a class.
type ClassDraft struct {
	Name             string `json:"nom" validate:"required"`
	CertificationIDs []int  `json:"certificationIds"`
	ExamTypeIDs      []int  `json:"typeExamenIds"`
}

// ReferenceSnapshot holds every lookup collection in server order.
type ReferenceSnapshot struct {
	Locations      []Location      `json:"villes"`
	Venues         []Venue         `json:"adresses"`
	Certifications []Certification `json:"certifications"`
	ExamTypes      []ExamType      `json:"typesExamen"`
	Durations      []Duration      `json:"durees"`
	Classes        []Class         `json:"classes"`
}

// NewReferenceSnapshot returns a snapshot whose collections are empty but
// non-nil.
func NewReferenceSnapshot() *ReferenceSnapshot {
	return &ReferenceSnapshot{
		Locations:      []Location{},
		Venues:         []Venue{},
		Certifications: []Certification{},
		ExamTypes:      []ExamType{},
		Durations:      []Duration{},
		Classes:        []Class{},
	}
}

// FindClass returns the class with the given id.
func (s *ReferenceSnapshot) FindClass(id int) (Class, bool) {
	if s == nil {
		return Class{}, false
	}
	for _, c := range s.Classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

// Collection returns a pointer to the slice backing kind, suitable as a
// JSON decode target.
func (s *ReferenceSnapshot) Collection(kind ReferenceKind) (interface{}, error) {
	switch kind {
	case KindLocations:
		return &s.Locations, nil
	case KindVenues:
		return &s.Venues, nil
	case KindCertifications:
		return &s.Certifications, nil
	case KindExamTypes:
		return &s.ExamTypes, nil
	case KindDurations:
		return &s.Durations, nil
	case KindClasses:
		return &s.Classes, nil
	default:
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
}

// Adopt copies the collection of kind from other, keeping it non-nil.
func (s *ReferenceSnapshot) Adopt(other *ReferenceSnapshot, kind ReferenceKind) {
	switch kind {
	case KindLocations:
		s.Locations = append([]Location{}, other.Locations...)
	case KindVenues:
		s.Venues = append([]Venue{}, other.Venues...)
	case KindCertifications:
		s.Certifications = append([]Certification{}, other.Certifications...)
	case KindExamTypes:
		s.ExamTypes = append([]ExamType{}, other.ExamTypes...)
	case KindDurations:
		s.Durations = append([]Duration{}, other.Durations...)
	case KindClasses:
		s.Classes = append([]Class{}, other.Classes...)
	}
}

// NewCollection allocates an empty list for kind.
func NewCollection(kind ReferenceKind) (interface{}, error) {
	return NewReferenceSnapshot().Collection(kind)
}

// NewEntity allocates a zero entity for kind.
func NewEntity(kind ReferenceKind) (interface{}, error) {
	switch kind {
	case KindLocations:
		return &Location{}, nil
	case KindVenues:
		return &Venue{}, nil
	case KindCertifications:
		return &Certification{}, nil
	case KindExamTypes:
		return &ExamType{}, nil
	case KindDurations:
		return &Duration{}, nil
	case KindClasses:
		return &Class{}, nil
	default:
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
}
