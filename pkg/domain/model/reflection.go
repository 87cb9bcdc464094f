package model

import (
	"github.com/google/uuid"
)

// ReflectionIndexVersion is the current on-disk format version of the
// reflection index file.
const ReflectionIndexVersion = "1.0"

// ReflectionID is a UUID-based identifier for a Reflection
type ReflectionID string

// NewReflectionID generates a new UUID v4 ReflectionID
func NewReflectionID() ReflectionID {
	return ReflectionID(uuid.New().String())
}

// String returns the string representation of the ID
func (id ReflectionID) String() string {
	return string(id)
}

// Reflection is one persisted record of a past content analysis. The store
// assigns ID and Timestamp; callers never set them.
type Reflection struct {
	ID             ReflectionID `json:"id"`
	Date           string       `json:"date"` // YYYY-MM-DD
	SourceNotePath string       `json:"sourceNotePath"`
	ReflectionText string       `json:"reflectionText"`
	Tags           []string     `json:"tags"`
	Keywords       []string     `json:"keywords"`
	Timestamp      int64        `json:"timestamp"` // epoch millis
}

// Clone returns a deep copy of the reflection
func (r *Reflection) Clone() *Reflection {
	copied := &Reflection{
		ID:             r.ID,
		Date:           r.Date,
		SourceNotePath: r.SourceNotePath,
		ReflectionText: r.ReflectionText,
		Timestamp:      r.Timestamp,
	}
	if r.Tags != nil {
		copied.Tags = make([]string, len(r.Tags))
		copy(copied.Tags, r.Tags)
	}
	if r.Keywords != nil {
		copied.Keywords = make([]string, len(r.Keywords))
		copy(copied.Keywords, r.Keywords)
	}
	return copied
}

// ReflectionIndex is the persisted container for reflections. Entries keep
// insertion order; the slice order is the array order on disk.
type ReflectionIndex struct {
	Version     string        `json:"version"`
	Entries     []*Reflection `json:"entries"`
	LastUpdated int64         `json:"lastUpdated"` // epoch millis
}

// NewReflectionIndex returns an empty index at the current format version
func NewReflectionIndex() *ReflectionIndex {
	return &ReflectionIndex{
		Version: ReflectionIndexVersion,
		Entries: []*Reflection{},
	}
}

// ReflectionPatch holds optional field updates for a reflection. Nil fields
// are left unchanged.
type ReflectionPatch struct {
	Date           *string
	SourceNotePath *string
	ReflectionText *string
	Tags           *[]string
	Keywords       *[]string
}

// ReflectionQuery holds optional search criteria. All supplied criteria are
// combined with AND; slice criteria match when any element matches.
type ReflectionQuery struct {
	Text       string   // case-insensitive substring of ReflectionText
	Tags       []string // match any
	Keywords   []string // match any
	DateFrom   string   // inclusive, YYYY-MM-DD
	DateTo     string   // inclusive, YYYY-MM-DD
	SourcePath string   // substring of SourceNotePath
}

// IsZero reports whether no criteria are set
func (q ReflectionQuery) IsZero() bool {
	return q.Text == "" && len(q.Tags) == 0 && len(q.Keywords) == 0 &&
		q.DateFrom == "" && q.DateTo == "" && q.SourcePath == ""
}
