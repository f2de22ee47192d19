package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for derived artifacts such as index chunks.
// It is generated with content-based hashing so identical content always
// produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Well-known status values. Case status is free-form in the source data;
// only StatusActive has semantic weight (assignment operates on active
// cases). StatusAvailable applies to personnel and vehicles.
const (
	StatusActive    = "active"
	StatusAvailable = "available"
)

// Case is one citizen service request record. Cases are created by the
// record store's load step and are read-only everywhere else.
type Case struct {
	CaseKey         string // unique external entry key
	ResponseKey     string
	Status          string
	Subject         string
	Category        string // main theme tag
	RequestType     string
	Address         string
	Neighborhood    string
	Commune         string
	PetitionerName  string
	PetitionerPhone string
	PetitionerEmail string
	ElapsedDays     int
	ResponsibleUnit string
	RegisteredAt    time.Time // zero when unknown
	DueAt           time.Time // zero when unknown
}

// Field resolves a logical field name to its value. It is the single
// source of truth for filter keys used by the record store's query
// filters and the hybrid retrieval filter.
func (c *Case) Field(name string) (string, bool) {
	switch name {
	case "case_key":
		return c.CaseKey, true
	case "status":
		return c.Status, true
	case "subject":
		return c.Subject, true
	case "category":
		return c.Category, true
	case "request_type":
		return c.RequestType, true
	case "address":
		return c.Address, true
	case "neighborhood":
		return c.Neighborhood, true
	case "zone", "commune":
		return c.Commune, true
	case "petitioner":
		return c.PetitionerName, true
	case "responsible_unit":
		return c.ResponsibleUnit, true
	}
	return "", false
}

// Personnel is read-only reference data for the assignment engine.
// Zone is the primary join key to Case.
type Personnel struct {
	EmployeeID     string
	FirstName      string
	LastName       string
	Role           string
	Zone           string
	Status         string
	Certifications []string
}

// FullName returns the display name used in oracle prompts.
func (p *Personnel) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Vehicle is read-only reference data for the assignment engine.
type Vehicle struct {
	LicensePlate string
	Type         string
	Zone         string
	Status       string
	Capacity     int
}

// Zone describes a geographic partition. Priority and demographic
// attributes are carried for future prioritization and are not consumed
// by the matching logic itself.
type Zone struct {
	Name          string
	Code          string
	Commune       string
	PriorityLevel string
	Population    int
	AreaKM2       float64
}

// IndexEntry is one embedded chunk of a case's searchable text plus the
// denormalized metadata subset used for filtering. Every entry's CaseKey
// must resolve to a live case in the record store; stale entries are
// purged only by a full rebuild.
type IndexEntry struct {
	Id           ID
	CaseKey      string
	Text         string
	Vector       []float32
	Status       string
	Category     string
	Zone         string
	Neighborhood string
	RegisteredAt time.Time
}

// ChunkMatch is an index entry match from vector similarity search.
type ChunkMatch struct {
	Entry *IndexEntry
	Score float32
}

// CaseHit is a retrieval result: the live case, its relevance score, and
// an excerpt of the chunk that matched.
type CaseHit struct {
	Case           *Case
	Score          float32
	MatchedContent string
}

// Assignment is the ephemeral decision produced by the assignment engine.
// It is returned to the caller and never persisted.
type Assignment struct {
	CaseKey        string
	Personnel      []string
	Vehicles       []string
	EstimatedHours float64
	Confidence     float64 // in [0, 1]
	Rationale      string
	Zone           string
	AssignedAt     time.Time
}
