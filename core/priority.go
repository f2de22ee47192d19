package core

import "strings"

// Priority levels assigned to cases before resource matching.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// overdueDays is the elapsed-days threshold above which a case is overdue.
const overdueDays = 30

// urgentKeywords are matched as case-insensitive substrings of the subject.
var urgentKeywords = []string{
	"emergencia",
	"urgente",
	"inmediato",
	"peligro",
	"accidente",
}

// criticalRequestTypes are matched as case-insensitive exact request types.
var criticalRequestTypes = []string{
	"queja",
	"reclamo",
	"denuncia",
}

// PriorityFor classifies a case's priority with a deterministic rule.
// Rules are evaluated in precedence order and the first match wins:
//
//  1. overdue (elapsed days > 30) -> high
//  2. urgent keyword in the subject -> high
//  3. critical request type -> high
//
// Everything else is medium.
func PriorityFor(c *Case) string {
	if c.ElapsedDays > overdueDays {
		return PriorityHigh
	}

	subject := strings.ToLower(c.Subject)
	for _, keyword := range urgentKeywords {
		if strings.Contains(subject, keyword) {
			return PriorityHigh
		}
	}

	requestType := strings.ToLower(c.RequestType)
	for _, critical := range criticalRequestTypes {
		if requestType == critical {
			return PriorityHigh
		}
	}

	return PriorityMedium
}
