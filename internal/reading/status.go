package reading

import "fmt"

// Status is the workflow stage of a reading session.
type Status string

const (
	StatusToRead   Status = "to-read"
	StatusReadNext Status = "read-next"
	StatusReading  Status = "reading"
	StatusRead     Status = "read"
	StatusDNF      Status = "dnf"
)

// ParseStatus validates a raw status string at the boundary. Anything outside
// the closed set is rejected before it can reach the state machine.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusToRead, StatusReadNext, StatusReading, StatusRead, StatusDNF:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("invalid status: %q (valid values: to-read, read-next, reading, read, dnf)", raw)
	}
}

// IsBackward reports whether moving from one status to another walks the
// workflow backwards. Only reading -> to-read/read-next counts; once a
// session has progress this movement archives it instead of rewriting it.
func IsBackward(from, to Status) bool {
	if from != StatusReading {
		return false
	}
	return to == StatusToRead || to == StatusReadNext
}

// Archives reports whether entering the status retires the session from the
// active slot.
func Archives(s Status) bool {
	return s == StatusRead || s == StatusDNF
}
