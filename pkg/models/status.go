package models

// Status is the derived lifecycle state of an intent.
type Status int

const (
	StatusActive Status = iota
	StatusExecuted
	StatusCancelled
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusExecuted:
		return "Executed"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}
