package booking

// Status is the lifecycle state of an appointment request.
type Status string

const (
	// StatusProcessing is the initial state of every new request.
	StatusProcessing Status = "processing"
	// StatusAccepted means the partner has taken the request on.
	StatusAccepted Status = "accepted"
	// StatusCompleted is terminal.
	StatusCompleted Status = "completed"
	// StatusCancelled is terminal.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusAccepted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Open reports whether a request in state s may still be modified. Terminal
// requests are frozen for both parties.
func (s Status) Open() bool {
	return s == StatusProcessing || s == StatusAccepted
}

// UserMaySet reports whether a user may move a request into state s.
// Users can withdraw or close out their own requests but never accept them.
func UserMaySet(s Status) bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PartnerMaySet reports whether a partner may move a request into state s.
func PartnerMaySet(s Status) bool {
	return s == StatusAccepted || s == StatusCompleted || s == StatusCancelled
}

// UpdaterUser and UpdaterPartner tag which side last touched a request.
const (
	UpdaterUser    = "user"
	UpdaterPartner = "partner"
)
