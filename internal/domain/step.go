package domain

// CreationStep is one of the five caller-visible phases of a token creation.
// The underlying control flow is a straight-line sequence; steps exist only
// as a progress projection for display.
type CreationStep string

const (
	StepPayment      CreationStep = "payment"
	StepMint         CreationStep = "mint"
	StepMetadata     CreationStep = "metadata"
	StepRevokes      CreationStep = "revokes"
	StepVerification CreationStep = "verification"
)

// StepStatus is the display status of a creation step.
// Transitions are monotonic: pending → loading → completed|error.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepLoading   StepStatus = "loading"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// StepEvent is emitted once per step transition, never per retry attempt.
type StepEvent struct {
	Wallet string       `json:"wallet"`
	Step   CreationStep `json:"step"`
	Status StepStatus   `json:"status"`
	At     int64        `json:"at"` // Unix timestamp in milliseconds
}

// Steps lists all creation steps in pipeline order.
func Steps() []CreationStep {
	return []CreationStep{StepPayment, StepMint, StepMetadata, StepRevokes, StepVerification}
}
