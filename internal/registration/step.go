package registration

// Step is the wizard cursor. It drives navigation only; validation never
// looks at it.
type Step int

const (
	StepTicketSelection Step = iota
	StepPersonalInfo
	StepQuestionnaire
	StepReview
)

func (s Step) String() string {
	switch s {
	case StepTicketSelection:
		return "ticket_selection"
	case StepPersonalInfo:
		return "personal_info"
	case StepQuestionnaire:
		return "questionnaire"
	case StepReview:
		return "review"
	default:
		return "unknown"
	}
}

func (s Step) valid() bool {
	return s >= StepTicketSelection && s <= StepReview
}
