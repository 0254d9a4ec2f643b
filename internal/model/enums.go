package model

type PetitionStatus string

const (
	StatusSubmitted   PetitionStatus = "submitted"
	StatusUnderReview PetitionStatus = "under_review"
	StatusInProgress  PetitionStatus = "in_progress"
	StatusResolved    PetitionStatus = "resolved"
	StatusRejected    PetitionStatus = "rejected"
	StatusEscalated   PetitionStatus = "escalated"
)

func ValidStatuses() []string {
	return []string{
		string(StatusSubmitted),
		string(StatusUnderReview),
		string(StatusInProgress),
		string(StatusResolved),
		string(StatusRejected),
		string(StatusEscalated),
	}
}

func (s PetitionStatus) Valid() bool {
	for _, v := range ValidStatuses() {
		if string(s) == v {
			return true
		}
	}
	return false
}

type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

type Role string

const (
	RoleCitizen Role = "user"
	RoleOfficer Role = "admin"
)
