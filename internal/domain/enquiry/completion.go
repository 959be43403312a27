package enquiry

// CompletionStatus is the derived progress of an enquiry, computed on read
// from auxiliary signals rather than stored.
type CompletionStatus string

const (
	CompletionCreated    CompletionStatus = "CREATED"
	CompletionFollowedUp CompletionStatus = "FOLLOWED_UP"
	CompletionConfirmed  CompletionStatus = "CONFIRMED"
	CompletionBooked     CompletionStatus = "BOOKED"
)

// StatusSnapshot captures the signals the completion status is derived from.
// Callers fetch it once and pass it here instead of issuing cascading
// existence checks against the database.
type StatusSnapshot struct {
	Variant            TourVariant
	Process            ProcessState
	HasFollowUp        bool
	HasFamilyHead      bool
	AllBalancesSettled bool
}

// DeriveCompletionStatus computes the completion status from a snapshot.
// An enquiry counts as confirmed once a family head exists or the process
// state says so; a custom tour is Booked only when every family head's
// payment balance has reached zero.
func DeriveCompletionStatus(s StatusSnapshot) CompletionStatus {
	confirmed := s.Process == ProcessConfirmed || s.HasFamilyHead
	if confirmed {
		if s.Variant == TourVariantCustom && s.AllBalancesSettled {
			return CompletionBooked
		}
		return CompletionConfirmed
	}
	if s.HasFollowUp {
		return CompletionFollowedUp
	}
	return CompletionCreated
}
