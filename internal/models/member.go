package models

// Member is a registered krama of the village cooperative.
// Members are read-only from the dashboard's point of view.
type Member struct {
	// ID is the krama identifier used for lookups and refreshes.
	// It may be the internal member ID or the national ID number (NIK).
	ID string

	// Name is the display name of the member.
	Name string

	// Status is the membership status as reported by the backend
	// (e.g. "aktif", "pindah"). It is displayed verbatim.
	Status string
}
