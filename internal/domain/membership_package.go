package domain

import "time"

// DefaultTermMonths is used when a package carries no term of its own.
const DefaultTermMonths = 12

// MembershipPackage is read-only from the registration lifecycle's point of view.
// Price is expressed in the smallest currency unit (VND has no minor unit).
type MembershipPackage struct {
	ID         int32  `json:"id"`
	ClubID     int32  `json:"club_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	TermMonths int32  `json:"term_months"`
	IsActive   bool   `json:"is_active"`
}

// TermEnd returns the end of a validity window starting at start.
func (p *MembershipPackage) TermEnd(start time.Time, fallbackMonths int) time.Time {
	months := int(p.TermMonths)
	if months <= 0 {
		months = fallbackMonths
	}
	if months <= 0 {
		months = DefaultTermMonths
	}
	return start.AddDate(0, months, 0)
}
