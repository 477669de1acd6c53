package domain

import "time"

// InviteeStatus tracks a person's response to a meeting invitation.
// Values match the stored uppercase convention.
type InviteeStatus string

const (
	InviteeConfirmed    InviteeStatus = "CONFIRMED"
	InviteeDeclined     InviteeStatus = "DECLINED"
	InviteeInvited      InviteeStatus = "INVITED"
	InviteeParticipated InviteeStatus = "PARTICIPATED"
)

// Meeting is an event (meeting or webinar). Only referenced here as a source
// of campaign recipient lists.
type Meeting struct {
	ID       string    `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	StartsAt time.Time `json:"starts_at" db:"starts_at"`
}

// Invitee is one person invited to a meeting.
type Invitee struct {
	ID           int64         `json:"id" db:"id"`
	MeetingID    string        `json:"meeting_id" db:"meeting_id"`
	EmailAddress string        `json:"email_address" db:"email_address"`
	FirstName    string        `json:"first_name" db:"first_name"`
	LastName     string        `json:"last_name" db:"last_name"`
	Status       InviteeStatus `json:"status" db:"status"`
}
