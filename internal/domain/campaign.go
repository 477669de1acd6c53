package domain

import "time"

// CampaignStatus enumerates the lifecycle states of an email campaign.
// The status is derived from recipient counts, not tracked independently.
type CampaignStatus string

const (
	CampaignDraft   CampaignStatus = "draft"
	CampaignSending CampaignStatus = "sending"
	CampaignSent    CampaignStatus = "sent"
	CampaignFailed  CampaignStatus = "failed"
	CampaignPartial CampaignStatus = "partial"
)

// Campaign is a bulk email with shared subject/body/footer, personalized per
// recipient at send time.
type Campaign struct {
	ID        string         `json:"id" db:"id"`
	Title     string         `json:"title" db:"title"`
	Subject   string         `json:"subject" db:"subject"`
	Body      string         `json:"body" db:"body"`
	Footer    string         `json:"footer" db:"footer"`
	Status    CampaignStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// RecipientStatus enumerates the per-recipient delivery states. A recipient
// row is mutated at most twice: created pending, then marked sent or failed.
type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
)

// Recipient is one email destination for a campaign, backed either by a
// known Person (PersonID set) or a free-text manual address (ManualEmail
// set). Exactly one of the two identifies the target, never both.
type Recipient struct {
	ID           string          `json:"id" db:"id"`
	CampaignID   string          `json:"campaign_id" db:"campaign_id"`
	PersonID     *int64          `json:"person_id" db:"person_id"`
	ManualEmail  *string         `json:"manual_email" db:"manual_email"`
	Status       RecipientStatus `json:"status" db:"status"`
	SentAt       *time.Time      `json:"sent_at" db:"sent_at"`
	ErrorMessage string          `json:"error_message" db:"error_message"`
}

// RecipientStatusCounts aggregates per-status recipient totals for a campaign.
type RecipientStatusCounts struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// DeriveCampaignStatus computes the campaign status from recipient counts:
// draft before any recipients exist, sending while all are pending, sent or
// failed when every recipient settled the same way, partial for any mix.
func DeriveCampaignStatus(c RecipientStatusCounts) CampaignStatus {
	switch {
	case c.Total == 0:
		return CampaignDraft
	case c.Pending == c.Total:
		return CampaignSending
	case c.Sent == c.Total:
		return CampaignSent
	case c.Failed == c.Total:
		return CampaignFailed
	default:
		return CampaignPartial
	}
}
