package dispatch

import "errors"

var (
	// ErrLocked means another request is already dispatching this campaign.
	ErrLocked = errors.New("campaign is already being dispatched")

	// ErrNoRecipients means the request carried no usable recipients.
	ErrNoRecipients = errors.New("no recipients provided")
)
