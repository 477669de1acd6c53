package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/luminaed/atrium/internal/domain"
	"github.com/luminaed/atrium/internal/mail"
	"github.com/luminaed/atrium/internal/pkg/backoff"
	"github.com/luminaed/atrium/internal/pkg/distlock"
	"github.com/luminaed/atrium/internal/pkg/logger"
)

// maxRetries bounds re-sends after a rate-limited attempt. A recipient sees
// at most maxRetries+1 attempts total.
const maxRetries = 3

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LockFactory returns the dispatch lock for one campaign. Injected so tests
// run without Redis or Postgres.
type LockFactory func(campaignID string) distlock.Lock

// Settings are the per-send options supplied alongside the campaign.
type Settings struct {
	ReplyTo          string `json:"replyTo"`
	ConfirmationCode bool   `json:"confirmationCode"`
	Color            string `json:"color"`
	LogoFile         string `json:"logoFile"`
}

// Request is one campaign send: the campaign content, send options, and the
// raw recipient list before dedup.
type Request struct {
	Campaign   domain.Campaign `json:"campaign"`
	Settings   Settings        `json:"settings"`
	Recipients []Candidate     `json:"recipients"`
}

// Failure records one recipient's terminal failure for the response payload.
type Failure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// Result aggregates a finished dispatch run.
type Result struct {
	CampaignID string                `json:"campaignId"`
	Total      int                   `json:"total"`
	Successful int                   `json:"successful"`
	Failed     int                   `json:"failed"`
	Duplicates int                   `json:"duplicates"`
	Failures   []Failure             `json:"failures,omitempty"`
	Status     domain.CampaignStatus `json:"status"`
}

// Service dispatches campaigns one recipient at a time.
type Service struct {
	campaigns  CampaignRepository
	recipients RecipientRepository
	sender     mail.Sender
	sleeper    backoff.Sleeper
	locks      LockFactory
	from       string
}

// NewService wires a dispatcher. from is the sender address applied to every
// message.
func NewService(campaigns CampaignRepository, recipients RecipientRepository, sender mail.Sender, sleeper backoff.Sleeper, locks LockFactory, from string) *Service {
	return &Service{
		campaigns:  campaigns,
		recipients: recipients,
		sender:     sender,
		sleeper:    sleeper,
		locks:      locks,
		from:       from,
	}
}

// SendCampaign runs one dispatch end to end: takes the per-campaign lock,
// dedups the recipient list, delivers sequentially with a fixed pause
// between recipients, and writes the derived campaign status back when done.
// Returns ErrLocked if another dispatch of the same campaign is in flight.
func (s *Service) SendCampaign(ctx context.Context, req Request) (*Result, error) {
	if len(req.Recipients) == 0 {
		return nil, ErrNoRecipients
	}

	lock := s.locks(req.Campaign.ID)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring campaign lock: %w", err)
	}
	if !acquired {
		return nil, ErrLocked
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("releasing campaign lock", "campaign_id", req.Campaign.ID, "error", err.Error())
		}
	}()

	req.Campaign.Status = domain.CampaignSending
	if err := s.campaigns.Upsert(ctx, &req.Campaign); err != nil {
		return nil, fmt.Errorf("upserting campaign: %w", err)
	}

	list, dropped := Dedup(req.Recipients)
	if dropped > 0 {
		logger.Info("deduplicated recipients",
			"campaign_id", req.Campaign.ID,
			"requested", len(req.Recipients),
			"dropped", dropped)
	}

	result := &Result{
		CampaignID: req.Campaign.ID,
		Total:      len(list),
		Duplicates: dropped,
	}

	for i, cand := range list {
		if i > 0 {
			s.sleeper.Sleep(ctx, backoff.Delay(0))
		}
		if err := s.sendOne(ctx, req, cand); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, Failure{Email: cand.Email, Error: err.Error()})
			continue
		}
		result.Successful++
	}

	result.Status = s.settleStatus(ctx, req.Campaign.ID)

	logger.Info("campaign dispatch finished",
		"campaign_id", req.Campaign.ID,
		"total", result.Total,
		"successful", result.Successful,
		"failed", result.Failed,
		"status", string(result.Status))
	return result, nil
}

// sendOne delivers to a single recipient, retrying rate-limited attempts.
// Any returned error is terminal for this recipient only. Validation runs
// before anything is persisted; an invalid address never reaches the
// provider, but its failure is still recorded as a recipient row so the
// derived campaign status counts it.
func (s *Service) sendOne(ctx context.Context, req Request, cand Candidate) error {
	if !emailPattern.MatchString(cand.Email) {
		err := fmt.Errorf("invalid email format: %s", cand.Email)
		rec := recipientRow(req.Campaign.ID, cand)
		if uerr := s.recipients.UpsertPending(ctx, rec); uerr != nil {
			logger.Error("recording invalid recipient",
				"campaign_id", req.Campaign.ID, "error", uerr.Error())
			return err
		}
		s.markFailed(ctx, rec.ID, err)
		return err
	}

	rec := recipientRow(req.Campaign.ID, cand)
	if err := s.recipients.UpsertPending(ctx, rec); err != nil {
		return fmt.Errorf("recording recipient: %w", err)
	}

	msg, err := s.buildMessage(req, cand)
	if err != nil {
		s.markFailed(ctx, rec.ID, err)
		return fmt.Errorf("rendering message: %w", err)
	}

	for attempt := 0; ; attempt++ {
		sendErr := s.sender.Send(ctx, msg)
		if sendErr == nil {
			if err := s.recipients.MarkSent(ctx, rec.ID, time.Now().UTC()); err != nil {
				// The message was delivered; a bookkeeping failure must not
				// flip the outcome.
				logger.Error("marking recipient sent",
					"recipient_id", rec.ID, "error", err.Error())
			}
			return nil
		}

		s.markFailed(ctx, rec.ID, sendErr)
		if !mail.IsRateLimited(sendErr) || attempt >= maxRetries {
			return sendErr
		}
		logger.Warn("rate limited, retrying",
			"campaign_id", req.Campaign.ID,
			"attempt", attempt+1,
			"delay_ms", backoff.Delay(attempt).Milliseconds())
		s.sleeper.Sleep(ctx, backoff.Delay(attempt))
	}
}

func (s *Service) buildMessage(req Request, cand Candidate) (mail.Message, error) {
	code := ""
	if req.Settings.ConfirmationCode {
		code = ConfirmationCode()
	}
	html, err := RenderHTML(
		Personalize(req.Campaign.Body, cand),
		Personalize(req.Campaign.Footer, cand),
		req.Settings.Color,
		req.Settings.LogoFile,
		code,
	)
	if err != nil {
		return mail.Message{}, err
	}
	return mail.Message{
		From:    s.from,
		To:      cand.Email,
		ReplyTo: req.Settings.ReplyTo,
		Subject: Personalize(req.Campaign.Subject, cand),
		HTML:    html,
	}, nil
}

func (s *Service) markFailed(ctx context.Context, recipientID string, cause error) {
	if err := s.recipients.MarkFailed(ctx, recipientID, cause.Error()); err != nil {
		logger.Error("marking recipient failed",
			"recipient_id", recipientID, "error", err.Error())
	}
}

// settleStatus derives the final campaign status from recipient counts and
// writes it back. Count or update failures degrade to logging; the dispatch
// result already happened and is reported regardless.
func (s *Service) settleStatus(ctx context.Context, campaignID string) domain.CampaignStatus {
	counts, err := s.recipients.CountByStatus(ctx, campaignID)
	if err != nil {
		logger.Error("counting recipient statuses", "campaign_id", campaignID, "error", err.Error())
		return domain.CampaignSending
	}
	status := domain.DeriveCampaignStatus(counts)
	if err := s.campaigns.UpdateStatus(ctx, campaignID, status); err != nil {
		logger.Error("updating campaign status", "campaign_id", campaignID, "error", err.Error())
	}
	return status
}

// CampaignStatus reports the derived status and counts for one campaign.
func (s *Service) CampaignStatus(ctx context.Context, campaignID string) (domain.CampaignStatus, domain.RecipientStatusCounts, error) {
	counts, err := s.recipients.CountByStatus(ctx, campaignID)
	if err != nil {
		return "", domain.RecipientStatusCounts{}, fmt.Errorf("counting recipient statuses: %w", err)
	}
	return domain.DeriveCampaignStatus(counts), counts, nil
}

// recipientRow builds the pending row for a candidate, populating exactly
// one of person_id / manual_email.
func recipientRow(campaignID string, cand Candidate) *domain.Recipient {
	rec := &domain.Recipient{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Status:     domain.RecipientPending,
	}
	if pid, ok := cand.PersonID(); ok {
		rec.PersonID = &pid
	} else {
		email := cand.Email
		rec.ManualEmail = &email
	}
	return rec
}
