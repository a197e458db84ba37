package services

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const (
	msgCardNotFound      = "Access card not found"
	msgAccessLogNotFound = "Access log not found"
	msgInvalidAccessType = "Invalid access type. Must be one of: entry, exit, denied"
)

// AccessAttempt identifies the card by CardNumber, or by CardID when set.
type AccessAttempt struct {
	CardNumber string
	CardID     string
	Location   string
	Requested  string
	// BypassStatusCheck records Requested as-is regardless of card status.
	// Only trusted administrative callers set it.
	BypassStatusCheck bool
}

type AccessStats struct {
	Total           int     `json:"total_attempts"`
	Entries         int     `json:"successful_entries"`
	Exits           int     `json:"exits"`
	Denied          int     `json:"denied_attempts"`
	SuccessRate     float64 `json:"success_rate"`
	UniqueLocations int     `json:"unique_locations"`
	UniqueCards     int     `json:"unique_cards_used"`
}

// AccessService decides access attempts and keeps their audit trail.
type AccessService struct {
	Store     store.Store
	Clock     clock.Clock
	Publisher AccessLogPublisher
	Metrics   *Instruments
}

func (s AccessService) now() time.Time {
	if s.Clock == nil {
		return clock.Real().Now()
	}
	return s.Clock.Now()
}

// Authorize records exactly one access log for a well-formed attempt on a
// known card. Cards that are not active are recorded as denied unless the
// status check is bypassed.
func (s AccessService) Authorize(ctx context.Context, attempt AccessAttempt) (models.AccessLog, error) {
	requested, err := models.ParseAccessType(attempt.Requested)
	if err != nil {
		return models.AccessLog{}, ErrInvalidInput(msgInvalidAccessType)
	}
	location := strings.TrimSpace(attempt.Location)
	if location == "" {
		return models.AccessLog{}, ErrInvalidInput("Location is required")
	}

	var card models.AccessCard
	switch {
	case attempt.CardID != "":
		card, err = s.Store.GetCard(ctx, attempt.CardID)
	case attempt.CardNumber != "":
		card, err = s.Store.GetCardByNumber(ctx, attempt.CardNumber)
	default:
		return models.AccessLog{}, ErrInvalidInput("Card number is required")
	}
	if err != nil {
		return models.AccessLog{}, storeErr(err, msgCardNotFound, "", "load card")
	}

	effective := requested
	if !attempt.BypassStatusCheck && card.Status != models.CardActive {
		effective = models.AccessDenied
	}
	cardID := card.ID
	entry := models.AccessLog{
		ID:         uuid.NewString(),
		CardID:     &cardID,
		AccessedAt: normalizeTime(s.now()),
		Location:   location,
		AccessType: effective,
		Granted:    effective.Granted(),
	}
	if err := s.Store.AppendAccessLog(ctx, entry); err != nil {
		return models.AccessLog{}, storeErr(err, msgCardNotFound, "", "append access log")
	}
	s.Metrics.accessDecision(effective)
	if s.Publisher != nil {
		s.Publisher.Publish(entry)
	}
	if !entry.Granted {
		log.Printf("access denied: card=%s location=%q status=%s", card.CardNumber, location, card.Status)
	}
	return entry, nil
}

func (s AccessService) Get(ctx context.Context, id string) (models.AccessLog, error) {
	entry, err := s.Store.GetAccessLog(ctx, id)
	return entry, storeErr(err, msgAccessLogNotFound, "", "load access log")
}

// List filters by card, user or location; unknown cards and users are NotFound.
func (s AccessService) List(ctx context.Context, filter store.AccessLogFilter) ([]models.AccessLog, error) {
	if filter.CardID != "" {
		if _, err := s.Store.GetCard(ctx, filter.CardID); err != nil {
			return nil, storeErr(err, msgCardNotFound, "", "load card")
		}
	}
	if filter.UserID != "" {
		if _, err := s.Store.GetUser(ctx, filter.UserID); err != nil {
			return nil, storeErr(err, msgUserNotFound, "", "load user")
		}
	}
	items, err := s.Store.ListAccessLogs(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list access logs")
	}
	return items, nil
}

func (s AccessService) Stats(ctx context.Context) (AccessStats, error) {
	summary, err := s.Store.SummarizeAccessLogs(ctx)
	if err != nil {
		return AccessStats{}, WrapError(err, "access log stats")
	}
	stats := AccessStats{
		Total:           summary.Total,
		Entries:         summary.Entries,
		Exits:           summary.Exits,
		Denied:          summary.Denied,
		UniqueLocations: summary.UniqueLocations,
		UniqueCards:     summary.UniqueCards,
	}
	if summary.Total > 0 {
		granted := float64(summary.Entries+summary.Exits) / float64(summary.Total) * 100
		stats.SuccessRate = math.Round(granted*100) / 100
	}
	return stats, nil
}
