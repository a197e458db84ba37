package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"campus-access-backend/internal/clock"
	"campus-access-backend/internal/models"
	"campus-access-backend/internal/store"
)

const msgCardNumberTaken = "Access card with this number already exists"

type NewCard struct {
	UserID     string
	CardNumber string
	Status     models.CardStatus
}

type CardPatch struct {
	CardNumber *string
	Status     *models.CardStatus
}

type CardService struct {
	Store store.Store
	Clock clock.Clock
}

func (s CardService) Create(ctx context.Context, in NewCard) (models.AccessCard, error) {
	if _, err := s.Store.GetUser(ctx, in.UserID); err != nil {
		return models.AccessCard{}, storeErr(err, msgUserNotFound, "", "load user")
	}
	number := strings.TrimSpace(in.CardNumber)
	if number == "" {
		return models.AccessCard{}, ErrInvalidInput("Card number is required")
	}
	status := in.Status
	if status == "" {
		status = models.CardActive
	}
	if _, err := models.ParseCardStatus(string(status)); err != nil {
		return models.AccessCard{}, ErrInvalidInput(err.Error())
	}
	if err := s.checkNumber(ctx, number, ""); err != nil {
		return models.AccessCard{}, err
	}
	now := clock.Real().Now()
	if s.Clock != nil {
		now = s.Clock.Now()
	}
	card := models.AccessCard{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		CardNumber: number,
		Status:     status,
		IssuedAt:   now,
	}
	if err := s.Store.CreateCard(ctx, card); err != nil {
		return models.AccessCard{}, storeErr(err, msgUserNotFound, msgCardNumberTaken, "create card")
	}
	return card, nil
}

func (s CardService) Get(ctx context.Context, id string) (models.AccessCard, error) {
	card, err := s.Store.GetCard(ctx, id)
	return card, storeErr(err, msgCardNotFound, "", "load card")
}

// List with a user filter reports an unknown user as NotFound.
func (s CardService) List(ctx context.Context, filter store.CardFilter) ([]models.AccessCard, error) {
	if filter.UserID != "" {
		if _, err := s.Store.GetUser(ctx, filter.UserID); err != nil {
			return nil, storeErr(err, msgUserNotFound, "", "load user")
		}
	}
	cards, err := s.Store.ListCards(ctx, filter)
	if err != nil {
		return nil, WrapError(err, "list cards")
	}
	return cards, nil
}

func (s CardService) Update(ctx context.Context, id string, patch CardPatch) (models.AccessCard, error) {
	card, err := s.Store.GetCard(ctx, id)
	if err != nil {
		return models.AccessCard{}, storeErr(err, msgCardNotFound, "", "load card")
	}
	if patch.CardNumber != nil {
		number := strings.TrimSpace(*patch.CardNumber)
		if number == "" {
			return models.AccessCard{}, ErrInvalidInput("Card number is required")
		}
		if err := s.checkNumber(ctx, number, card.ID); err != nil {
			return models.AccessCard{}, err
		}
		card.CardNumber = number
	}
	if patch.Status != nil {
		status, err := models.ParseCardStatus(string(*patch.Status))
		if err != nil {
			return models.AccessCard{}, ErrInvalidInput(err.Error())
		}
		card.Status = status
	}
	if err := s.Store.UpdateCard(ctx, card); err != nil {
		return models.AccessCard{}, storeErr(err, msgCardNotFound, msgCardNumberTaken, "update card")
	}
	return card, nil
}

// SetStatus moves a card to any status; there are no forbidden transitions.
func (s CardService) SetStatus(ctx context.Context, id, raw string) (models.AccessCard, error) {
	status, err := models.ParseCardStatus(raw)
	if err != nil {
		return models.AccessCard{}, ErrInvalidInput("Invalid status. Must be one of: active, lost, disabled")
	}
	return s.Update(ctx, id, CardPatch{Status: &status})
}

func (s CardService) Delete(ctx context.Context, id string) error {
	return storeErr(s.Store.DeleteCard(ctx, id), msgCardNotFound, "", "delete card")
}

func (s CardService) checkNumber(ctx context.Context, number, excludeID string) error {
	existing, err := s.Store.GetCardByNumber(ctx, number)
	switch {
	case err == nil && existing.ID != excludeID:
		return ErrConflict(msgCardNumberTaken)
	case err != nil && !isNotFound(err):
		return WrapError(err, "check card number")
	}
	return nil
}
