package app

import (
	"context"

	"petitdej/internal/domain"
)

// ReservationService encapsulates the booking use cases. All input
// validation happens here, before anything touches the store; conflict
// and ownership failures surface as the domain sentinels unchanged.
type ReservationService struct {
	repo domain.ReservationRepository
}

// NewReservationService creates a ReservationService backed by the given
// repository.
func NewReservationService(repo domain.ReservationRepository) *ReservationService {
	return &ReservationService{repo: repo}
}

// ListMonth returns all reservations for the given YYYY-MM month, ordered
// by date.
func (s *ReservationService) ListMonth(ctx context.Context, month string) ([]domain.Reservation, error) {
	start, end, err := domain.MonthRange(month)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMonth(ctx, start, end)
}

// Reserve books the slot for date on behalf of username. Returns
// domain.ErrDateTaken if the date already has a reservation.
func (s *ReservationService) Reserve(ctx context.Context, username, date, description string) (*domain.Reservation, error) {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, date, username, description)
}

// Get returns the reservation for date, or nil if the slot is free.
func (s *ReservationService) Get(ctx context.Context, date string) (*domain.Reservation, error) {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, date)
}

// Cancel removes the reservation for date if username owns it. Returns
// domain.ErrReservationNotFound when the slot is free and
// domain.ErrNotOwner when it belongs to someone else.
func (s *ReservationService) Cancel(ctx context.Context, username, date string) error {
	date, err := domain.ValidateDate(date)
	if err != nil {
		return err
	}
	return s.repo.DeleteIfOwner(ctx, date, username)
}
