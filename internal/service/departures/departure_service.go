// Package departures serves the read side of scheduled departures and their seat pools.
package departures

import (
	"context"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type DepartureUseCase interface {
	List(ctx context.Context) ([]domain.Schedule, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error)
}

type DepartureCache interface {
	GetDepartures(ctx context.Context) ([]domain.Schedule, error)
	SetDepartures(ctx context.Context, schedules []domain.Schedule) error
}

type DepartureService struct {
	repo  repository.CapacityRepository
	cache DepartureCache
	log   logrus.FieldLogger
}

// NewDepartureService builds the service; cache may be nil.
func NewDepartureService(repo repository.CapacityRepository, cache DepartureCache, log logrus.FieldLogger) *DepartureService {
	return &DepartureService{repo: repo, cache: cache, log: log}
}

func (s *DepartureService) List(ctx context.Context) ([]domain.Schedule, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDepartures(ctx)
		if err != nil {
			s.log.WithError(err).Warn("read departures cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	schedules, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetDepartures(ctx, schedules); err != nil {
			s.log.WithError(err).Warn("write departures cache")
		}
	}
	return schedules, nil
}

// GetByID always reads the store so seat counts are current.
func (s *DepartureService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return s.repo.GetSchedule(ctx, id)
}

var _ DepartureUseCase = (*DepartureService)(nil)
