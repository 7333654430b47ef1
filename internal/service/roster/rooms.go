package roster

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// Locker serializes automatic assignment per roster across service instances.
type Locker interface {
	AcquireRosterLock(ctx context.Context, rosterID uuid.UUID, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseRosterLock(ctx context.Context, rosterID uuid.UUID, token string) error
}

type AssignRoomInput struct {
	RosterID   uuid.UUID
	HotelID    uuid.UUID
	CustomerID uuid.UUID
	RoomNumber string
	RoomType   domain.RoomType
}

type AutoAssignInput struct {
	RosterID        uuid.UUID
	HotelID         uuid.UUID
	RoomType        domain.RoomType
	StartRoomNumber int
}

type RoomAllocator struct {
	tx          repository.Transactor
	rosters     repository.RosterRepository
	rooms       repository.RoomRepository
	locker      Locker
	lockTTL     time.Duration
	defaultType domain.RoomType
	log         logrus.FieldLogger
}

type AllocatorOption func(*RoomAllocator)

// WithLocker guards AutoAssign with a lock held for at most ttl.
func WithLocker(l Locker, ttl time.Duration) AllocatorOption {
	return func(r *RoomAllocator) {
		r.locker = l
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithDefaultRoomType sets the room type used when a request names none.
func WithDefaultRoomType(t domain.RoomType) AllocatorOption {
	return func(r *RoomAllocator) {
		if t.Valid() {
			r.defaultType = t
		}
	}
}

func NewRoomAllocator(tx repository.Transactor, rosters repository.RosterRepository, rooms repository.RoomRepository,
	log logrus.FieldLogger, opts ...AllocatorOption) *RoomAllocator {
	r := &RoomAllocator{
		tx:          tx,
		rosters:     rosters,
		rooms:       rooms,
		lockTTL:     30 * time.Second,
		defaultType: domain.RoomTypeQuad,
		log:         log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AssignRoom places one listed customer in a room. A customer holds at most one room per roster.
func (r *RoomAllocator) AssignRoom(ctx context.Context, in AssignRoomInput) (*domain.RoomAssignment, error) {
	if in.RoomNumber == "" {
		return nil, domain.InvalidInputf("room number is required")
	}
	if in.RoomType == "" {
		in.RoomType = r.defaultType
	}
	if !in.RoomType.Valid() {
		return nil, domain.InvalidInputf("unknown room type %q", in.RoomType)
	}

	var out *domain.RoomAssignment
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := r.entries(ctx, in.RosterID)
		if err != nil {
			return err
		}
		if !lo.ContainsBy(entries, func(e domain.RosterEntry) bool { return e.CustomerID == in.CustomerID }) {
			return domain.NotFoundf("customer %s on roster %s", in.CustomerID, in.RosterID)
		}

		a := &domain.RoomAssignment{
			RosterID:   in.RosterID,
			HotelID:    in.HotelID,
			CustomerID: in.CustomerID,
			RoomNumber: in.RoomNumber,
			RoomType:   in.RoomType,
		}
		if err := r.rooms.Assign(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"roster_id":   in.RosterID,
		"customer_id": in.CustomerID,
		"room":        in.RoomNumber,
	}).Info("room assigned")
	return out, nil
}

// AutoAssign rooms every listed customer who has none yet, in roster order. Rooms are
// filled up to the occupancy of the room type and numbered upward from StartRoomNumber,
// skipping numbers already used in the same hotel.
func (r *RoomAllocator) AutoAssign(ctx context.Context, in AutoAssignInput) ([]domain.RoomAssignment, error) {
	if in.StartRoomNumber <= 0 {
		return nil, domain.InvalidInputf("start room number must be positive")
	}
	if in.RoomType == "" {
		in.RoomType = r.defaultType
	}
	if !in.RoomType.Valid() {
		return nil, domain.InvalidInputf("unknown room type %q", in.RoomType)
	}

	if r.locker != nil {
		token, ok, err := r.locker.AcquireRosterLock(ctx, in.RosterID, r.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire roster lock: %w", err)
		}
		if !ok {
			return nil, domain.ErrRosterBusy
		}
		defer func() {
			if err := r.locker.ReleaseRosterLock(context.WithoutCancel(ctx), in.RosterID, token); err != nil {
				r.log.WithError(err).WithField("roster_id", in.RosterID).Warn("release roster lock")
			}
		}()
	}

	var created []domain.RoomAssignment
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := r.entries(ctx, in.RosterID)
		if err != nil {
			return err
		}
		existing, err := r.rooms.ListByRoster(ctx, in.RosterID)
		if err != nil {
			return err
		}

		plan := PlanRooms(entries, existing, in)
		for i := range plan {
			if err := r.rooms.Assign(ctx, &plan[i]); err != nil {
				return fmt.Errorf("assign %s: %w", plan[i].CustomerID, err)
			}
		}
		created = plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"roster_id": in.RosterID,
		"assigned":  len(created),
	}).Info("rooms auto assigned")
	return created, nil
}

// PlanRooms computes the assignments AutoAssign would create without storing them.
func PlanRooms(entries []domain.RosterEntry, existing []domain.RoomAssignment, in AutoAssignInput) []domain.RoomAssignment {
	assigned := lo.Associate(existing, func(a domain.RoomAssignment) (uuid.UUID, bool) { return a.CustomerID, true })
	used := lo.Associate(
		lo.Filter(existing, func(a domain.RoomAssignment, _ int) bool { return a.HotelID == in.HotelID }),
		func(a domain.RoomAssignment) (string, bool) { return a.RoomNumber, true },
	)
	pending := lo.Filter(entries, func(e domain.RosterEntry, _ int) bool { return !assigned[e.CustomerID] })

	nextFree := func(from int) int {
		for used[strconv.Itoa(from)] {
			from++
		}
		return from
	}

	occupancy := in.RoomType.Occupancy()
	plan := make([]domain.RoomAssignment, 0, len(pending))
	room := nextFree(in.StartRoomNumber)
	for i, e := range pending {
		if i > 0 && i%occupancy == 0 {
			room = nextFree(room + 1)
		}
		plan = append(plan, domain.RoomAssignment{
			RosterID:   in.RosterID,
			HotelID:    in.HotelID,
			CustomerID: e.CustomerID,
			RoomNumber: strconv.Itoa(room),
			RoomType:   in.RoomType,
		})
	}
	return plan
}

func (r *RoomAllocator) entries(ctx context.Context, rosterID uuid.UUID) ([]domain.RosterEntry, error) {
	if _, err := r.rosters.Get(ctx, rosterID); err != nil {
		return nil, err
	}
	return r.rosters.ListEntries(ctx, rosterID)
}
