package usecase

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// In-memory repository fakes. The aggregate is assembled without a database
// handle so WithinTx runs callbacks directly.

type memStore struct {
	users       map[uuid.UUID]*entity.User
	clubs       map[uuid.UUID]*entity.Club
	hours       map[string]*entity.OpeningHours
	courts      map[uuid.UUID]*entity.Court
	instructors map[uuid.UUID]*entity.Instructor
	absences    []*entity.InstructorAbsence
	slots       map[uuid.UUID]*entity.Slot
	bookings    map[uuid.UUID]*entity.Booking
	accounts    map[uuid.UUID]*entity.Account
	txs         []*entity.Transaction

	// failAccountUpdate injects update failures per user, for sweep
	// partial-failure tests.
	failAccountUpdate map[uuid.UUID]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:             make(map[uuid.UUID]*entity.User),
		clubs:             make(map[uuid.UUID]*entity.Club),
		hours:             make(map[string]*entity.OpeningHours),
		courts:            make(map[uuid.UUID]*entity.Court),
		instructors:       make(map[uuid.UUID]*entity.Instructor),
		slots:             make(map[uuid.UUID]*entity.Slot),
		bookings:          make(map[uuid.UUID]*entity.Booking),
		accounts:          make(map[uuid.UUID]*entity.Account),
		failAccountUpdate: make(map[uuid.UUID]bool),
	}
}

func (s *memStore) repository(log *zap.Logger) *repository.Repository {
	return &repository.Repository{
		User:        &memUserRepo{s},
		Club:        &memClubRepo{s},
		Court:       &memCourtRepo{s},
		Instructor:  &memInstructorRepo{s},
		Slot:        &memSlotRepo{s},
		Booking:     &memBookingRepo{s},
		Account:     &memAccountRepo{s},
		Transaction: &memTransactionRepo{s},
	}
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.s.users[id], nil
}

type memClubRepo struct{ s *memStore }

func (r *memClubRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Club, error) {
	return r.s.clubs[id], nil
}

func (r *memClubRepo) LockByID(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.clubs[id]; !ok {
		return fmt.Errorf("club %s not found", id.String())
	}
	return nil
}

func (r *memClubRepo) FindOpeningHours(ctx context.Context, clubID uuid.UUID, weekday int) (*entity.OpeningHours, error) {
	return r.s.hours[fmt.Sprintf("%s:%d", clubID, weekday)], nil
}

type memCourtRepo struct{ s *memStore }

func (r *memCourtRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Court, error) {
	return r.s.courts[id], nil
}

func (r *memCourtRepo) FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Court, error) {
	var courts []*entity.Court
	for _, c := range r.s.courts {
		if c.ClubID == clubID && c.Active {
			courts = append(courts, c)
		}
	}
	sort.Slice(courts, func(i, j int) bool { return courts[i].Number < courts[j].Number })
	return courts, nil
}

func (r *memCourtRepo) FindFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (*entity.Court, error) {
	courts, _ := r.FindActiveByClub(ctx, clubID)
	for _, c := range courts {
		if !r.s.courtTaken(c.ID, start, end) {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCourtRepo) CountFreeByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time) (int, error) {
	courts, _ := r.FindActiveByClub(ctx, clubID)
	free := 0
	for _, c := range courts {
		if !r.s.courtTaken(c.ID, start, end) {
			free++
		}
	}
	return free, nil
}

func (s *memStore) courtTaken(courtID uuid.UUID, start, end time.Time) bool {
	for _, sl := range s.slots {
		if sl.CourtID != nil && *sl.CourtID == courtID && sl.StartsAt.Before(end) && sl.EndsAt.After(start) {
			return true
		}
	}
	return false
}

type memInstructorRepo struct{ s *memStore }

func (r *memInstructorRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Instructor, error) {
	return r.s.instructors[id], nil
}

func (r *memInstructorRepo) FindActiveByClub(ctx context.Context, clubID uuid.UUID) ([]*entity.Instructor, error) {
	var instructors []*entity.Instructor
	for _, i := range r.s.instructors {
		if i.ClubID == clubID && i.Active {
			instructors = append(instructors, i)
		}
	}
	sort.Slice(instructors, func(i, j int) bool { return instructors[i].Name < instructors[j].Name })
	return instructors, nil
}

func (r *memInstructorRepo) FindAbsences(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]*entity.InstructorAbsence, error) {
	var absences []*entity.InstructorAbsence
	for _, a := range r.s.absences {
		if a.InstructorID == instructorID && a.StartsAt.Before(to) && a.EndsAt.After(from) {
			absences = append(absences, a)
		}
	}
	return absences, nil
}

type memSlotRepo struct{ s *memStore }

func (r *memSlotRepo) Create(ctx context.Context, slot *entity.Slot) error {
	r.s.slots[slot.ID] = slot
	return nil
}

func (r *memSlotRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	return r.s.slots[id], nil
}

func (r *memSlotRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	return r.s.slots[id], nil
}

func (r *memSlotRepo) Update(ctx context.Context, slot *entity.Slot) error {
	if _, ok := r.s.slots[slot.ID]; !ok {
		return fmt.Errorf("slot %s not found", slot.ID.String())
	}
	r.s.slots[slot.ID] = slot
	return nil
}

func (r *memSlotRepo) FindByClubAndDay(ctx context.Context, clubID uuid.UUID, dayStart, dayEnd time.Time) ([]*entity.Slot, error) {
	var slots []*entity.Slot
	for _, sl := range r.s.slots {
		if sl.ClubID == clubID && !sl.StartsAt.Before(dayStart) && sl.StartsAt.Before(dayEnd) {
			slots = append(slots, sl)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartsAt.Before(slots[j].StartsAt) })
	return slots, nil
}

func (r *memSlotRepo) FindCourtlessByWindow(ctx context.Context, clubID uuid.UUID, start, end time.Time, exclude uuid.UUID) ([]*entity.Slot, error) {
	var slots []*entity.Slot
	for _, sl := range r.s.slots {
		if sl.ClubID == clubID && sl.CourtID == nil && sl.ID != exclude &&
			sl.StartsAt.Equal(start) && sl.EndsAt.Equal(end) {
			slots = append(slots, sl)
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].CreatedAt.Before(slots[j].CreatedAt) })
	return slots, nil
}

func (r *memSlotRepo) FindConfirmedByInstructorOverlapping(ctx context.Context, instructorID uuid.UUID, start, end time.Time) ([]*entity.Slot, error) {
	var slots []*entity.Slot
	for _, sl := range r.s.slots {
		if sl.InstructorID != nil && *sl.InstructorID == instructorID && sl.CourtID != nil &&
			sl.StartsAt.Before(end) && sl.EndsAt.After(start) {
			slots = append(slots, sl)
		}
	}
	return slots, nil
}

func (r *memSlotRepo) OpenProposalExists(ctx context.Context, clubID uuid.UUID, kind entity.SlotKind, instructorID *uuid.UUID, start time.Time) (bool, error) {
	for _, sl := range r.s.slots {
		if sl.ClubID != clubID || sl.Kind != kind || !sl.StartsAt.Equal(start) || sl.CourtID != nil || sl.Classified {
			continue
		}
		if (sl.InstructorID == nil) != (instructorID == nil) {
			continue
		}
		if instructorID != nil && *sl.InstructorID != *instructorID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r *memSlotRepo) DeleteEmptyOpenProposals(ctx context.Context, instructorID uuid.UUID, from, to time.Time) (int64, error) {
	var deleted int64
	for id, sl := range r.s.slots {
		if sl.InstructorID == nil || *sl.InstructorID != instructorID || sl.CourtID != nil || sl.Classified {
			continue
		}
		if sl.StartsAt.Before(from) || !sl.StartsAt.Before(to) {
			continue
		}
		if r.s.slotHasBookings(id) {
			continue
		}
		delete(r.s.slots, id)
		deleted++
	}
	return deleted, nil
}

func (r *memSlotRepo) DeleteOpenDuplicates(ctx context.Context, slot *entity.Slot) (int64, error) {
	var deleted int64
	for id, sl := range r.s.slots {
		if id == slot.ID || sl.ClubID != slot.ClubID || sl.Kind != slot.Kind ||
			sl.CourtID != nil || sl.Classified || !sl.StartsAt.Equal(slot.StartsAt) {
			continue
		}
		if (sl.InstructorID == nil) != (slot.InstructorID == nil) {
			continue
		}
		if slot.InstructorID != nil && *sl.InstructorID != *slot.InstructorID {
			continue
		}
		if r.s.slotHasBookings(id) {
			continue
		}
		delete(r.s.slots, id)
		deleted++
	}
	return deleted, nil
}

func (s *memStore) slotHasBookings(slotID uuid.UUID) bool {
	for _, b := range s.bookings {
		if b.SlotID == slotID {
			return true
		}
	}
	return false
}

type memBookingRepo struct{ s *memStore }

func (r *memBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.s.bookings[booking.ID] = booking
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.s.bookings[id], nil
}

func (r *memBookingRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	return r.s.bookings[id], nil
}

func (r *memBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	if _, ok := r.s.bookings[booking.ID]; !ok {
		return fmt.Errorf("booking %s not found", booking.ID.String())
	}
	r.s.bookings[booking.ID] = booking
	return nil
}

func (r *memBookingRepo) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for _, b := range r.s.bookings {
		if b.SlotID == slotID && b.Active() {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings, nil
}

func (r *memBookingRepo) FindActiveByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time, excludeSlot uuid.UUID) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for _, b := range r.s.bookings {
		if b.UserID != userID || !b.Active() || b.SlotID == excludeSlot {
			continue
		}
		slot := r.s.slots[b.SlotID]
		if slot == nil || slot.StartsAt.Before(from) || !slot.StartsAt.Before(to) {
			continue
		}
		bookings = append(bookings, b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings, nil
}

func (r *memBookingRepo) FindBySlot(ctx context.Context, slotID uuid.UUID) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for _, b := range r.s.bookings {
		if b.SlotID == slotID {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.Before(bookings[j].CreatedAt) })
	return bookings, nil
}

type memAccountRepo struct{ s *memStore }

func (r *memAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	r.s.accounts[account.UserID] = account
	return nil
}

func (r *memAccountRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	return r.s.accounts[userID], nil
}

func (r *memAccountRepo) FindByUserForUpdate(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	return r.s.accounts[userID], nil
}

func (r *memAccountRepo) Update(ctx context.Context, account *entity.Account) error {
	if r.s.failAccountUpdate[account.UserID] {
		return fmt.Errorf("account update failure injected for user %s", account.UserID.String())
	}
	r.s.accounts[account.UserID] = account
	return nil
}

type memTransactionRepo struct{ s *memStore }

func (r *memTransactionRepo) Append(ctx context.Context, tx *entity.Transaction) error {
	r.s.txs = append(r.s.txs, tx)
	return nil
}

func (r *memTransactionRepo) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Transaction, error) {
	var txs []*entity.Transaction
	for _, tx := range r.s.txs {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	if offset >= len(txs) {
		return nil, nil
	}
	txs = txs[offset:]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (r *memTransactionRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, tx := range r.s.txs {
		if tx.UserID == userID {
			count++
		}
	}
	return count, nil
}

// --- test environment ---

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) // a Monday

func testEngineConfig() utils.EngineConfig {
	return utils.EngineConfig{
		DefaultCapacity:    4,
		LevelTolerance:     0.5,
		SlotMinutes:        60,
		GranularityMinutes: 30,
		LookbackMinutes:    60,
		DefaultOpenHour:    9,
		DefaultCloseHour:   22,
		ConfigCacheTTLMins: 5,
	}
}

type testEnv struct {
	store *memStore
	repo  *repository.Repository
	svc   *Service
	clock fixedClock
}

func newTestEnv() *testEnv {
	store := newMemStore()
	log := zap.NewNop()
	repo := store.repository(log)
	clock := fixedClock{now: testNow}
	config := &utils.Config{Engine: testEngineConfig()}

	return &testEnv{
		store: store,
		repo:  repo,
		svc:   NewService(repo, config, clock, log),
		clock: clock,
	}
}

func (e *testEnv) addClub(courts int) *entity.Club {
	club := &entity.Club{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Name:          "Test Club",
		PeakRate:      decimal.NewFromInt(12),
		OffPeakRate:   decimal.NewFromInt(8),
		PeakStartHour: 17,
		PeakEndHour:   22,
		Active:        true,
	}
	e.store.clubs[club.ID] = club

	for n := 1; n <= courts; n++ {
		court := &entity.Court{
			Base:   entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
			ClubID: club.ID,
			Number: n,
			Active: true,
		}
		e.store.courts[court.ID] = court
	}

	return club
}

func (e *testEnv) addUser(name string, level float64, gender entity.Gender, credits int64, points int64) *entity.User {
	user := &entity.User{
		Base:   entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		Name:   name,
		Email:  name + "@test.local",
		Level:  level,
		Gender: gender,
		Active: true,
	}
	e.store.users[user.ID] = user
	e.store.accounts[user.ID] = &entity.Account{
		UserID:    user.ID,
		Credits:   decimal.NewFromInt(credits),
		Points:    points,
		UpdatedAt: testNow,
	}
	return user
}

func (e *testEnv) addInstructor(club *entity.Club, name string, rate int64) *entity.Instructor {
	instructor := &entity.Instructor{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		ClubID:     club.ID,
		Name:       name,
		HourlyRate: decimal.NewFromInt(rate),
		Active:     true,
	}
	e.store.instructors[instructor.ID] = instructor
	return instructor
}

func (e *testEnv) addOpenSlot(club *entity.Club, kind entity.SlotKind, start time.Time, price int64, capacity int) *entity.Slot {
	slot := &entity.Slot{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		ClubID:   club.ID,
		Kind:     kind,
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
		Capacity: capacity,
		Price:    decimal.NewFromInt(price),
		Gender:   entity.GenderCategoryOpen,
	}
	e.store.slots[slot.ID] = slot
	return slot
}

func (e *testEnv) account(userID uuid.UUID) *entity.Account {
	return e.store.accounts[userID]
}

func (e *testEnv) join(t *testing.T, slot *entity.Slot, user *entity.User, method entity.PaymentMethod) *response.JoinActivityResponse {
	t.Helper()
	res, err := e.svc.Booking.JoinActivity(context.Background(), joinReq(slot, user, method))
	require.NoError(t, err, "join failed for %s", user.Name)
	return res
}

func joinReq(slot *entity.Slot, user *entity.User, method entity.PaymentMethod) *request.JoinActivityRequest {
	return &request.JoinActivityRequest{
		SlotID: slot.ID.String(),
		UserID: user.ID.String(),
		Method: string(method),
	}
}

// openProposalsAt counts open unclassified courtless slots for the window.
func (e *testEnv) openProposalsAt(club *entity.Club, kind entity.SlotKind, start time.Time) int {
	count := 0
	for _, sl := range e.store.slots {
		if sl.ClubID == club.ID && sl.Kind == kind && sl.StartsAt.Equal(start) &&
			sl.CourtID == nil && !sl.Classified {
			count++
		}
	}
	return count
}

// bookingOf finds the user's booking on the slot, in any state.
func (e *testEnv) bookingOf(slot *entity.Slot, user *entity.User) *entity.Booking {
	for _, b := range e.store.bookings {
		if b.SlotID == slot.ID && b.UserID == user.ID {
			return b
		}
	}
	return nil
}
