package usecase

import (
	"context"
	"fmt"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/internal/dto/request"
	"club-booking/internal/dto/response"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalService materializes open, unclassified slots ("proposals") from
// opening hours, instructor availability and court occupancy, and keeps one
// open proposal alive per instructor/window as slots classify and confirm.
type ProposalService interface {
	Generate(ctx context.Context, req *request.GenerateProposalsRequest) (*response.GenerateReport, error)

	// EnsureOpenProposal creates a fresh open sibling for the slot's
	// club/kind/instructor/window when no open proposal exists there. Runs on
	// the caller's transaction.
	EnsureOpenProposal(ctx context.Context, r *repository.Repository, slot *entity.Slot) error

	// RegeneratePrecursors restores the still-future precursor proposals that
	// confirmation removed in the lookback window before the slot's start.
	// Runs on the caller's transaction. Returns the number recreated.
	RegeneratePrecursors(ctx context.Context, r *repository.Repository, slot *entity.Slot) (int, error)
}

type proposalService struct {
	repo   *repository.Repository
	config ConfigService
	engine utils.EngineConfig
	clock  utils.Clock
	log    *zap.Logger
}

func NewProposalService(repo *repository.Repository, config ConfigService, engine utils.EngineConfig, clock utils.Clock, log *zap.Logger) ProposalService {
	return &proposalService{
		repo:   repo,
		config: config,
		engine: engine,
		clock:  clock,
		log:    log.With(zap.String("service", "proposal")),
	}
}

func (s *proposalService) Generate(ctx context.Context, req *request.GenerateProposalsRequest) (*response.GenerateReport, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Generate proposals validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, utils.FormatValidationErrors(errs))
	}

	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		return nil, fmt.Errorf("%w: club ID %s", ErrInvalidInput, req.ClubID)
	}

	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %s", ErrInvalidInput, req.From)
	}
	to := from
	if req.To != "" {
		to, err = time.Parse("2006-01-02", req.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to date %s", ErrInvalidInput, req.To)
		}
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: date range end %s before start %s", ErrInvalidInput, req.To, req.From)
	}

	club, err := s.config.Club(ctx, clubID)
	if err != nil {
		return nil, err
	}

	report := &response.GenerateReport{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := s.generateDay(ctx, club, day, report); err != nil {
			return nil, err
		}
	}

	s.log.Info("Proposal generation finished",
		zap.String("club_id", clubID.String()),
		zap.String("from", req.From),
		zap.String("to", to.Format("2006-01-02")),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
	)

	return report, nil
}

func (s *proposalService) generateDay(ctx context.Context, club *entity.Club, day time.Time, report *response.GenerateReport) error {
	bitmap, err := s.config.OpeningBitmap(ctx, club.ID, int(day.Weekday()))
	if err != nil {
		return err
	}

	instructors, err := s.config.ActiveInstructors(ctx, club.ID)
	if err != nil {
		return err
	}

	slotHalfHours := s.engine.SlotMinutes / 30
	stepHalfHours := s.engine.GranularityMinutes / 30

	for _, instructor := range instructors {
		for halfHour := 0; halfHour+slotHalfHours <= 48; halfHour += stepHalfHours {
			if !windowOpen(bitmap, halfHour, slotHalfHours) {
				continue
			}
			start := day.Add(time.Duration(halfHour) * 30 * time.Minute)

			created, err := s.maybeCreateProposal(ctx, s.repo, club, instructor, start)
			if err != nil {
				return err
			}
			if created {
				report.Created++
			} else {
				report.Skipped++
			}
		}
	}

	return nil
}

// windowOpen reports whether every half-hour bit covered by a slot starting
// at the given index is inside the opening window.
func windowOpen(bitmap int64, halfHour, slotHalfHours int) bool {
	for i := halfHour; i < halfHour+slotHalfHours; i++ {
		if i >= 48 || bitmap&(1<<uint(i)) == 0 {
			return false
		}
	}
	return true
}

// maybeCreateProposal applies the generator's cell checks for one
// instructor/start and inserts an open class slot when they all pass.
func (s *proposalService) maybeCreateProposal(ctx context.Context, r *repository.Repository, club *entity.Club, instructor *entity.Instructor, start time.Time) (bool, error) {
	end := start.Add(time.Duration(s.engine.SlotMinutes) * time.Minute)

	absences, err := r.Instructor.FindAbsences(ctx, instructor.ID, start, end)
	if err != nil {
		return false, err
	}
	for _, absence := range absences {
		if absence.Covers(start, end) {
			return false, nil
		}
	}

	freeCourts, err := r.Court.CountFreeByWindow(ctx, club.ID, start, end)
	if err != nil {
		return false, err
	}
	if freeCourts == 0 {
		return false, nil
	}

	occupied, err := r.Slot.FindConfirmedByInstructorOverlapping(ctx, instructor.ID, start, end)
	if err != nil {
		return false, err
	}
	if len(occupied) > 0 {
		return false, nil
	}

	exists, err := r.Slot.OpenProposalExists(ctx, club.ID, entity.SlotKindClass, &instructor.ID, start)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	now := s.clock.Now()
	instructorID := instructor.ID
	slot := &entity.Slot{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ClubID:       club.ID,
		Kind:         entity.SlotKindClass,
		InstructorID: &instructorID,
		StartsAt:     start,
		EndsAt:       end,
		Capacity:     s.engine.DefaultCapacity,
		Price:        instructor.HourlyRate.Add(club.CourtRate(start.Hour())),
		Gender:       entity.GenderCategoryOpen,
	}
	if err := r.Slot.Create(ctx, slot); err != nil {
		return false, err
	}

	return true, nil
}

func (s *proposalService) EnsureOpenProposal(ctx context.Context, r *repository.Repository, slot *entity.Slot) error {
	exists, err := r.Slot.OpenProposalExists(ctx, slot.ClubID, slot.Kind, slot.InstructorID, slot.StartsAt)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	now := s.clock.Now()
	sibling := &entity.Slot{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		ClubID:       slot.ClubID,
		Kind:         slot.Kind,
		InstructorID: slot.InstructorID,
		StartsAt:     slot.StartsAt,
		EndsAt:       slot.EndsAt,
		Capacity:     slot.Capacity,
		Price:        slot.Price,
		Gender:       entity.GenderCategoryOpen,
	}
	if err := r.Slot.Create(ctx, sibling); err != nil {
		return err
	}

	s.log.Info("Open sibling proposal spawned",
		zap.String("slot_id", slot.ID.String()),
		zap.String("sibling_id", sibling.ID.String()),
		zap.Time("start", slot.StartsAt),
	)

	return nil
}

func (s *proposalService) RegeneratePrecursors(ctx context.Context, r *repository.Repository, slot *entity.Slot) (int, error) {
	if slot.InstructorID == nil {
		return 0, nil
	}

	instructor, err := r.Instructor.FindByID(ctx, *slot.InstructorID)
	if err != nil {
		return 0, err
	}
	if instructor == nil || !instructor.Active {
		return 0, nil
	}

	club, err := r.Club.FindByID(ctx, slot.ClubID)
	if err != nil {
		return 0, err
	}
	if club == nil {
		return 0, ErrClubNotFound
	}

	now := s.clock.Now()
	lookback := time.Duration(s.engine.LookbackMinutes) * time.Minute
	step := time.Duration(s.engine.GranularityMinutes) * time.Minute

	created := 0
	for start := slot.StartsAt.Add(-lookback); start.Before(slot.StartsAt); start = start.Add(step) {
		if !start.After(now) {
			continue
		}
		ok, err := s.maybeCreateProposal(ctx, r, club, instructor, start)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}

	return created, nil
}
