package usecase

import (
	"context"
	"fmt"
	"time"

	"club-booking/internal/data/entity"
	"club-booking/internal/data/repository"
	"club-booking/pkg/utils"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// ConfigService serves the slow-moving club configuration (clubs, opening
// bitmaps, courts, instructors) behind a TTL cache so the hot booking path
// does not hammer the same rows on every join.
type ConfigService interface {
	Club(ctx context.Context, clubID uuid.UUID) (*entity.Club, error)
	// LevelTolerance resolves the club's +/- level band, falling back to the
	// engine default when the club has no override.
	LevelTolerance(ctx context.Context, clubID uuid.UUID) (float64, error)
	// OpeningBitmap resolves the 48-bit half-hour bitmap for the weekday,
	// falling back to the configured default window.
	OpeningBitmap(ctx context.Context, clubID uuid.UUID, weekday int) (int64, error)
	ActiveInstructors(ctx context.Context, clubID uuid.UUID) ([]*entity.Instructor, error)
	Invalidate(clubID uuid.UUID)
}

type configService struct {
	repo   *repository.Repository
	engine utils.EngineConfig
	cache  *gocache.Cache
	log    *zap.Logger
}

func NewConfigService(repo *repository.Repository, engine utils.EngineConfig, log *zap.Logger) ConfigService {
	ttl := time.Duration(engine.ConfigCacheTTLMins) * time.Minute
	return &configService{
		repo:   repo,
		engine: engine,
		cache:  gocache.New(ttl, 2*ttl),
		log:    log.With(zap.String("service", "config")),
	}
}

func (s *configService) Club(ctx context.Context, clubID uuid.UUID) (*entity.Club, error) {
	key := "club:" + clubID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*entity.Club), nil
	}

	club, err := s.repo.Club.FindByID(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if club == nil || !club.Active {
		return nil, ErrClubNotFound
	}

	s.cache.SetDefault(key, club)
	return club, nil
}

func (s *configService) LevelTolerance(ctx context.Context, clubID uuid.UUID) (float64, error) {
	club, err := s.Club(ctx, clubID)
	if err != nil {
		return 0, err
	}
	if club.LevelTolerance != nil {
		return *club.LevelTolerance, nil
	}
	return s.engine.LevelTolerance, nil
}

func (s *configService) OpeningBitmap(ctx context.Context, clubID uuid.UUID, weekday int) (int64, error) {
	key := fmt.Sprintf("hours:%s:%d", clubID.String(), weekday)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(int64), nil
	}

	hours, err := s.repo.Club.FindOpeningHours(ctx, clubID, weekday)
	if err != nil {
		return 0, err
	}

	bitmap := entity.WindowBitmap(s.engine.DefaultOpenHour, s.engine.DefaultCloseHour)
	if hours != nil {
		bitmap = hours.Bitmap
	}

	s.cache.SetDefault(key, bitmap)
	return bitmap, nil
}

func (s *configService) ActiveInstructors(ctx context.Context, clubID uuid.UUID) ([]*entity.Instructor, error) {
	key := "instructors:" + clubID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*entity.Instructor), nil
	}

	instructors, err := s.repo.Instructor.FindActiveByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, instructors)
	return instructors, nil
}

// Invalidate drops every cached entry of the club. Called by admin-facing
// layers after configuration changes.
func (s *configService) Invalidate(clubID uuid.UUID) {
	s.cache.Delete("club:" + clubID.String())
	s.cache.Delete("instructors:" + clubID.String())
	for weekday := 0; weekday < 7; weekday++ {
		s.cache.Delete(fmt.Sprintf("hours:%s:%d", clubID.String(), weekday))
	}
}
