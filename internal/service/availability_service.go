package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
)

type availabilityRuleRepository interface {
	ListByTherapist(ctx context.Context, therapistID string) ([]models.AvailabilityRule, error)
	ReplaceForTherapist(ctx context.Context, therapistID string, rules []models.AvailabilityRule) error
}

type therapistRepository interface {
	FindByID(ctx context.Context, id string) (*models.Therapist, error)
	UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error
}

type ruleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// AvailabilityRuleInput is a single weekly window in a replace request.
type AvailabilityRuleInput struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	IsBreak   bool   `json:"is_break"`
}

// ReplaceAvailabilityRequest replaces every weekly rule of a therapist.
type ReplaceAvailabilityRequest struct {
	Rules []AvailabilityRuleInput `json:"rules" validate:"dive"`
}

// AvailabilityConfig tunes rule caching.
type AvailabilityConfig struct {
	CacheTTL time.Duration
}

// AvailabilityService resolves and maintains weekly availability rules.
type AvailabilityService struct {
	rules      availabilityRuleRepository
	therapists therapistRepository
	cache      ruleCache
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        AvailabilityConfig
}

// NewAvailabilityService builds the service. cache may be nil.
func NewAvailabilityService(rules availabilityRuleRepository, therapists therapistRepository, cache ruleCache, validate *validator.Validate, logger *zap.Logger, cfg AvailabilityConfig) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidation(validate, "clock", validateClock, logger)
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &AvailabilityService{
		rules:      rules,
		therapists: therapists,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// registerValidation adds a custom tag, logging when the validator refuses it.
func registerValidation(validate *validator.Validate, tag string, fn validator.Func, logger *zap.Logger) bool {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		logger.Error("validation tag not registered", zap.String("tag", tag), zap.Error(err))
		return false
	}
	return true
}

func validateClock(fl validator.FieldLevel) bool {
	_, err := ParseClock(fl.Field().String())
	return err == nil
}

func ruleCacheKey(therapistID string) string {
	return fmt.Sprintf("availability:rules:%s", therapistID)
}

// Resolve returns the therapist's weekly rules. When none are stored, or the store cannot be
// read, the default template is returned instead and isDefault is true. It never fails.
func (s *AvailabilityService) Resolve(ctx context.Context, therapistID string) (rules []models.AvailabilityRule, isDefault bool) {
	key := ruleCacheKey(therapistID)
	if s.cache != nil {
		var cached []models.AvailabilityRule
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit && len(cached) > 0 {
			return cached, false
		}
	}

	stored, err := s.rules.ListByTherapist(ctx, therapistID)
	if err != nil {
		s.logger.Warn("availability lookup failed, using default template",
			zap.String("therapist_id", therapistID), zap.Error(err))
		return DefaultAvailabilityTemplate(therapistID), true
	}
	if len(stored) == 0 {
		return DefaultAvailabilityTemplate(therapistID), true
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, stored, s.cfg.CacheTTL)
	}
	return stored, false
}

// Replace validates and stores a therapist's full weekly schedule.
func (s *AvailabilityService) Replace(ctx context.Context, therapistID string, req ReplaceAvailabilityRequest) ([]models.AvailabilityRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability payload")
	}

	rules := make([]models.AvailabilityRule, 0, len(req.Rules))
	for i, in := range req.Rules {
		start, _ := ParseClock(in.StartTime)
		end, _ := ParseClock(in.EndTime)
		if start >= end {
			return nil, validationError(nil, fmt.Sprintf("rule %d: start_time must be before end_time", i))
		}
		rules = append(rules, models.AvailabilityRule{
			TherapistID: therapistID,
			DayOfWeek:   in.DayOfWeek,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			IsBreak:     in.IsBreak,
		})
	}

	return s.store(ctx, therapistID, rules)
}

// SaveDefaults persists the default template as the therapist's schedule.
func (s *AvailabilityService) SaveDefaults(ctx context.Context, therapistID string) ([]models.AvailabilityRule, error) {
	rules := DefaultAvailabilityTemplate(therapistID)
	for i := range rules {
		rules[i].ID = ""
	}
	return s.store(ctx, therapistID, rules)
}

func (s *AvailabilityService) store(ctx context.Context, therapistID string, rules []models.AvailabilityRule) ([]models.AvailabilityRule, error) {
	if _, err := s.therapists.FindByID(ctx, therapistID); err != nil {
		return nil, lookupError(err, "therapist not found", "failed to load therapist")
	}
	if err := s.rules.ReplaceForTherapist(ctx, therapistID, rules); err != nil {
		return nil, storageUnavailable(err, "failed to store availability rules")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ruleCacheKey(therapistID)); err != nil {
			s.logger.Warn("availability cache invalidation failed", zap.String("therapist_id", therapistID), zap.Error(err))
		}
	}
	return rules, nil
}
