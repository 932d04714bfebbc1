// Package dailylog provides the patient's daily check-in use cases
package dailylog

import (
	"context"
	"errors"
	"time"

	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

// defaultHistoryDays is how far back List looks without a range
const defaultHistoryDays = 30

// Service implements inbound.DailyLogService
type Service struct {
	logs      outbound.DailyLogRepository
	validator *security.Validator
	logger    *zap.Logger
	now       func() time.Time
}

var _ inbound.DailyLogService = (*Service)(nil)

// NewService creates a new daily log service
func NewService(logs outbound.DailyLogRepository, validator *security.Validator, logger *zap.Logger) *Service {
	return &Service{
		logs:      logs,
		validator: validator,
		logger:    logger.Named("dailylog-service"),
		now:       time.Now,
	}
}

// Submit stores the day's check-in. A second submission for the same day
// replaces the first.
func (s *Service) Submit(ctx context.Context, actor inbound.Actor, cmd inbound.SubmitDailyLogCommand) (*inbound.DailyLogDTO, error) {
	if err := s.validator.Validate(cmd); err != nil {
		return nil, err
	}

	entry, err := dailylog.New(actor.UserID, dailylog.Entry{
		Date:         cmd.Date,
		EnergyLevel:  cmd.EnergyLevel,
		Digestion:    cmd.Digestion,
		SleepQuality: cmd.SleepQuality,
		WaterIntake:  cmd.WaterIntake,
		Notes:        cmd.Notes,
	}, s.now())
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	existing, err := s.logs.FindByUserAndDate(ctx, actor.UserID, entry.Date)
	switch {
	case err == nil:
		existing.Replace(entry)
		entry = existing
	case !errors.Is(err, dailylog.ErrLogNotFound):
		return nil, apperrors.NewDatabaseError("find daily log", err)
	}

	if err := s.logs.Upsert(ctx, entry); err != nil {
		return nil, apperrors.NewDatabaseError("save daily log", err)
	}

	s.logger.Debug("Daily log saved", zap.String("user_id", actor.UserID.String()), zap.String("date", entry.Date))
	dto := inbound.NewDailyLogDTO(entry)
	return &dto, nil
}

// List returns the caller's logs between from and to inclusive, newest first.
// Without a range it covers the last thirty days.
func (s *Service) List(ctx context.Context, actor inbound.Actor, from, to string) ([]inbound.DailyLogDTO, error) {
	today := s.now().UTC()
	if to == "" {
		to = today.Format(dailylog.DateLayout)
	}
	if from == "" {
		from = today.AddDate(0, 0, -(defaultHistoryDays - 1)).Format(dailylog.DateLayout)
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(dailylog.DateLayout, d); err != nil {
			return nil, apperrors.NewRuleViolationError(dailylog.ErrInvalidDate)
		}
	}
	if from > to {
		return nil, apperrors.NewBadRequestError("From must not be after to")
	}

	logs, err := s.logs.FindByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list daily logs", err)
	}

	out := make([]inbound.DailyLogDTO, 0, len(logs))
	for _, l := range logs {
		out = append(out, inbound.NewDailyLogDTO(l))
	}
	return out, nil
}

// Weekly summarizes the last seven days for the progress chart
func (s *Service) Weekly(ctx context.Context, actor inbound.Actor) (*dailylog.WeeklySummary, error) {
	now := s.now()
	from, to := dailylog.WeekWindow(now)

	logs, err := s.logs.FindByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list daily logs", err)
	}

	summary := dailylog.Summarize(logs, now)
	return &summary, nil
}
