package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localbookr/marketplace-backend/internal/config"
	"github.com/localbookr/marketplace-backend/internal/database"
	"github.com/localbookr/marketplace-backend/internal/metrics"
	"github.com/localbookr/marketplace-backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// sweep outcomes, also used as metric labels
const (
	sweepAssigned  = "assigned"
	sweepWaiting   = "waiting"
	sweepUnchanged = "unchanged"
	sweepConflict  = "conflict"
	sweepError     = "error"
)

// SweepReport summarises one auto-assign pass
type SweepReport struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Skipped    bool      `json:"skipped"`
	Scanned    int       `json:"scanned"`
	Assigned   int       `json:"assigned"`
	Waiting    int       `json:"waiting"`
	Unchanged  int       `json:"unchanged"`
	Conflicts  int       `json:"conflicts"`
	Errors     int       `json:"errors"`
}

func (r *SweepReport) add(outcome string) {
	switch outcome {
	case sweepAssigned:
		r.Assigned++
	case sweepWaiting:
		r.Waiting++
	case sweepUnchanged:
		r.Unchanged++
	case sweepConflict:
		r.Conflicts++
	default:
		r.Errors++
	}
}

// AutoAssignService periodically assigns stale unassigned bookings to the best
// rated eligible provider, or parks them as WAITING when nobody qualifies.
// Failures are logged and counted; they never reach a caller.
type AutoAssignService struct {
	cron       *cron.Cron
	cfg        config.AutoAssignConfig
	bookings   BookingStore
	matcher    *MatchingService
	dispatcher *Dispatcher
	locker     Locker
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	now        func() time.Time

	sweeping sync.Mutex
	mu       sync.RWMutex
	last     *SweepReport
	entryID  cron.EntryID
}

// NewAutoAssignService creates the scheduler. A nil locker means a single replica.
func NewAutoAssignService(
	cfg config.AutoAssignConfig,
	bookings BookingStore,
	matcher *MatchingService,
	dispatcher *Dispatcher,
	locker Locker,
	m *metrics.Metrics,
	logger *logrus.Logger,
) *AutoAssignService {
	if locker == nil {
		locker = LocalLocker{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	return &AutoAssignService{
		cron:       cron.New(cron.WithSeconds()),
		cfg:        cfg,
		bookings:   bookings,
		matcher:    matcher,
		dispatcher: dispatcher,
		locker:     locker,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// Start schedules the sweep
func (s *AutoAssignService) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("Auto-assign sweep disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.cfg.Schedule, s.sweepJob)
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()

	s.logger.WithFields(logrus.Fields{
		"schedule":      s.cfg.Schedule,
		"stale_after":   s.cfg.StaleAfter.String(),
		"retry_waiting": s.cfg.RetryWaiting,
	}).Info("Auto-assign sweep scheduled")
	return nil
}

// Stop waits for a running sweep to finish and stops the scheduler
func (s *AutoAssignService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Auto-assign sweep stopped")
}

func (s *AutoAssignService) sweepJob() {
	timeout := s.cfg.LockTTL
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.SweepOnce(ctx)
}

// RunNow runs a sweep immediately, outside the schedule
func (s *AutoAssignService) RunNow(ctx context.Context) SweepReport {
	s.logger.Info("Auto-assign sweep triggered manually")
	return s.SweepOnce(ctx)
}

// SweepOnce scans stale bookings once. Overlapping calls in this process and
// across replicas holding the lock are skipped.
func (s *AutoAssignService) SweepOnce(ctx context.Context) SweepReport {
	report := SweepReport{StartedAt: s.now()}

	if !s.sweeping.TryLock() {
		report.Skipped = true
		return report
	}
	defer s.sweeping.Unlock()

	release, ok, err := s.locker.TryLock(ctx, s.cfg.LockTTL)
	if err != nil {
		s.logger.WithError(err).Warn("Auto-assign lock unavailable, sweeping without it")
	} else if !ok {
		report.Skipped = true
		s.logger.Debug("Auto-assign sweep held by another instance")
		return report
	} else {
		defer release()
	}

	defer func() {
		elapsed := s.now().Sub(report.StartedAt)
		report.DurationMS = elapsed.Milliseconds()
		s.metrics.ObserveSweep(elapsed)
		s.remember(report)
	}()

	cutoff := report.StartedAt.Add(-s.cfg.StaleAfter)
	if !s.sweepStatus(ctx, models.BookingPending, cutoff, &report) {
		return report
	}
	if s.cfg.RetryWaiting {
		s.sweepStatus(ctx, models.BookingWaiting, cutoff, &report)
	}

	if report.Scanned > 0 {
		s.logger.WithFields(logrus.Fields{
			"scanned":   report.Scanned,
			"assigned":  report.Assigned,
			"waiting":   report.Waiting,
			"conflicts": report.Conflicts,
			"errors":    report.Errors,
		}).Info("Auto-assign sweep finished")
	}
	return report
}

// sweepStatus scans one batch of stale bookings in the given status. PENDING
// and WAITING never share a batch. It reports false when the listing failed.
func (s *AutoAssignService) sweepStatus(ctx context.Context, status models.BookingStatus, cutoff time.Time, report *SweepReport) bool {
	stale, err := s.bookings.ListStale(ctx, status, cutoff, s.cfg.BatchSize)
	if err != nil {
		report.Errors++
		s.metrics.SweepOutcome(sweepError)
		s.logger.WithFields(logrus.Fields{
			"status": status,
			"error":  err.Error(),
		}).Error("Auto-assign sweep failed to list bookings")
		return false
	}

	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		outcome := s.assignOne(ctx, &stale[i])
		report.Scanned++
		report.add(outcome)
		s.metrics.SweepOutcome(outcome)
	}
	return true
}

func (s *AutoAssignService) assignOne(ctx context.Context, b *models.BookingDetail) string {
	log := s.logger.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"service":    b.ServiceName,
		"area":       b.Area,
	})

	provider, err := s.matcher.BestCandidate(ctx, b.ServiceName, b.Area)
	if err != nil {
		log.WithError(err).Warn("Auto-assign candidate lookup failed")
		return sweepError
	}

	if provider == nil {
		if b.Status == models.BookingWaiting {
			// rotate to the back of the retry queue
			if err := s.bookings.TouchWaiting(ctx, b.ID); err != nil {
				log.WithError(err).Warn("Failed to requeue waiting booking")
			}
			return sweepUnchanged
		}
		if err := s.transition(ctx, b, models.BookingWaiting, uuid.NullUUID{}); err != nil {
			return s.failure(log, err)
		}
		log.Info("No provider available, booking moved to WAITING")
		return sweepWaiting
	}

	providerRef := uuid.NullUUID{UUID: provider.ID, Valid: true}
	if err := s.transition(ctx, b, models.BookingAssigned, providerRef); err != nil {
		return s.failure(log, err)
	}
	log.WithField("provider_id", provider.ID).Info("Booking auto-assigned")

	detail, err := s.bookings.GetDetail(ctx, b.ID)
	if err != nil {
		log.WithError(err).Warn("Failed to reload auto-assigned booking")
		detail = withProvider(b, provider)
	}
	s.dispatcher.Dispatch(ctx, autoAssignEffects(detail))

	return sweepAssigned
}

func (s *AutoAssignService) transition(ctx context.Context, b *models.BookingDetail, to models.BookingStatus, providerID uuid.NullUUID) error {
	if err := models.ValidateTransition(b.Status, to); err != nil {
		return err
	}
	if err := s.bookings.UpdateStatus(ctx, b.ID, b.Status, to, providerID); err != nil {
		return err
	}
	s.metrics.Transition(string(b.Status), string(to))
	return nil
}

func (s *AutoAssignService) failure(log *logrus.Entry, err error) string {
	if errors.Is(err, database.ErrStaleStatus) {
		log.Debug("Booking changed during auto-assign, skipped")
		return sweepConflict
	}
	log.WithError(err).Warn("Auto-assign update failed")
	return sweepError
}

func (s *AutoAssignService) remember(report SweepReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &report
}

// LastReport returns the most recent completed sweep, if any
func (s *AutoAssignService) LastReport() *SweepReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

// Status reports the schedule and the last sweep
func (s *AutoAssignService) Status() map[string]interface{} {
	status := map[string]interface{}{
		"enabled":       s.cfg.Enabled,
		"schedule":      s.cfg.Schedule,
		"stale_after":   s.cfg.StaleAfter.String(),
		"retry_waiting": s.cfg.RetryWaiting,
		"last_sweep":    s.LastReport(),
	}

	if s.entryID != 0 {
		entry := s.cron.Entry(s.entryID)
		status["next_run"] = entry.Next
		status["prev_run"] = entry.Prev
	}
	return status
}

// withProvider overlays the chosen provider on a booking read before the write
func withProvider(b *models.BookingDetail, p *models.Provider) *models.BookingDetail {
	detail := *b
	detail.Status = models.BookingAssigned
	detail.ProviderID = uuid.NullUUID{UUID: p.ID, Valid: true}
	detail.ProviderUserID = uuid.NullUUID{UUID: p.UserID, Valid: true}
	detail.ProviderName = &p.Name
	detail.ProviderEmail = &p.Email
	detail.ProviderPhone = &p.Phone
	detail.ProviderPushToken = p.PushToken
	return &detail
}
