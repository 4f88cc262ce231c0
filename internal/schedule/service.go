package schedule

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrRowNotFound signals that no spreadsheet row and no override matched
	// a mark-complete request. It must reach the caller so the UI does not
	// show a false success.
	ErrRowNotFound = errors.New("schedule row not found")
	// ErrInvalidInput signals a request missing required class fields.
	ErrInvalidInput = errors.New("invalid input")
)

// AllTeachers is the sentinel teacher id that selects every spreadsheet row.
const AllTeachers = "ALL"

// SheetSource reads and updates the spreadsheet schedule.
type SheetSource interface {
	GetRows(ctx context.Context, teacherID string) ([]ScheduledClass, error)
	UpdateRow(ctx context.Context, teacherID, date, timeRange, status string) error
}

// OverrideStore is the document store holding completion overrides. It is
// the system of record for workflow state.
type OverrideStore interface {
	ListByTeacher(ctx context.Context, teacherUID string) ([]Override, error)
	Create(ctx context.Context, override Override) error
	UpdateStatus(ctx context.Context, id string, status OverrideStatus, actorUID string, at time.Time) error
	FindByTeacherDateTime(ctx context.Context, teacherUID, date, timeRange string) (*Override, error)
}

// RowCache caches spreadsheet reads per teacher with a TTL. Implementations
// must treat their own failures as misses.
type RowCache interface {
	Get(ctx context.Context, teacherID string) ([]ScheduledClass, bool)
	Set(ctx context.Context, teacherID string, rows []ScheduledClass)
	Invalidate(ctx context.Context, teacherID string)
}

// Notifier delivers best-effort workflow notifications.
type Notifier interface {
	CompletionRequested(ctx context.Context, override Override) error
}

type Service struct {
	sheet    SheetSource
	store    OverrideStore
	cache    RowCache
	notifier Notifier
	clock    func() time.Time
}

func NewService(sheet SheetSource, store OverrideStore, cache RowCache, notifier Notifier) *Service {
	return &Service{
		sheet:    sheet,
		store:    store,
		cache:    cache,
		notifier: notifier,
		clock:    time.Now,
	}
}

// CacheEnabled reports whether a row cache is wired in.
func (s *Service) CacheEnabled() bool {
	return s.cache != nil
}

// WithClock replaces the time source. Test hook.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// GetReconciledSchedule returns the status-annotated class list for a
// teacher, sorted ascending by normalized date. The spreadsheet and override
// fetches are independent and run concurrently. A failed read from either
// source degrades to an empty result set for that source: availability is
// favored over completeness, and retries belong to the caller.
func (s *Service) GetReconciledSchedule(ctx context.Context, teacherID string) ([]ReconciledClass, error) {
	var (
		rows      []ScheduledClass
		overrides []Override
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		rows = s.fetchRows(groupCtx, teacherID)
		return nil
	})
	group.Go(func() error {
		fetched, err := s.store.ListByTeacher(groupCtx, teacherID)
		if err != nil {
			log.Printf("schedule: override fetch failed for %s: %v", teacherID, err)
			return nil
		}
		overrides = fetched
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	reconciled := Reconcile(rows, overrides, s.clock())
	for _, class := range reconciled {
		if !class.DateCanonical {
			log.Printf("schedule: unparseable date %q for teacher %s batch %s", class.Date, class.TeacherID, class.Batch)
		}
	}
	return reconciled, nil
}

func (s *Service) fetchRows(ctx context.Context, teacherID string) []ScheduledClass {
	if s.cache != nil {
		if rows, ok := s.cache.Get(ctx, teacherID); ok {
			return rows
		}
	}
	rows, err := s.sheet.GetRows(ctx, teacherID)
	if err != nil {
		log.Printf("schedule: sheet fetch failed for %s: %v", teacherID, err)
		return nil
	}
	if s.cache != nil {
		s.cache.Set(ctx, teacherID, rows)
	}
	return rows
}

// RequestCompletion records a teacher's sign-off request for a class. The
// write to the override store propagates on failure; the notification email
// is best effort.
func (s *Service) RequestCompletion(ctx context.Context, teacherID, teacherName string, class ScheduledClass) (Override, error) {
	if teacherID == "" || class.Date == "" || class.Batch == "" || class.Subject == "" {
		return Override{}, ErrInvalidInput
	}

	date, _ := NormalizeDate(class.Date)
	start, end := SplitTimeRange(class.Time)
	override := Override{
		TeacherUID:  teacherID,
		TeacherName: teacherName,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		TimeRange:   class.Time,
		Batch:       class.Batch,
		Subject:     class.Subject,
		Status:      OverrideRequestToComplete,
		CreatedAt:   s.clock(),
	}
	if err := s.store.Create(ctx, override); err != nil {
		return Override{}, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, teacherID)
		s.cache.Invalidate(ctx, AllTeachers)
	}
	if s.notifier != nil {
		if err := s.notifier.CompletionRequested(ctx, override); err != nil {
			log.Printf("schedule: completion-request notification failed for %s: %v", teacherID, err)
		}
	}
	return override, nil
}

// MarkComplete marks the class identified by teacher+date+time as completed.
//
// When an override exists for the key it is the primary target: the document
// store write propagates on failure and the spreadsheet is then mirrored
// best effort, with failures logged and swallowed. When no override exists
// the spreadsheet row is the only target and a missing row surfaces as
// ErrRowNotFound.
func (s *Service) MarkComplete(ctx context.Context, actorUID, teacherID, date, timeRange, status string) error {
	if teacherID == "" || date == "" {
		return ErrInvalidInput
	}
	normalized, _ := NormalizeDate(date)

	override, err := s.store.FindByTeacherDateTime(ctx, teacherID, normalized, NormalizeTimeRange(timeRange))
	if err != nil {
		return err
	}

	// The bridge matches rows on the sheet's literal date cell, so the
	// caller's string goes through untouched even when it is non-canonical.
	if override != nil {
		if err := s.store.UpdateStatus(ctx, override.ID, OverrideCompleted, actorUID, s.clock()); err != nil {
			return err
		}
		if err := s.sheet.UpdateRow(ctx, teacherID, date, timeRange, status); err != nil {
			log.Printf("schedule: spreadsheet mirror failed for %s %s %s: %v", teacherID, date, timeRange, err)
		}
	} else {
		if err := s.sheet.UpdateRow(ctx, teacherID, date, timeRange, status); err != nil {
			return err
		}
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, teacherID)
		s.cache.Invalidate(ctx, AllTeachers)
	}
	return nil
}
