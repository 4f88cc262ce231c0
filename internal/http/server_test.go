package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutorhive/schedule/internal/auth"
	"tutorhive/schedule/internal/config"
	"tutorhive/schedule/internal/schedule"
)

type stubSheet struct {
	rows []schedule.ScheduledClass
}

func (s *stubSheet) GetRows(_ context.Context, teacherID string) ([]schedule.ScheduledClass, error) {
	if teacherID == schedule.AllTeachers {
		return s.rows, nil
	}
	var filtered []schedule.ScheduledClass
	for _, row := range s.rows {
		if row.TeacherID == teacherID {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func (s *stubSheet) UpdateRow(_ context.Context, teacherID, date, timeRange, _ string) error {
	for _, row := range s.rows {
		if row.TeacherID == teacherID && row.Date == date && row.Time == timeRange {
			return nil
		}
	}
	return schedule.ErrRowNotFound
}

type stubStore struct {
	overrides []schedule.Override
}

func (s *stubStore) ListByTeacher(_ context.Context, teacherUID string) ([]schedule.Override, error) {
	var out []schedule.Override
	for _, ov := range s.overrides {
		if teacherUID == schedule.AllTeachers || ov.TeacherUID == teacherUID {
			out = append(out, ov)
		}
	}
	return out, nil
}

func (s *stubStore) Create(_ context.Context, override schedule.Override) error {
	override.ID = "ov-1"
	s.overrides = append(s.overrides, override)
	return nil
}

func (s *stubStore) UpdateStatus(_ context.Context, id string, status schedule.OverrideStatus, actorUID string, at time.Time) error {
	for i := range s.overrides {
		if s.overrides[i].ID == id {
			s.overrides[i].Status = status
			s.overrides[i].CompletedBy = &actorUID
			s.overrides[i].CompletedAt = &at
		}
	}
	return nil
}

func (s *stubStore) FindByTeacherDateTime(_ context.Context, teacherUID, date, timeRange string) (*schedule.Override, error) {
	for i := range s.overrides {
		ov := s.overrides[i]
		if ov.TeacherUID == teacherUID && ov.Date == date && schedule.NormalizeTimeRange(ov.TimeRange) == timeRange {
			return &s.overrides[i], nil
		}
	}
	return nil, nil
}

var testClock = time.Date(2026, 1, 24, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, sheet *stubSheet, store *stubStore) *Server {
	t.Helper()
	cfg := config.Config{JWTSecret: "test-secret", JWTIssuer: "test-issuer"}
	service := schedule.NewService(sheet, store, nil, nil).WithClock(func() time.Time { return testClock })
	return NewServer(cfg, service)
}

func token(t *testing.T, userID, userType, name string) string {
	t.Helper()
	value, err := auth.NewToken("test-secret", "test-issuer", time.Minute, auth.Claims{
		UserID:   userID,
		UserType: userType,
		Name:     name,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return value
}

func doRequest(t *testing.T, server *Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func sheetFixture() *stubSheet {
	return &stubSheet{rows: []schedule.ScheduledClass{{
		TeacherID: "T1",
		Date:      "2026-01-24",
		Day:       "Saturday",
		Time:      "10:00-11:30",
		Batch:     "Batch_06",
		Subject:   "Physics",
		RawStatus: "Scheduled",
	}}}
}

func TestScheduleRequiresToken(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodGet, "/schedule", "", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestOwnScheduleReturnsToday(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodGet, "/schedule", token(t, "T1", "teacher", "Alice"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var classes []schedule.ReconciledClass
	if err := json.Unmarshal(recorder.Body.Bytes(), &classes); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(classes) != 1 || classes[0].Status != schedule.StatusToday {
		t.Fatalf("expected one Today class, got %+v", classes)
	}
}

func TestTeacherCannotReadOtherSchedule(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodGet, "/schedule/T2", token(t, "T1", "teacher", "Alice"), nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestAdminCanReadAnySchedule(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodGet, "/schedule/T1", token(t, "A1", "admin", "Root"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestAdminAllScheduleKeepsOverridesPerTeacher(t *testing.T) {
	sheet := sheetFixture()
	sheet.rows = append(sheet.rows, schedule.ScheduledClass{
		TeacherID: "T2",
		Date:      "2026-01-24",
		Day:       "Saturday",
		Time:      "10:00-11:30",
		Batch:     "Batch_06",
		Subject:   "Physics",
		RawStatus: "Scheduled",
	})
	store := &stubStore{overrides: []schedule.Override{{
		ID:         "ov-1",
		TeacherUID: "T1",
		Date:       "2026-01-24",
		Batch:      "Batch_06",
		Subject:    "Physics",
		Status:     schedule.OverrideCompleted,
	}}}
	server := newTestServer(t, sheet, store)

	recorder := doRequest(t, server, http.MethodGet, "/schedule/ALL", token(t, "A1", "admin", "Root"), nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var classes []schedule.ReconciledClass
	if err := json.Unmarshal(recorder.Body.Bytes(), &classes); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("expected both teachers' classes, got %+v", classes)
	}
	statuses := make(map[string]schedule.ClassStatus)
	for _, class := range classes {
		statuses[class.TeacherID] = class.Status
	}
	if statuses["T1"] != schedule.StatusCompleted {
		t.Fatalf("expected T1 Completed, got %s", statuses["T1"])
	}
	if statuses["T2"] != schedule.StatusToday {
		t.Fatalf("expected T2 Today, got %s", statuses["T2"])
	}
}

func TestCompletionRequestThenScheduleShowsRequested(t *testing.T) {
	sheet := sheetFixture()
	store := &stubStore{}
	server := newTestServer(t, sheet, store)
	teacherToken := token(t, "T1", "teacher", "Alice")

	recorder := doRequest(t, server, http.MethodPost, "/schedule/completion-request", teacherToken, map[string]string{
		"date":    "2026-01-24",
		"time":    "10:00-11:30",
		"batch":   "Batch_06",
		"subject": "Physics",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doRequest(t, server, http.MethodGet, "/schedule", teacherToken, nil)
	var classes []schedule.ReconciledClass
	if err := json.Unmarshal(recorder.Body.Bytes(), &classes); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(classes) != 1 || classes[0].Status != schedule.StatusRequested {
		t.Fatalf("expected Requested, got %+v", classes)
	}
}

func TestCompletionRequestMissingFields(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodPost, "/schedule/completion-request", token(t, "T1", "teacher", "Alice"), map[string]string{
		"date": "2026-01-24",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestAdminCannotRequestCompletion(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodPost, "/schedule/completion-request", token(t, "A1", "admin", "Root"), map[string]string{
		"date":    "2026-01-24",
		"time":    "10:00-11:30",
		"batch":   "Batch_06",
		"subject": "Physics",
	})
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestMarkCompleteNotFound(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodPost, "/schedule/complete", token(t, "A1", "admin", "Root"), map[string]string{
		"teacherId": "T1",
		"date":      "2026-02-01",
		"time":      "10:00-11:30",
		"status":    "Completed",
	})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestMarkCompleteSheetRow(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodPost, "/schedule/complete", token(t, "T1", "teacher", "Alice"), map[string]string{
		"date":   "2026-01-24",
		"time":   "10:00-11:30",
		"status": "Completed",
	})
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, sheetFixture(), &stubStore{})
	recorder := doRequest(t, server, http.MethodGet, "/health", "", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}
