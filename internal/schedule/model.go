package schedule

import "time"

// OverrideStatus is the workflow state of a completion override held in the
// document store.
type OverrideStatus string

const (
	OverridePending           OverrideStatus = "pending"
	OverrideRequestToComplete OverrideStatus = "request_to_complete"
	OverrideCompleted         OverrideStatus = "completed"
)

// ClassStatus is the single display status derived for a scheduled class.
type ClassStatus string

const (
	StatusUpcoming  ClassStatus = "Upcoming"
	StatusToday     ClassStatus = "Today"
	StatusPending   ClassStatus = "Pending"
	StatusCompleted ClassStatus = "Completed"
	StatusRequested ClassStatus = "Requested"
)

// ScheduledClass is one row of the spreadsheet schedule, a read-only
// snapshot fetched per request.
type ScheduledClass struct {
	TeacherID   string `json:"teacherId"`
	TeacherName string `json:"teacherName"`
	Date        string `json:"date"`
	Day         string `json:"day"`
	Time        string `json:"time"`
	Batch       string `json:"batch"`
	Subject     string `json:"subject"`
	RawStatus   string `json:"status"`
}

// Override is a human-initiated status change for a specific class. It takes
// precedence over whatever the spreadsheet still shows.
type Override struct {
	ID          string
	TeacherUID  string
	TeacherName string
	Date        string
	StartTime   string
	EndTime     string
	TimeRange   string
	Batch       string
	Subject     string
	Status      OverrideStatus
	CompletedBy *string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// ReconciledClass is a ScheduledClass annotated with its normalized date and
// derived status.
type ReconciledClass struct {
	ScheduledClass
	NormalizedDate string      `json:"normalizedDate"`
	DateCanonical  bool        `json:"-"`
	Status         ClassStatus `json:"derivedStatus"`
}
