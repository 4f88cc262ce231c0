package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tutorhive/schedule/internal/schedule"
)

// SheetClient talks to the spreadsheet bridge API, a row-oriented REST
// surface over the program's schedule sheet. It is the slowest and least
// reliable dependency, so every call carries a bounded timeout.
type SheetClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ schedule.SheetSource = (*SheetClient)(nil)

func NewSheetClient(baseURL, apiKey string, timeout time.Duration) *SheetClient {
	return &SheetClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetRows fetches schedule rows. The literal "ALL" returns every row;
// otherwise rows are filtered by trimmed teacher id equality. The bridge
// filters server-side too, but sheets accumulate stray whitespace, so the
// filter is applied again here.
func (c *SheetClient) GetRows(ctx context.Context, teacherID string) ([]schedule.ScheduledClass, error) {
	endpoint := c.baseURL + "/rows"
	if teacherID != schedule.AllTeachers {
		endpoint += "?teacher=" + url.QueryEscape(teacherID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet bridge returned status %d", resp.StatusCode)
	}

	var rows []schedule.ScheduledClass
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	if teacherID == schedule.AllTeachers {
		return rows, nil
	}

	want := strings.TrimSpace(teacherID)
	filtered := make([]schedule.ScheduledClass, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.TeacherID) == want {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

type updateRowRequest struct {
	TeacherID string `json:"teacherId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
}

// UpdateRow overwrites the status field of the row matching trimmed
// teacherId+date+time. A missing row surfaces as schedule.ErrRowNotFound.
func (c *SheetClient) UpdateRow(ctx context.Context, teacherID, date, timeRange, status string) error {
	body, err := json.Marshal(updateRowRequest{
		TeacherID: strings.TrimSpace(teacherID),
		Date:      date,
		Time:      timeRange,
		Status:    status,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/rows", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return schedule.ErrRowNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("sheet bridge returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *SheetClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
