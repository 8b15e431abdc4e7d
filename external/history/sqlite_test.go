package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/interview"
)

func openTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	a, err := NewSQLiteArchive(":memory:")
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func sampleReport(sessionID string) *interview.Report {
	return &interview.Report{
		SessionID:      sessionID,
		UserName:       "Ada",
		FinalScore:     4.2,
		TotalQuestions: 10,
		Report:         "Strong on formulas, needs pivot table practice.",
		Questions: []interview.ReportQuestion{
			{Category: "formulas", Text: "How do you sum a range?", UserAnswer: "=SUM(A1:A5)", Score: 5, Feedback: "Correct."},
			{Category: "pivot_tables", Text: "What is a pivot table?", UserAnswer: "A summary table", Score: 3, Feedback: "Partially correct."},
		},
		Status: "completed",
	}
}

func TestSaveAndGetReport(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	id, err := a.SaveReport(ctx, sampleReport("sess-1"), time.Now())
	if err != nil {
		t.Fatalf("save report: %v", err)
	}
	if id == "" {
		t.Fatal("expected a record id")
	}

	got, err := a.GetReport(ctx, id)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got.SessionID != "sess-1" || got.UserName != "Ada" {
		t.Errorf("unexpected report header: %+v", got)
	}
	if got.FinalScore != 4.2 || got.TotalQuestions != 10 {
		t.Errorf("unexpected score fields: %+v", got)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	if got.Questions[0].UserAnswer != "=SUM(A1:A5)" || got.Questions[1].Score != 3 {
		t.Errorf("questions out of order or corrupted: %+v", got.Questions)
	}
}

func TestGetReportNotFound(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.GetReport(context.Background(), "no-such-id")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, sess := range []string{"old", "mid", "new"} {
		if _, err := a.SaveReport(ctx, sampleReport(sess), base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("save %s: %v", sess, err)
		}
	}

	records, err := a.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SessionID != "new" || records[1].SessionID != "mid" {
		t.Errorf("unexpected order: %s, %s", records[0].SessionID, records[1].SessionID)
	}
}
