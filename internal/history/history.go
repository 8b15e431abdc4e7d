package history

import (
	"context"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/interview"
)

// Record is one archived interview result.
type Record struct {
	ID             string
	SessionID      string
	UserName       string
	FinalScore     float64
	TotalQuestions int
	CompletedAt    time.Time
}

// Archive stores completed interview reports locally so past results can be
// reviewed without the backend.
type Archive interface {
	SaveReport(ctx context.Context, r *interview.Report, completedAt time.Time) (string, error)
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	GetReport(ctx context.Context, recordID string) (*interview.Report, error)
	Close() error
}
