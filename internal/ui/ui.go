package ui

import (
	"context"

	"github.com/foxseedlab/mensetsukun/internal/interview"
)

// Notifier carries user-facing notices out of the flow logic. Alert is the
// attention-demanding channel; Warn covers local input problems; Info is
// purely informational.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Alert(msg string)
}

type StartForm struct {
	Name       string
	Experience string
}

type CommandKind int

const (
	CommandText CommandKind = iota
	CommandRecord
	CommandStopRecording
	CommandPlay
	CommandDiscard
	CommandSubmit
	CommandQuit
)

// Command is one answer-form event from the candidate: either a text line
// or a control action.
type Command struct {
	Kind CommandKind
	Text string
}

type ErrorChoice int

const (
	ChoiceRetry ErrorChoice = iota
	ChoiceHome
)

// UI is the presentation surface the shell drives. The terminal adapter
// under external/ implements it; tests script it.
type UI interface {
	Notifier

	PromptStart(ctx context.Context) (StartForm, error)
	ShowQuestion(q interview.Question, number, total int)
	ShowSubmitting()
	ShowFeedback(eval interview.Evaluation)
	ShowElapsed(seconds int)
	ReadAnswerCommand(ctx context.Context) (Command, error)
	PromptErrorChoice(ctx context.Context, message string) (ErrorChoice, error)
	ShowFinalScore(score float64, totalQuestions int)
	ShowReport(r interview.Report)
	ReportUnavailable(reason string)
}
