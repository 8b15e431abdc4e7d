package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/interview"
	"github.com/foxseedlab/mensetsukun/internal/ui"
)

type Phase string

const (
	PhaseActive     Phase = "active"
	PhaseSubmitting Phase = "submitting"
	PhaseFeedback   Phase = "feedback"
	PhaseErrored    Phase = "errored"
	PhaseCompleted  Phase = "completed"
)

// FlowError is the observable error value for the errored phase. Alerted
// records that the alert-level notice has already been raised, so the same
// failure is never announced twice through two notification paths.
type FlowError struct {
	Message string
	Alerted bool
}

// State is the tagged-variant interview state. Exactly the fields of the
// current phase are meaningful; illegal combinations (submitting and
// errored at once) are unrepresentable.
type State struct {
	Phase    Phase
	Question interview.Question
	Number   int
	Total    int
	Feedback *interview.Evaluation
	Err      *FlowError

	// FinalScore and TotalAnswered are set in the completed phase.
	FinalScore    float64
	TotalAnswered int
}

// Flow drives one question at a time for an interview session: submit,
// dwell on feedback, then advance, complete, or fail into a recoverable
// error state.
type Flow struct {
	client    interview.Client
	notify    ui.Notifier
	dwell     time.Duration
	sessionID string
	observer  func(State)

	state     State
	completed bool
}

func New(client interview.Client, notify ui.Notifier, sess *interview.Session, total int, dwell time.Duration) *Flow {
	return &Flow{
		client:    client,
		notify:    notify,
		dwell:     dwell,
		sessionID: sess.ID,
		state: State{
			Phase:    PhaseActive,
			Question: sess.CurrentQuestion,
			Number:   1,
			Total:    total,
		},
	}
}

// SetObserver registers a callback invoked on every state change, which is
// how the presentation layer follows the transient submitting and feedback
// phases inside Submit.
func (f *Flow) SetObserver(fn func(State)) {
	f.observer = fn
}

func (f *Flow) State() State {
	return f.state
}

func (f *Flow) setState(s State) {
	f.state = s
	if f.observer != nil {
		f.observer(s)
	}
}

// Submit sends the answer for the current question and runs the machine
// through feedback dwell and advancement. It returns the settled state:
// active with the next question, completed, or errored.
func (f *Flow) Submit(ctx context.Context, ans interview.Answer) State {
	if f.state.Phase != PhaseActive || f.state.Question.ID == "" {
		f.notify.Warn("No question to answer right now.")
		return f.state
	}

	question := f.state.Question
	f.setState(State{
		Phase:    PhaseSubmitting,
		Question: question,
		Number:   f.state.Number,
		Total:    f.state.Total,
	})

	res, err := f.client.SubmitAnswer(ctx, interview.Submission{
		SessionID:  f.sessionID,
		QuestionID: question.ID,
		Answer:     ans,
	})
	if err != nil {
		return f.fail(question, interview.UserMessage(err))
	}
	if res.Evaluation == nil {
		return f.fail(question, "malformed response: missing evaluation")
	}

	f.setState(State{
		Phase:    PhaseFeedback,
		Question: question,
		Number:   f.state.Number,
		Total:    f.state.Total,
		Feedback: res.Evaluation,
	})

	// Feedback stays on screen for the dwell period before the flow
	// inspects the response and moves on.
	select {
	case <-ctx.Done():
		return f.state
	case <-time.After(f.dwell):
	}

	switch {
	case res.InterviewComplete:
		if f.completed {
			return f.state
		}
		f.completed = true
		slog.Info("interview complete", "session_id", f.sessionID, "questions", f.state.Number)
		f.setState(State{
			Phase:         PhaseCompleted,
			Number:        f.state.Number,
			Total:         f.state.Total,
			FinalScore:    res.FinalScore,
			TotalAnswered: res.TotalQuestions,
		})
		return f.state
	case res.NextQuestion != nil:
		f.setState(State{
			Phase:    PhaseActive,
			Question: *res.NextQuestion,
			Number:   f.state.Number + 1,
			Total:    f.state.Total,
		})
		return f.state
	default:
		return f.fail(question, "unexpected response from server")
	}
}

// fail enters the errored phase and raises the alert exactly once; the
// Alerted flag on the error value suppresses any further announcement of
// the same failure.
func (f *Flow) fail(question interview.Question, message string) State {
	flowErr := &FlowError{Message: message}
	f.notify.Alert("Error submitting answer: " + message)
	flowErr.Alerted = true
	slog.Warn("submission failed", "session_id", f.sessionID, "question_id", question.ID, "error", message)
	f.setState(State{
		Phase:    PhaseErrored,
		Question: question,
		Number:   f.state.Number,
		Total:    f.state.Total,
		Err:      flowErr,
	})
	return f.state
}

// Retry clears the error and returns to the same current question.
func (f *Flow) Retry() State {
	if f.state.Phase != PhaseErrored {
		return f.state
	}
	f.setState(State{
		Phase:    PhaseActive,
		Question: f.state.Question,
		Number:   f.state.Number,
		Total:    f.state.Total,
	})
	return f.state
}
