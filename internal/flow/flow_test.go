package flow

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/interview"
)

type fakeClient struct {
	submitCalls  []interview.Submission
	submitResult *interview.SubmitResult
	submitErr    error
}

func (c *fakeClient) StartSession(_ context.Context, _ interview.StartRequest) (*interview.Session, error) {
	return nil, nil
}

func (c *fakeClient) SubmitAnswer(_ context.Context, sub interview.Submission) (*interview.SubmitResult, error) {
	c.submitCalls = append(c.submitCalls, sub)
	if c.submitErr != nil {
		return nil, c.submitErr
	}
	return c.submitResult, nil
}

func (c *fakeClient) FetchReport(_ context.Context, _ string) (*interview.Report, error) {
	return nil, nil
}

func (c *fakeClient) Health(_ context.Context) error { return nil }

type fakeNotifier struct {
	infos  []string
	warns  []string
	alerts []string
}

func (n *fakeNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *fakeNotifier) Warn(msg string)  { n.warns = append(n.warns, msg) }
func (n *fakeNotifier) Alert(msg string) { n.alerts = append(n.alerts, msg) }

func testSession() *interview.Session {
	return &interview.Session{
		ID: "sess-1",
		CurrentQuestion: interview.Question{
			ID: "q-1", Text: "Explain SUMIF.", Category: "formulas",
		},
	}
}

func newTestFlow(client *fakeClient, notify *fakeNotifier) *Flow {
	return New(client, notify, testSession(), 10, time.Millisecond)
}

func textAnswer(text string) interview.Answer {
	return interview.Answer{Text: text}
}

func TestSubmit_NextQuestionAdvancesCounterAndClearsFeedback(t *testing.T) {
	client := &fakeClient{submitResult: &interview.SubmitResult{
		Evaluation:   &interview.Evaluation{Score: 4, Feedback: "good"},
		NextQuestion: &interview.Question{ID: "q-2", Text: "Explain INDEX.", Category: "formulas"},
	}}
	notify := &fakeNotifier{}
	f := newTestFlow(client, notify)

	st := f.Submit(context.Background(), textAnswer("=SUM(A1:A5)"))

	if st.Phase != PhaseActive {
		t.Fatalf("expected active phase, got %s", st.Phase)
	}
	if st.Number != 2 {
		t.Fatalf("expected counter 2, got %d", st.Number)
	}
	if st.Question.ID != "q-2" {
		t.Fatalf("expected next question, got %+v", st.Question)
	}
	if st.Feedback != nil {
		t.Fatal("expected feedback cleared after dwell")
	}
	if len(notify.alerts) != 0 {
		t.Fatalf("unexpected alerts: %v", notify.alerts)
	}
	if len(client.submitCalls) != 1 || client.submitCalls[0].QuestionID != "q-1" {
		t.Fatalf("unexpected submissions: %+v", client.submitCalls)
	}
}

func TestSubmit_ObserverSeesSubmittingThenFeedback(t *testing.T) {
	client := &fakeClient{submitResult: &interview.SubmitResult{
		Evaluation:   &interview.Evaluation{Score: 3},
		NextQuestion: &interview.Question{ID: "q-2"},
	}}
	f := newTestFlow(client, &fakeNotifier{})

	var phases []Phase
	f.SetObserver(func(st State) { phases = append(phases, st.Phase) })
	f.Submit(context.Background(), textAnswer("x"))

	want := []Phase{PhaseSubmitting, PhaseFeedback, PhaseActive}
	if len(phases) != len(want) {
		t.Fatalf("unexpected phase sequence: %v", phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("phase[%d] = %s, want %s", i, phases[i], want[i])
		}
	}
}

func TestSubmit_CompletionTerminatesExactlyOnce(t *testing.T) {
	client := &fakeClient{submitResult: &interview.SubmitResult{
		Evaluation:        &interview.Evaluation{Score: 5},
		InterviewComplete: true,
		FinalScore:        4.5,
		TotalQuestions:    10,
	}}
	notify := &fakeNotifier{}
	f := newTestFlow(client, notify)

	st := f.Submit(context.Background(), textAnswer("done"))
	if st.Phase != PhaseCompleted {
		t.Fatalf("expected completed phase, got %s", st.Phase)
	}
	if st.FinalScore != 4.5 || st.TotalAnswered != 10 {
		t.Fatalf("unexpected completion payload: %+v", st)
	}

	// A second submit after completion is a warned no-op.
	st = f.Submit(context.Background(), textAnswer("again"))
	if st.Phase != PhaseCompleted {
		t.Fatalf("expected state unchanged, got %s", st.Phase)
	}
	if len(client.submitCalls) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(client.submitCalls))
	}
	if len(notify.warns) != 1 {
		t.Fatalf("expected one warning, got %v", notify.warns)
	}
}

func TestSubmit_MissingEvaluationIsMalformedResponse(t *testing.T) {
	client := &fakeClient{submitResult: &interview.SubmitResult{
		NextQuestion: &interview.Question{ID: "q-2"},
	}}
	notify := &fakeNotifier{}
	f := newTestFlow(client, notify)

	st := f.Submit(context.Background(), textAnswer("x"))
	if st.Phase != PhaseErrored {
		t.Fatalf("expected errored phase, got %s", st.Phase)
	}
	if st.Err == nil || st.Err.Message != "malformed response: missing evaluation" {
		t.Fatalf("unexpected error value: %+v", st.Err)
	}
}

func TestSubmit_NeitherCompleteNorNextIsUnexpectedResponse(t *testing.T) {
	client := &fakeClient{submitResult: &interview.SubmitResult{
		Evaluation: &interview.Evaluation{Score: 2},
	}}
	f := newTestFlow(client, &fakeNotifier{})

	st := f.Submit(context.Background(), textAnswer("x"))
	if st.Phase != PhaseErrored {
		t.Fatalf("expected errored phase, got %s", st.Phase)
	}
	if st.Err.Message != "unexpected response from server" {
		t.Fatalf("unexpected message: %q", st.Err.Message)
	}
}

func TestSubmit_ServerDetailMessageSurfacesVerbatim(t *testing.T) {
	client := &fakeClient{submitErr: interview.NewAPIError(http.StatusBadRequest, "bad audio format")}
	notify := &fakeNotifier{}
	f := newTestFlow(client, notify)

	st := f.Submit(context.Background(), textAnswer("x"))
	if st.Err == nil || st.Err.Message != "bad audio format" {
		t.Fatalf("expected exact server message, got %+v", st.Err)
	}
	if len(notify.alerts) != 1 {
		t.Fatalf("expected exactly one alert, got %v", notify.alerts)
	}
	if !st.Err.Alerted {
		t.Fatal("expected the error value to record the raised alert")
	}
}

func TestSubmit_GuardsMissingCurrentQuestion(t *testing.T) {
	client := &fakeClient{}
	notify := &fakeNotifier{}
	sess := testSession()
	sess.CurrentQuestion = interview.Question{}
	f := New(client, notify, sess, 10, time.Millisecond)

	st := f.Submit(context.Background(), textAnswer("x"))
	if len(client.submitCalls) != 0 {
		t.Fatal("expected no submission without a current question")
	}
	if len(notify.warns) != 1 {
		t.Fatalf("expected a warning, got %v", notify.warns)
	}
	if st.Phase != PhaseActive {
		t.Fatalf("expected state unchanged, got %s", st.Phase)
	}
}

func TestRetry_ReturnsToSameQuestion(t *testing.T) {
	client := &fakeClient{submitErr: interview.NewAPIError(http.StatusInternalServerError, "boom")}
	f := newTestFlow(client, &fakeNotifier{})

	st := f.Submit(context.Background(), textAnswer("x"))
	if st.Phase != PhaseErrored {
		t.Fatalf("expected errored phase, got %s", st.Phase)
	}

	st = f.Retry()
	if st.Phase != PhaseActive {
		t.Fatalf("expected active phase after retry, got %s", st.Phase)
	}
	if st.Question.ID != "q-1" || st.Number != 1 {
		t.Fatalf("expected same question preserved, got %+v", st)
	}
	if st.Err != nil {
		t.Fatal("expected error cleared after retry")
	}

	// Retry outside the errored phase is a no-op.
	if got := f.Retry(); got.Phase != PhaseActive {
		t.Fatalf("unexpected state after redundant retry: %s", got.Phase)
	}
}

func TestSubmit_NetworkErrorGetsPrefixedMessage(t *testing.T) {
	client := &fakeClient{submitErr: context.DeadlineExceeded}
	f := newTestFlow(client, &fakeNotifier{})

	st := f.Submit(context.Background(), textAnswer("x"))
	if st.Phase != PhaseErrored {
		t.Fatalf("expected errored phase, got %s", st.Phase)
	}
	if st.Err.Message != "network error: context deadline exceeded" {
		t.Fatalf("unexpected message: %q", st.Err.Message)
	}
}
