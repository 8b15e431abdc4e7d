package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/mensetsukun/internal/capture"
	"github.com/foxseedlab/mensetsukun/internal/flow"
	"github.com/foxseedlab/mensetsukun/internal/history"
	"github.com/foxseedlab/mensetsukun/internal/interview"
	"github.com/foxseedlab/mensetsukun/internal/ui"
)

// Shell is the top-level session loop: the home screen, the per-question
// answer form, and the final report view. It owns the transition between
// those surfaces; the flow package owns the per-question lifecycle.
type Shell struct {
	client      interview.Client
	ui          ui.UI
	archive     history.Archive
	newRecorder capture.RecorderFactory

	totalQuestions int
	feedbackDwell  time.Duration
}

func New(client interview.Client, u ui.UI, archive history.Archive, factory capture.RecorderFactory, totalQuestions int, feedbackDwell time.Duration) *Shell {
	return &Shell{
		client:         client,
		ui:             u,
		archive:        archive,
		newRecorder:    factory,
		totalQuestions: totalQuestions,
		feedbackDwell:  feedbackDwell,
	}
}

// Run drives the home screen until input ends or the context is cancelled.
// Each completed or abandoned interview returns here.
func (s *Shell) Run(ctx context.Context) error {
	for {
		form, err := s.ui.PromptStart(ctx)
		if err != nil {
			return ignoreShutdown(err)
		}

		name := strings.TrimSpace(form.Name)
		if name == "" {
			s.ui.Warn("Name is required.")
			continue
		}
		level, err := interview.ParseExperienceLevel(strings.TrimSpace(form.Experience))
		if err != nil {
			s.ui.Warn(err.Error())
			continue
		}

		sess, err := s.client.StartSession(ctx, interview.StartRequest{Name: name, Experience: level})
		if err != nil {
			// Start failures keep the candidate on the home screen.
			s.ui.Alert("Could not start the interview: " + interview.UserMessage(err))
			continue
		}
		slog.Info("interview started", "session_id", sess.ID, "experience", level)

		if err := s.runInterview(ctx, sess); err != nil {
			return ignoreShutdown(err)
		}
	}
}

func (s *Shell) runInterview(ctx context.Context, sess *interview.Session) error {
	fl := flow.New(s.client, s.ui, sess, s.totalQuestions, s.feedbackDwell)
	fl.SetObserver(func(st flow.State) {
		switch st.Phase {
		case flow.PhaseSubmitting:
			s.ui.ShowSubmitting()
		case flow.PhaseFeedback:
			if st.Feedback != nil {
				s.ui.ShowFeedback(*st.Feedback)
			}
		}
	})

	// The form is created per question and survives failed submissions, so
	// a retry after an error resubmits the same text and recording.
	var form *capture.Form
	formNumber := 0

	for {
		st := fl.State()
		switch st.Phase {
		case flow.PhaseActive:
			if st.Number != formNumber {
				formNumber = st.Number
				rec := s.newRecorder()
				rec.SetElapsedFunc(s.ui.ShowElapsed)
				form = capture.NewForm(rec)
			}
			s.ui.ShowQuestion(st.Question, st.Number, st.Total)
			quit, err := s.answerQuestion(ctx, fl, form)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case flow.PhaseErrored:
			choice, err := s.ui.PromptErrorChoice(ctx, st.Err.Message)
			if err != nil {
				return err
			}
			if choice == ui.ChoiceHome {
				return nil
			}
			fl.Retry()
		case flow.PhaseCompleted:
			s.ui.ShowFinalScore(st.FinalScore, st.TotalAnswered)
			s.showReport(ctx, sess.ID)
			return nil
		default:
			return nil
		}
	}
}

// answerQuestion runs the answer form's command loop until the candidate
// submits or quits. Recording problems never leave the form; they are
// warned about and the loop continues.
func (s *Shell) answerQuestion(ctx context.Context, fl *flow.Flow, form *capture.Form) (quit bool, err error) {
	rec := form.Recorder()
	for {
		cmd, err := s.ui.ReadAnswerCommand(ctx)
		if err != nil {
			return false, err
		}

		switch cmd.Kind {
		case ui.CommandText:
			form.AppendText(cmd.Text)

		case ui.CommandRecord:
			if err := rec.Start(ctx); err != nil {
				if errors.Is(err, capture.ErrRecorderBusy) {
					s.ui.Warn("A recording already exists. Stop or discard it first.")
				} else {
					s.ui.Warn(capture.MicFailureMessage(err))
				}
			}

		case ui.CommandStopRecording:
			if _, err := rec.Stop(); err != nil {
				switch {
				case errors.Is(err, capture.ErrNoAudioCaptured):
					s.ui.Warn("No audio was recorded.")
				case errors.Is(err, capture.ErrNotRecording):
					s.ui.Warn("No recording is active.")
				default:
					s.ui.Warn("Could not stop recording: " + err.Error())
				}
			}

		case ui.CommandPlay:
			if err := rec.Play(ctx); err != nil {
				if errors.Is(err, capture.ErrNothingRecorded) {
					s.ui.Warn("Nothing to play yet.")
				} else {
					s.ui.Warn("Playback failed: " + err.Error())
				}
			}

		case ui.CommandDiscard:
			if err := rec.Discard(); err != nil {
				s.ui.Warn("Nothing to discard.")
			} else {
				s.ui.Info("Recording discarded.")
			}

		case ui.CommandSubmit:
			if rec.Phase() == capture.PhaseRecording {
				s.ui.Warn("Stop the recording before submitting.")
				continue
			}
			ans, err := form.BuildAnswer()
			if errors.Is(err, capture.ErrEmptyAnswer) {
				s.ui.Warn("Type an answer or record one before submitting.")
				continue
			}
			if err != nil {
				return false, err
			}
			if capture.AudioTakesPrecedence(ans) {
				s.ui.Info("Both text and a recording were provided; the recording takes precedence.")
			}
			st := fl.Submit(ctx, ans)
			if st.Phase != flow.PhaseErrored {
				form.ClearAfterSubmit()
			}
			return false, nil

		case ui.CommandQuit:
			if rec.Phase() == capture.PhaseRecording {
				_, _ = rec.Stop()
			}
			return true, nil
		}
	}
}

// showReport fetches the final report exactly once. A failed fetch is
// terminal for the report view; the candidate still saw the final score.
func (s *Shell) showReport(ctx context.Context, sessionID string) {
	rep, err := s.client.FetchReport(ctx, sessionID)
	if err != nil {
		s.ui.ReportUnavailable(interview.UserMessage(err))
		return
	}
	s.ui.ShowReport(*rep)

	if s.archive == nil {
		return
	}
	recordID, err := s.archive.SaveReport(ctx, rep, time.Now())
	if err != nil {
		slog.Warn("could not archive report", "session_id", sessionID, "error", err)
		return
	}
	slog.Debug("report archived", "session_id", sessionID, "record_id", recordID)
}

// ignoreShutdown folds the ordinary ways a session ends (input exhausted,
// signal cancellation) into a clean exit.
func ignoreShutdown(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
