package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/foxseedlab/mensetsukun/internal/interview"
	"github.com/foxseedlab/mensetsukun/internal/ui"
)

const maxScore = 5

// Terminal implements the UI port on stdin/stdout. Input lines are pumped
// through a channel so every prompt honours context cancellation.
type Terminal struct {
	out   io.Writer
	lines chan string
}

func New(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{out: out, lines: make(chan string)}
	go func() {
		defer close(t.lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			t.lines <- sc.Text()
		}
	}()
	return t
}

func (t *Terminal) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

func (t *Terminal) Info(msg string)  { fmt.Fprintln(t.out, msg) }
func (t *Terminal) Warn(msg string)  { fmt.Fprintln(t.out, "warning:", msg) }
func (t *Terminal) Alert(msg string) { fmt.Fprintf(t.out, "\n*** %s\n", msg) }

func (t *Terminal) PromptStart(ctx context.Context) (ui.StartForm, error) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, "Excel Mock Interview")
	fmt.Fprintln(t.out, "--------------------")
	fmt.Fprint(t.out, "Your name: ")
	name, err := t.readLine(ctx)
	if err != nil {
		return ui.StartForm{}, err
	}
	fmt.Fprint(t.out, "Experience (beginner/intermediate/advanced) [beginner]: ")
	experience, err := t.readLine(ctx)
	if err != nil {
		return ui.StartForm{}, err
	}
	return ui.StartForm{Name: name, Experience: strings.ToLower(strings.TrimSpace(experience))}, nil
}

func (t *Terminal) ShowQuestion(q interview.Question, number, total int) {
	fmt.Fprintf(t.out, "\nQuestion %d of %d", number, total)
	if q.Category != "" {
		fmt.Fprintf(t.out, "  (%s)", q.Category)
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, q.Text)
	fmt.Fprintln(t.out, "Type your answer, or use /record /stop /play /discard /submit /quit.")
}

func (t *Terminal) ShowSubmitting() {
	fmt.Fprintln(t.out, "Submitting answer...")
}

func (t *Terminal) ShowFeedback(eval interview.Evaluation) {
	fmt.Fprintf(t.out, "\nScore: %s %d/%d\n", scoreBar(eval.Score), eval.Score, maxScore)
	fmt.Fprintln(t.out, eval.Feedback)
	for _, s := range eval.Strengths {
		fmt.Fprintln(t.out, "  + "+s)
	}
	for _, s := range eval.Improvements {
		fmt.Fprintln(t.out, "  - "+s)
	}
}

func (t *Terminal) ShowElapsed(seconds int) {
	if seconds == 0 {
		fmt.Fprint(t.out, "\n")
		return
	}
	fmt.Fprintf(t.out, "\rRecording... %ds", seconds)
}

func (t *Terminal) ReadAnswerCommand(ctx context.Context) (ui.Command, error) {
	for {
		fmt.Fprint(t.out, "> ")
		line, err := t.readLine(ctx)
		if err != nil {
			return ui.Command{}, err
		}
		cmd, ok := ParseCommand(line)
		if !ok {
			fmt.Fprintf(t.out, "unknown command %q\n", strings.TrimSpace(line))
			continue
		}
		return cmd, nil
	}
}

func (t *Terminal) PromptErrorChoice(ctx context.Context, message string) (ui.ErrorChoice, error) {
	for {
		fmt.Fprintf(t.out, "\n%s\n[r]etry or go [h]ome? ", message)
		line, err := t.readLine(ctx)
		if err != nil {
			return ui.ChoiceHome, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "r", "retry":
			return ui.ChoiceRetry, nil
		case "h", "home":
			return ui.ChoiceHome, nil
		}
	}
}

func (t *Terminal) ShowFinalScore(score float64, totalQuestions int) {
	fmt.Fprintf(t.out, "\nInterview complete. Final score: %.1f/%d over %d questions.\n",
		score, maxScore, totalQuestions)
}

func (t *Terminal) ShowReport(r interview.Report) {
	fmt.Fprintln(t.out)
	fmt.Fprintf(t.out, "Performance report for %s\n", r.UserName)
	fmt.Fprintln(t.out, "==============================")
	if r.Report != "" {
		fmt.Fprintln(t.out, r.Report)
	}
	for i, q := range r.Questions {
		fmt.Fprintf(t.out, "\n%d. [%s] %s\n", i+1, q.Category, q.Text)
		fmt.Fprintf(t.out, "   answer: %s\n", q.UserAnswer)
		fmt.Fprintf(t.out, "   score:  %s %d/%d\n", scoreBar(q.Score), q.Score, maxScore)
		if q.Feedback != "" {
			fmt.Fprintln(t.out, "   "+q.Feedback)
		}
	}
	fmt.Fprintf(t.out, "\nOverall: %.1f/%d  (%s)\n", r.FinalScore, maxScore, r.Status)
}

func (t *Terminal) ReportUnavailable(reason string) {
	fmt.Fprintf(t.out, "\nThe detailed report could not be loaded: %s\n", reason)
}

// ParseCommand maps one input line onto an answer-form command. Slash lines
// are control actions; anything else is answer text. Unknown slash commands
// are rejected so a typo never ends up inside the answer.
func ParseCommand(line string) (ui.Command, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return ui.Command{Kind: ui.CommandText, Text: line}, true
	}
	switch strings.ToLower(trimmed) {
	case "/record":
		return ui.Command{Kind: ui.CommandRecord}, true
	case "/stop":
		return ui.Command{Kind: ui.CommandStopRecording}, true
	case "/play":
		return ui.Command{Kind: ui.CommandPlay}, true
	case "/discard":
		return ui.Command{Kind: ui.CommandDiscard}, true
	case "/submit":
		return ui.Command{Kind: ui.CommandSubmit}, true
	case "/quit":
		return ui.Command{Kind: ui.CommandQuit}, true
	default:
		return ui.Command{}, false
	}
}

func scoreBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}
	return "[" + strings.Repeat("#", score) + strings.Repeat("-", maxScore-score) + "]"
}
