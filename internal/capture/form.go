package capture

import (
	"errors"
	"strings"

	"github.com/foxseedlab/mensetsukun/internal/audio"
	"github.com/foxseedlab/mensetsukun/internal/interview"
)

// ErrEmptyAnswer rejects submissions where the trimmed text is empty and no
// audio has been recorded.
var ErrEmptyAnswer = errors.New("answer requires text or a recording")

// Form is the answer form for one question: accumulated text lines plus the
// recorder's clip. Contents survive a failed submission and are cleared only
// after a successful one.
type Form struct {
	rec   *Recorder
	lines []string
}

func NewForm(rec *Recorder) *Form {
	return &Form{rec: rec}
}

func (f *Form) Recorder() *Recorder {
	return f.rec
}

func (f *Form) AppendText(line string) {
	f.lines = append(f.lines, line)
}

func (f *Form) Text() string {
	return strings.Join(f.lines, "\n")
}

// BuildAnswer validates and assembles the submission payload from the
// current form contents.
func (f *Form) BuildAnswer() (interview.Answer, error) {
	return BuildAnswer(f.Text(), f.rec.Clip())
}

// ClearAfterSubmit resets text and any finished recording once a submission
// has been accepted.
func (f *Form) ClearAfterSubmit() {
	f.lines = nil
	_ = f.rec.Discard()
}

// BuildAnswer assembles the text/audio pair. Text is trimmed; an answer with
// neither trimmed text nor audio is rejected. Audio clips are wrapped as a
// named file derived from the clip's MIME type.
func BuildAnswer(text string, clip *audio.Clip) (interview.Answer, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && clip == nil {
		return interview.Answer{}, ErrEmptyAnswer
	}
	ans := interview.Answer{Text: trimmed}
	if clip != nil {
		ans.Audio = &interview.AudioFile{
			Name: FileNameForMIME(clip.MIME),
			MIME: clip.MIME,
			Data: clip.Data,
		}
	}
	return ans, nil
}

// AudioTakesPrecedence reports whether both text and audio are being sent,
// in which case the backend transcribes the audio and prefers it.
func AudioTakesPrecedence(ans interview.Answer) bool {
	return ans.Text != "" && ans.Audio != nil
}

// FileNameForMIME names the uploaded clip after its container format,
// defaulting to the WAV name for unknown or untagged clips.
func FileNameForMIME(mime string) string {
	switch {
	case strings.Contains(mime, "webm"):
		return "answer.webm"
	case strings.Contains(mime, "ogg"), strings.Contains(mime, "opus"):
		return "answer.ogg"
	default:
		return "answer.wav"
	}
}
