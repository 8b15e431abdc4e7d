package capture

import (
	"errors"
	"testing"

	"github.com/foxseedlab/mensetsukun/internal/audio"
)

func TestBuildAnswer_RejectsEmptyTextAndNoAudio(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := BuildAnswer(text, nil); !errors.Is(err, ErrEmptyAnswer) {
			t.Fatalf("expected ErrEmptyAnswer for %q, got %v", text, err)
		}
	}
}

func TestBuildAnswer_AcceptsTextOnly(t *testing.T) {
	ans, err := BuildAnswer("  =SUM(A1:A5)  ", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ans.Text != "=SUM(A1:A5)" {
		t.Fatalf("expected trimmed text, got %q", ans.Text)
	}
	if ans.Audio != nil {
		t.Fatal("expected no audio file")
	}
}

func TestBuildAnswer_AcceptsAudioOnlyWithEmptyText(t *testing.T) {
	clip := &audio.Clip{MIME: "audio/ogg", Data: []byte{1, 2}}
	ans, err := BuildAnswer("  ", clip)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ans.Text != "" {
		t.Fatalf("expected empty text, got %q", ans.Text)
	}
	if ans.Audio == nil || ans.Audio.Name != "answer.ogg" {
		t.Fatalf("unexpected audio file: %+v", ans.Audio)
	}
}

func TestBuildAnswer_BothSuppliedKeepsBoth(t *testing.T) {
	clip := &audio.Clip{MIME: "audio/wav", Data: []byte{1}}
	ans, err := BuildAnswer("spoken and typed", clip)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !AudioTakesPrecedence(ans) {
		t.Fatal("expected precedence note for text+audio answers")
	}
	if ans.Text == "" || ans.Audio == nil {
		t.Fatal("both text and audio must still be sent")
	}
}

func TestFileNameForMIME(t *testing.T) {
	cases := map[string]string{
		"audio/webm":             "answer.webm",
		"audio/webm;codecs=opus": "answer.webm",
		"audio/ogg":              "answer.ogg",
		"audio/opus":             "answer.ogg",
		"audio/wav":              "answer.wav",
		"":                       "answer.wav",
	}
	for mime, want := range cases {
		if got := FileNameForMIME(mime); got != want {
			t.Fatalf("FileNameForMIME(%q) = %q, want %q", mime, got, want)
		}
	}
}

func TestForm_PreservesContentUntilCleared(t *testing.T) {
	input := &fakeInput{stream: newFakeStream(nil)}
	rec := newTestRecorder(input, &fakePlayer{}, nil)
	form := NewForm(rec)

	form.AppendText("first line")
	form.AppendText("second line")
	if form.Text() != "first line\nsecond line" {
		t.Fatalf("unexpected form text: %q", form.Text())
	}

	// A failed submission keeps the contents; only an explicit clear
	// resets them.
	form.ClearAfterSubmit()
	if form.Text() != "" {
		t.Fatalf("expected empty text after clear, got %q", form.Text())
	}
}
