package interview

import "fmt"

type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// ParseExperienceLevel maps free-form input onto the enum. The empty string
// falls back to beginner, which is also what the server assumes when the
// field is omitted.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch ExperienceLevel(s) {
	case "":
		return ExperienceBeginner, nil
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return ExperienceLevel(s), nil
	default:
		return "", fmt.Errorf("experience level must be beginner, intermediate or advanced, got %q", s)
	}
}

type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Session is one candidate's interview instance. It is created by the server
// on start and discarded when the candidate returns home.
type Session struct {
	ID              string
	UserName        string
	Experience      ExperienceLevel
	CurrentQuestion Question
}

type Evaluation struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// SubmitResult is the envelope for one answered question. Exactly one of
// InterviewComplete / NextQuestion is expected to be set; anything else is a
// contract violation the flow turns into an error state.
type SubmitResult struct {
	Evaluation        *Evaluation `json:"evaluation"`
	InterviewComplete bool        `json:"interview_complete"`
	NextQuestion      *Question   `json:"next_question"`
	FinalScore        float64     `json:"final_score"`
	TotalQuestions    int         `json:"total_questions"`
	Message           string      `json:"message"`
}

type ReportQuestion struct {
	Category   string `json:"category"`
	Text       string `json:"text"`
	UserAnswer string `json:"user_answer"`
	Score      int    `json:"score"`
	Feedback   string `json:"feedback"`
}

type Report struct {
	SessionID      string           `json:"session_id"`
	UserName       string           `json:"user_name"`
	FinalScore     float64          `json:"final_score"`
	TotalQuestions int              `json:"total_questions"`
	Report         string           `json:"report"`
	Questions      []ReportQuestion `json:"questions"`
	Status         string           `json:"status"`
}

// AudioFile is a recorded clip wrapped as a named upload. The name is derived
// from the clip's MIME type by the capture layer.
type AudioFile struct {
	Name string
	MIME string
	Data []byte
}

// Answer is the text/audio pair assembled by answer capture. Text is already
// trimmed; it may be empty when audio is present, but never both.
type Answer struct {
	Text  string
	Audio *AudioFile
}
