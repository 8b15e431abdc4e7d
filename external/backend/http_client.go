package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foxseedlab/mensetsukun/internal/interview"
)

const (
	startPath  = "/api/interview/start"
	submitPath = "/api/interview/submit"
	reportPath = "/api/interview/report/"
	healthPath = "/api/health"
)

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type startResponse struct {
	SessionID string             `json:"session_id"`
	Question  interview.Question `json:"question"`
	Message   string             `json:"message"`
}

func (c *HTTPClient) StartSession(ctx context.Context, req interview.StartRequest) (*interview.Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+startPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out startResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	if out.SessionID == "" {
		return nil, interview.NewAPIError(http.StatusOK, "malformed response: missing session_id")
	}
	return &interview.Session{
		ID:              out.SessionID,
		UserName:        req.Name,
		Experience:      req.Experience,
		CurrentQuestion: out.Question,
	}, nil
}

func (c *HTTPClient) SubmitAnswer(ctx context.Context, sub interview.Submission) (*interview.SubmitResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("session_id", sub.SessionID); err != nil {
		return nil, err
	}
	if err := w.WriteField("question_id", sub.QuestionID); err != nil {
		return nil, err
	}
	// answer_text is always present, empty string when the answer is
	// audio-only. The server rejects submissions it cannot derive any
	// answer from.
	if err := w.WriteField("answer_text", sub.Answer.Text); err != nil {
		return nil, err
	}
	if audio := sub.Answer.Audio; audio != nil {
		part, err := w.CreatePart(audioPartHeader(audio))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(audio.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	var out interview.SubmitResult
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchReport(ctx context.Context, sessionID string) (*interview.Report, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+reportPath+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var out interview.Report
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	return c.do(httpReq, nil)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("backend request failed", "request_id", requestID, "path", req.URL.Path, "error", err)
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	slog.Debug("backend request finished", "request_id", requestID, "path", req.URL.Path, "status", resp.StatusCode)

	if !isHTTPSuccessStatus(resp.StatusCode) {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// decodeError extracts the server's message from a non-2xx body. FastAPI
// style bodies carry {"detail": ...}; other services use {"error": ...}.
// Anything unparsable is folded into a generic server-error message verbatim.
func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return interview.NewAPIError(resp.StatusCode, "")
	}
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Detail != "" {
			return interview.NewAPIError(resp.StatusCode, body.Detail)
		}
		if body.Error != "" {
			return interview.NewAPIError(resp.StatusCode, body.Error)
		}
	}
	text := strings.TrimSpace(string(raw))
	return interview.NewAPIError(resp.StatusCode, fmt.Sprintf("server error (%d): %s", resp.StatusCode, text))
}

func audioPartHeader(audio *interview.AudioFile) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio_file"; filename=%q`, audio.Name))
	mime := audio.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	h.Set("Content-Type", mime)
	return h
}
