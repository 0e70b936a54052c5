package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"hostelportal/internal/student"
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
	// Message is the "message" field of a JSON error body, if any.
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.Code, e.Text())
}

// Text is the raw response body, trimmed.
func (e *StatusError) Text() string { return strings.TrimSpace(e.Body) }

// ErrTransport marks failures where no HTTP answer was obtained.
var ErrTransport = errors.New("backend unreachable")

// Client calls the attendance backend REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client

	log     *zap.Logger
	metrics *Metrics
}

// New creates a client with the given per-request timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger, metrics *Metrics) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		log:     logger,
		metrics: metrics,
	}
}

// SendAdminOTP asks the backend to mail an OTP to the admin address.
func (c *Client) SendAdminOTP(ctx context.Context, email string) error {
	return c.post(ctx, "send-admin-otp", "/auth/send-admin-otp", map[string]string{"email": email}, nil)
}

// VerifyAdminOTP checks the admin OTP.
func (c *Client) VerifyAdminOTP(ctx context.Context, email, otp string) error {
	return c.post(ctx, "verify-admin-otp", "/auth/verify-admin-otp", map[string]string{"email": email, "otp": otp}, nil)
}

// SendLoginOTP mails a login OTP to the student's registered address.
func (c *Client) SendLoginOTP(ctx context.Context, sic, email string) error {
	return c.post(ctx, "send-login-otp", "/auth/send-login-otp", map[string]string{"sic": sic, "email": email}, nil)
}

// VerifyLoginOTP checks a student login OTP.
func (c *Client) VerifyLoginOTP(ctx context.Context, sic, otp string) error {
	return c.post(ctx, "verify-login-otp", "/auth/verify-login-otp", map[string]string{"sic": sic, "otp": otp}, nil)
}

// SendSignupOTP mails a signup OTP; the backend rejects known SICs and emails.
func (c *Client) SendSignupOTP(ctx context.Context, sic, email string) error {
	return c.post(ctx, "send-signup-otp", "/auth/send-signup-otp", map[string]string{"sic": sic, "email": email}, nil)
}

// SendEmailChangeOTP mails an OTP to the new address of an email change.
func (c *Client) SendEmailChangeOTP(ctx context.Context, sic, newEmail string) error {
	return c.post(ctx, "send-email-change-otp", "/auth/send-email-change-otp", map[string]string{"sic": sic, "newEmail": newEmail}, nil)
}

// Registration is the body of a signup completion.
type Registration struct {
	SIC    string         `json:"sic"`
	Email  string         `json:"email"`
	OTP    string         `json:"otp"`
	Status student.Status `json:"status"`
}

// Register creates the student record once the signup OTP is known.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.post(ctx, "register", "/students/register", reg, nil)
}

// ListStudents returns the full roster.
func (c *Client) ListStudents(ctx context.Context) ([]student.Student, error) {
	var out []student.Student
	if err := c.do(ctx, http.MethodGet, "list-students", "/students", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStudent returns one student by SIC.
func (c *Client) GetStudent(ctx context.Context, sic string) (student.Student, error) {
	var out student.Student
	if err := c.do(ctx, http.MethodGet, "get-student", "/students/"+url.PathEscape(sic), nil, &out); err != nil {
		return student.Student{}, err
	}
	return out, nil
}

type updateBody struct {
	student.Student
	OTP string `json:"otp,omitempty"`
}

// UpdateStudent replaces the record stored under sic with rec.
// otp is attached when the change needs backend-side verification.
func (c *Client) UpdateStudent(ctx context.Context, sic string, rec student.Student, otp string) error {
	return c.do(ctx, http.MethodPut, "update-student", "/students/"+url.PathEscape(sic), updateBody{Student: rec, OTP: otp}, nil)
}

type messageBody struct {
	ToEmail   string `json:"toEmail,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	SendToAll bool   `json:"sendToAll"`
}

// MessageResult is the body of the messaging endpoints.
type MessageResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	RecipientCount int    `json:"recipientCount"`
}

// SendMessage mails one student.
func (c *Client) SendMessage(ctx context.Context, toEmail, subject, body string) error {
	return c.post(ctx, "send-message", "/messages/send", messageBody{ToEmail: toEmail, Subject: subject, Body: body}, nil)
}

// SendMessageToAll mails every student and returns how many were reached.
func (c *Client) SendMessageToAll(ctx context.Context, subject, body string) (int, error) {
	var out MessageResult
	if err := c.post(ctx, "send-message-all", "/messages/send-all", messageBody{Subject: subject, Body: body, SendToAll: true}, &out); err != nil {
		return 0, err
	}
	return out.RecipientCount, nil
}

func (c *Client) post(ctx context.Context, endpoint, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, path, in, out)
}

func (c *Client) do(ctx context.Context, method, endpoint, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.metrics.observe(endpoint, "error", time.Since(start))
		c.log.Warn("backend request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return fmt.Errorf("%s: %w: %w", endpoint, ErrTransport, err)
	}
	defer resp.Body.Close()
	c.metrics.observe(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w: read body: %w", endpoint, ErrTransport, err)
	}

	if resp.StatusCode >= 300 {
		se := &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(raw)}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			se.Message = msg.Message
		}
		c.log.Info("backend rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", se.Message))
		return se
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}
