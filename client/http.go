package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims mirrors the identity fields embedded in the bearer token
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID uint     `json:"userId"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// wireUser is the user shape on the API wire, with the server's role
// name list instead of the client discriminator
type wireUser struct {
	ID    uint     `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func (u wireUser) toUser() User {
	return User{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  roleFromList(u.Roles),
	}
}

// roleFromList collapses the server's role list into the client's
// admin/user discriminator
func roleFromList(roles []string) string {
	for _, r := range roles {
		if r == "ROLE_ADMIN" {
			return RoleAdmin
		}
	}
	return RoleUser
}

// httpService forwards every call to the REST API
type httpService struct {
	baseURL    string
	httpClient *http.Client
	creds      CredentialStore

	mu    sync.Mutex
	token string
}

// NewHTTPService creates a Service talking to the API at baseURL.
// Passing a nil httpClient or credential store selects sane defaults.
func NewHTTPService(baseURL string, httpClient *http.Client, creds CredentialStore) Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if creds == nil {
		creds = NewMemoryCredentialStore()
	}
	s := &httpService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		creds:      creds,
	}
	if auth, err := creds.Load(); err == nil {
		s.token = auth.Token
	}
	return s
}

func (s *httpService) currentToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *httpService) setToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// doJSON performs one API round-trip with a JSON body and decodes the
// JSON response into out (which may be nil for empty responses)
func (s *httpService) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := s.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

// identityFromToken decodes the identity embedded in the bearer token
// without verifying the signature. Used as the degraded fallback when
// the profile fetch fails.
func identityFromToken(token string) (User, bool) {
	claims := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return User{}, false
	}
	if claims.Email == "" {
		return User{}, false
	}
	return User{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  strings.SplitN(claims.Email, "@", 2)[0],
		Role:  roleFromList(claims.Roles),
	}, true
}

func (s *httpService) Login(ctx context.Context, email, password string) (*Auth, error) {
	var loginResp struct {
		Token string   `json:"token"`
		User  wireUser `json:"user"`
	}
	err := s.doJSON(ctx, http.MethodPost, "/api/login_check",
		map[string]string{"email": email, "password": password}, &loginResp)
	if err != nil {
		return nil, err
	}
	s.setToken(loginResp.Token)

	// Confirm identity via the profile endpoint. A failed fetch after a
	// successful login degrades the identity instead of failing auth:
	// fall back to the token claims, then to the login email.
	user := loginResp.User.toUser()
	var profile wireUser
	if perr := s.doJSON(ctx, http.MethodGet, "/api/profile", nil, &profile); perr == nil {
		user = profile.toUser()
	} else if user.Email == "" {
		if fromToken, ok := identityFromToken(loginResp.Token); ok {
			user = fromToken
		} else {
			user = User{Email: email, Name: strings.SplitN(email, "@", 2)[0], Role: RoleUser}
		}
	}

	auth := &Auth{User: user, Token: loginResp.Token}
	if err := s.creds.Save(auth); err != nil {
		return nil, err
	}
	return auth, nil
}

func (s *httpService) Register(ctx context.Context, email, password, name string) (*User, error) {
	var resp struct {
		User wireUser `json:"user"`
	}
	err := s.doJSON(ctx, http.MethodPost, "/api/register",
		map[string]string{"email": email, "password": password, "name": name}, &resp)
	if err != nil {
		return nil, err
	}
	user := resp.User.toUser()
	return &user, nil
}

func (s *httpService) Logout(ctx context.Context) error {
	s.setToken("")
	return s.creds.Clear()
}

func (s *httpService) CurrentAuth(ctx context.Context) (*Auth, error) {
	stored, err := s.creds.Load()
	if err != nil {
		return nil, err
	}
	s.setToken(stored.Token)

	var profile wireUser
	perr := s.doJSON(ctx, http.MethodGet, "/api/profile", nil, &profile)
	if perr == nil {
		stored.User = profile.toUser()
		return stored, nil
	}
	if IsUnauthorized(perr) {
		s.setToken("")
		_ = s.creds.Clear()
		return nil, perr
	}
	// Transient failure: keep the stored (possibly stale) identity
	if fromToken, ok := identityFromToken(stored.Token); ok {
		stored.User = fromToken
	}
	return stored, nil
}

// mailPayload flattens a MailInput into the wire shape. Dates travel
// as ISO strings; explicit clears travel as JSON null.
func mailPayload(input MailInput) map[string]interface{} {
	payload := make(map[string]interface{})
	setStr := func(key string, v *string) {
		if v != nil {
			payload[key] = *v
		}
	}
	setStr("type", input.Type)
	setStr("status", input.Status)
	setStr("sender", input.Sender)
	setStr("recipient", input.Recipient)
	setStr("subject", input.Subject)
	setStr("actionRequired", input.ActionRequired)
	setStr("notes", input.Notes)
	if input.ReceivedDate != nil {
		payload["receivedDate"] = input.ReceivedDate.Format(time.RFC3339)
	}
	if input.SentDate != nil {
		payload["sentDate"] = input.SentDate.Format(time.RFC3339)
	}
	if input.DueDate != nil {
		payload["dueDate"] = input.DueDate.Format(time.RFC3339)
	}
	if input.ClearSentDate {
		payload["sentDate"] = nil
	}
	if input.ClearDueDate {
		payload["dueDate"] = nil
	}
	return payload
}

func listQuery(opts ListOptions) string {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprintf("%d", opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Sender != "" {
		q.Set("sender", opts.Sender)
	}
	if opts.Recipient != "" {
		q.Set("recipient", opts.Recipient)
	}
	if opts.DateFrom != nil {
		q.Set("dateFrom", opts.DateFrom.Format("2006-01-02"))
	}
	if opts.DateTo != nil {
		q.Set("dateTo", opts.DateTo.Format("2006-01-02"))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (s *httpService) ListMails(ctx context.Context, opts ListOptions) (*MailPage, error) {
	var page MailPage
	if err := s.doJSON(ctx, http.MethodGet, "/api/mails"+listQuery(opts), nil, &page); err != nil {
		return nil, err
	}
	if page.Mails == nil {
		page.Mails = []Mail{}
	}
	return &page, nil
}

func (s *httpService) GetMail(ctx context.Context, id uint) (*Mail, error) {
	var m Mail
	if err := s.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/mails/%d", id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *httpService) CreateMail(ctx context.Context, input MailInput) (*Mail, error) {
	var m Mail
	if err := s.doJSON(ctx, http.MethodPost, "/api/mails", mailPayload(input), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *httpService) UpdateMail(ctx context.Context, id uint, input MailInput) (*Mail, error) {
	var m Mail
	if err := s.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/mails/%d", id), mailPayload(input), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *httpService) DeleteMail(ctx context.Context, id uint) error {
	return s.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/mails/%d", id), nil, nil)
}

func (s *httpService) SearchMails(ctx context.Context, query string) ([]Mail, error) {
	page, err := s.ListMails(ctx, ListOptions{Search: query, Limit: 100})
	if err != nil {
		return nil, err
	}
	return page.Mails, nil
}

func (s *httpService) UploadAttachment(ctx context.Context, mailID uint, filename string, r io.Reader) (*Attachment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/mails/%d/attachments", s.baseURL, mailID), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := s.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}

	var att Attachment
	if err := json.NewDecoder(resp.Body).Decode(&att); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &att, nil
}
