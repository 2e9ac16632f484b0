package client

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore holds mail records in process memory. Each instance is
// independent, so tests can construct isolated stores. Nothing here
// survives the process.
type MemoryStore struct {
	mu               sync.Mutex
	mails            map[uint]*Mail
	nextID           uint
	nextAttachmentID uint
}

// NewMemoryStore creates a store seeded with the given records. Seed
// IDs are reassigned so they stay unique within the store.
func NewMemoryStore(seed []Mail) *MemoryStore {
	s := &MemoryStore{
		mails:            make(map[uint]*Mail),
		nextID:           1,
		nextAttachmentID: 1,
	}
	for i := range seed {
		m := seed[i]
		m.ID = s.nextID
		s.nextID++
		if m.Attachments == nil {
			m.Attachments = []Attachment{}
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now()
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = m.CreatedAt
		}
		s.mails[m.ID] = &m
	}
	return s
}

// cloneMail copies a record including its attachment slice, so callers
// can never write through to the store's backing arrays
func cloneMail(m *Mail) Mail {
	copied := *m
	copied.Attachments = make([]Attachment, len(m.Attachments))
	copy(copied.Attachments, m.Attachments)
	return copied
}

func (s *MemoryStore) snapshot() []Mail {
	out := make([]Mail, 0, len(s.mails))
	for _, m := range s.mails {
		out = append(out, cloneMail(m))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReceivedDate.After(out[j].ReceivedDate)
	})
	return out
}

// mockService simulates the API against a MemoryStore. An optional
// latency is applied to every call to mimic network round-trips.
type mockService struct {
	store   *MemoryStore
	creds   CredentialStore
	latency time.Duration
}

// NewMockService creates a Service backed by the given in-memory store
func NewMockService(store *MemoryStore, latency time.Duration) Service {
	if store == nil {
		store = NewMemoryStore(nil)
	}
	return &mockService{
		store:   store,
		creds:   NewMemoryCredentialStore(),
		latency: latency,
	}
}

func (s *mockService) delay(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *mockService) Login(ctx context.Context, email, password string) (*Auth, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if email == "" || password == "" {
		return nil, &APIError{Status: 401, Code: "UNAUTHORIZED", Message: "invalid credentials"}
	}
	role := RoleUser
	if strings.HasPrefix(email, "admin") {
		role = RoleAdmin
	}
	auth := &Auth{
		User: User{
			ID:    1,
			Email: email,
			Name:  strings.SplitN(email, "@", 2)[0],
			Role:  role,
		},
		Token: fmt.Sprintf("mock-token-%d", time.Now().UnixNano()),
	}
	if err := s.creds.Save(auth); err != nil {
		return nil, err
	}
	return auth, nil
}

func (s *mockService) Register(ctx context.Context, email, password, name string) (*User, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if email == "" || password == "" || name == "" {
		return nil, &APIError{Status: 400, Code: "INVALID_INPUT", Message: "missing required fields"}
	}
	return &User{ID: 1, Email: email, Name: name, Role: RoleUser}, nil
}

func (s *mockService) Logout(ctx context.Context) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	return s.creds.Clear()
}

func (s *mockService) CurrentAuth(ctx context.Context) (*Auth, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	return s.creds.Load()
}

func matchesFilter(m *Mail, opts ListOptions) bool {
	if opts.Type != "" && m.Type != opts.Type {
		return false
	}
	if opts.Status != "" && m.Status != opts.Status {
		return false
	}
	if opts.Sender != "" && !strings.Contains(strings.ToLower(m.Sender), strings.ToLower(opts.Sender)) {
		return false
	}
	if opts.Recipient != "" && !strings.Contains(strings.ToLower(m.Recipient), strings.ToLower(opts.Recipient)) {
		return false
	}
	if opts.DateFrom != nil && m.ReceivedDate.Before(*opts.DateFrom) {
		return false
	}
	if opts.DateTo != nil && m.ReceivedDate.After(*opts.DateTo) {
		return false
	}
	if opts.Search != "" {
		q := strings.ToLower(opts.Search)
		if !strings.Contains(strings.ToLower(m.Subject), q) &&
			!strings.Contains(strings.ToLower(m.Sender), q) &&
			!strings.Contains(strings.ToLower(m.Recipient), q) &&
			!strings.Contains(strings.ToLower(m.Notes), q) {
			return false
		}
	}
	return true
}

func (s *mockService) ListMails(ctx context.Context, opts ListOptions) (*MailPage, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit < 1 {
		opts.Limit = 20
	}

	s.store.mu.Lock()
	all := s.store.snapshot()
	s.store.mu.Unlock()

	filtered := make([]Mail, 0, len(all))
	for i := range all {
		if matchesFilter(&all[i], opts) {
			filtered = append(filtered, all[i])
		}
	}

	total := int64(len(filtered))
	start := (opts.Page - 1) * opts.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := start + opts.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	pages := int(total) / opts.Limit
	if int(total)%opts.Limit != 0 {
		pages++
	}

	return &MailPage{
		Mails: filtered[start:end],
		Total: total,
		Page:  opts.Page,
		Limit: opts.Limit,
		Pages: pages,
	}, nil
}

func (s *mockService) GetMail(ctx context.Context, id uint) (*Mail, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	m, ok := s.store.mails[id]
	if !ok {
		return nil, &APIError{Status: 404, Code: "NOT_FOUND", Message: "mail not found"}
	}
	copied := cloneMail(m)
	return &copied, nil
}

func applyInput(m *Mail, input MailInput) {
	if input.Type != nil {
		m.Type = *input.Type
	}
	if input.Status != nil {
		m.Status = *input.Status
	}
	if input.Sender != nil {
		m.Sender = *input.Sender
	}
	if input.Recipient != nil {
		m.Recipient = *input.Recipient
	}
	if input.Subject != nil {
		m.Subject = *input.Subject
	}
	if input.ReceivedDate != nil {
		m.ReceivedDate = *input.ReceivedDate
	}
	if input.SentDate != nil {
		m.SentDate = input.SentDate
	}
	if input.DueDate != nil {
		m.DueDate = input.DueDate
	}
	if input.ActionRequired != nil {
		m.ActionRequired = *input.ActionRequired
	}
	if input.Notes != nil {
		m.Notes = *input.Notes
	}
	if input.ClearSentDate {
		m.SentDate = nil
	}
	if input.ClearDueDate {
		m.DueDate = nil
	}
}

func (s *mockService) CreateMail(ctx context.Context, input MailInput) (*Mail, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	if input.Type == nil || input.Sender == nil || input.Recipient == nil ||
		input.Subject == nil || input.ReceivedDate == nil {
		return nil, &APIError{Status: 400, Code: "INVALID_INPUT", Message: "missing required fields"}
	}

	now := time.Now()
	m := &Mail{
		Status:      "pending",
		Attachments: []Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyInput(m, input)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	m.ID = s.store.nextID
	s.store.nextID++
	s.store.mails[m.ID] = m

	copied := cloneMail(m)
	return &copied, nil
}

func (s *mockService) UpdateMail(ctx context.Context, id uint, input MailInput) (*Mail, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	m, ok := s.store.mails[id]
	if !ok {
		return nil, &APIError{Status: 404, Code: "NOT_FOUND", Message: "mail not found"}
	}
	applyInput(m, input)
	m.UpdatedAt = time.Now()

	copied := cloneMail(m)
	return &copied, nil
}

func (s *mockService) DeleteMail(ctx context.Context, id uint) error {
	if err := s.delay(ctx); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.mails[id]; !ok {
		return &APIError{Status: 404, Code: "NOT_FOUND", Message: "mail not found"}
	}
	delete(s.store.mails, id)
	return nil
}

func (s *mockService) SearchMails(ctx context.Context, query string) ([]Mail, error) {
	page, err := s.ListMails(ctx, ListOptions{Search: query, Limit: 100})
	if err != nil {
		return nil, err
	}
	return page.Mails, nil
}

func (s *mockService) UploadAttachment(ctx context.Context, mailID uint, filename string, r io.Reader) (*Attachment, error) {
	if err := s.delay(ctx); err != nil {
		return nil, err
	}
	size, err := io.Copy(io.Discard, r)
	if err != nil {
		return nil, err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	m, ok := s.store.mails[mailID]
	if !ok {
		return nil, &APIError{Status: 404, Code: "NOT_FOUND", Message: "mail not found"}
	}

	att := Attachment{
		ID:       s.store.nextAttachmentID,
		Name:     filename,
		URL:      fmt.Sprintf("/api/attachments/%d", s.store.nextAttachmentID),
		Size:     size,
		MimeType: "application/octet-stream",
	}
	s.store.nextAttachmentID++
	m.Attachments = append(m.Attachments, att)
	return &att, nil
}
