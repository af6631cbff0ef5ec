package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
	"prismtech.dev/internal/validation"
)

// MessagesCollection stores contact form submissions
const MessagesCollection = "messages"

// Message listing page sizes
const (
	DefaultMessagePageSize = 50
	MaxMessagePageSize     = 200
)

// MessageQuery filters the inbox. Start and End accept a calendar date or
// an RFC3339 timestamp; a calendar End includes that whole day.
type MessageQuery struct {
	Status   string
	Start    string
	End      string
	Page     int
	PageSize int
}

// MessageService handles the contact inbox
type MessageService struct {
	backend store.Backend
	now     func() time.Time
	newID   func() string
}

// NewMessageService creates a new MessageService
func NewMessageService(backend store.Backend) *MessageService {
	return &MessageService{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Create stores a new unread message
func (s *MessageService) Create(ctx context.Context, m models.Message) (models.Message, error) {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Status = models.MessageUnread
	if err := validation.Struct(&m); err != nil {
		return m, err
	}

	m.ID = s.newID()
	m.CreatedAt = s.now()
	m.UpdatedAt = m.CreatedAt
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		return store.PutJSON(tx, MessagesCollection, m.ID, &m)
	})
	if err != nil {
		return m, fmt.Errorf("failed to store message: %w", err)
	}
	return m, nil
}

// List returns one page of messages matching q, newest first
func (s *MessageService) List(ctx context.Context, q MessageQuery) (models.MessagePage, error) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = DefaultMessagePageSize
	case size > MaxMessagePageSize:
		size = MaxMessagePageSize
	}

	matched, err := s.Filter(ctx, q)
	if err != nil {
		return models.MessagePage{}, err
	}

	items := []models.Message{}
	if start := (page - 1) * size; start < len(matched) {
		items = matched[start:min(start+size, len(matched))]
	}
	return models.MessagePage{Items: items, Total: len(matched), Page: page, PageSize: size}, nil
}

// Filter returns every message matching q's status and date range,
// newest first. Paging fields are ignored.
func (s *MessageService) Filter(ctx context.Context, q MessageQuery) ([]models.Message, error) {
	keep, err := q.matcher()
	if err != nil {
		return nil, err
	}

	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, m := range all {
		if keep(&m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Count returns the number of stored messages
func (s *MessageService) Count(ctx context.Context) (int, error) {
	var n int
	err := s.backend.View(ctx, func(tx store.Tx) error {
		recs, err := tx.All(MessagesCollection)
		n = len(recs)
		return err
	})
	return n, err
}

// Recent returns up to limit messages, most recently updated first
func (s *MessageService) Recent(ctx context.Context, limit int) ([]models.Message, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.Message) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// MarkRead sets one message to read
func (s *MessageService) MarkRead(ctx context.Context, id string) (models.Message, error) {
	var m models.Message
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		var err error
		m, err = s.setStatus(tx, id, models.MessageRead)
		return err
	})
	return m, err
}

// BulkStatus sets status on every message in ids and returns how many
// were written. Unknown ids are skipped.
func (s *MessageService) BulkStatus(ctx context.Context, ids []string, status string) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Fail("ids", "is required")
	}
	if err := validation.Var("status", status, "required,oneof=unread read"); err != nil {
		return 0, err
	}

	var modified int
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		for _, id := range dedup(ids) {
			_, err := s.setStatus(tx, id, status)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			modified++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return modified, nil
}

// BulkDelete removes every message in ids and returns how many existed
func (s *MessageService) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, validation.Fail("ids", "is required")
	}

	var deleted int
	err := s.backend.Update(ctx, func(tx store.Tx) error {
		for _, id := range dedup(ids) {
			err := tx.Delete(MessagesCollection, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Export writes every message matching q as CSV
func (s *MessageService) Export(ctx context.Context, q MessageQuery, w io.Writer) error {
	messages, err := s.Filter(ctx, q)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Email", "Status", "Created At", "Message"}); err != nil {
		return err
	}
	for _, m := range messages {
		row := []string{
			flatten.Replace(m.Name),
			m.Email,
			m.Status,
			m.CreatedAt.Format(time.RFC3339),
			flatten.Replace(m.Message),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *MessageService) all(ctx context.Context) ([]models.Message, error) {
	var all []models.Message
	err := s.backend.View(ctx, func(tx store.Tx) error {
		var err error
		all, err = store.AllJSON[models.Message](tx, MessagesCollection)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.Message) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return all, nil
}

func (s *MessageService) setStatus(tx store.Tx, id, status string) (models.Message, error) {
	m, err := store.GetJSON[models.Message](tx, MessagesCollection, id)
	if err != nil {
		return m, err
	}
	m.Status = status
	m.UpdatedAt = s.now()
	return m, store.PutJSON(tx, MessagesCollection, id, &m)
}

// matcher compiles q into a predicate
func (q MessageQuery) matcher() (func(m *models.Message) bool, error) {
	status := q.Status
	if status == "All" {
		status = ""
	}
	if status != "" {
		if err := validation.Var("status", status, "oneof=unread read"); err != nil {
			return nil, err
		}
	}

	var from, until time.Time
	var err error
	if q.Start != "" {
		if from, err = models.ParseDate(q.Start); err != nil {
			return nil, validation.Fail("start", "must be a date (YYYY-MM-DD) or RFC3339 timestamp")
		}
	}
	if q.End != "" {
		if until, err = models.ParseDate(q.End); err != nil {
			return nil, validation.Fail("end", "must be a date (YYYY-MM-DD) or RFC3339 timestamp")
		}
		if len(q.End) == len(time.DateOnly) {
			until = until.Add(24*time.Hour - time.Nanosecond)
		}
	}

	return func(m *models.Message) bool {
		if status != "" && m.Status != status {
			return false
		}
		if !from.IsZero() && m.CreatedAt.Before(from) {
			return false
		}
		if !until.IsZero() && m.CreatedAt.After(until) {
			return false
		}
		return true
	}, nil
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
