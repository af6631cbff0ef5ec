package services

import (
	"cmp"
	"context"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"prismtech.dev/internal/models"
)

const (
	dashboardDays   = 14
	dashboardRecent = 5
)

// Counts holds collection sizes
type Counts struct {
	Services int `json:"services"`
	Projects int `json:"projects"`
	Pricing  int `json:"pricing"`
	Team     int `json:"team"`
	Messages int `json:"messages"`
	Unread   int `json:"unread"`
}

// DayCount is the number of messages received on one UTC day
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CategoryCount is the number of projects in one category
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Recent holds the latest updates per type
type Recent struct {
	Messages []models.Message `json:"messages"`
	Projects []models.Project `json:"projects"`
	Services []models.Service `json:"services"`
}

// Stats is the admin dashboard summary
type Stats struct {
	Counts             Counts          `json:"counts"`
	MessagesPerDay     []DayCount      `json:"messagesPerDay"`
	ProjectsByCategory []CategoryCount `json:"projectsByCategory"`
	Recent             Recent          `json:"recent"`
}

// DashboardService aggregates stats across collections
type DashboardService struct {
	content  *ContentService
	messages *MessageService
	now      func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(content *ContentService, messages *MessageService) *DashboardService {
	return &DashboardService{
		content:  content,
		messages: messages,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Stats runs the independent reads concurrently and assembles the summary
func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var projects []models.Project
	var messages []models.Message

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.Counts.Services, err = s.content.Services.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.Counts.Pricing, err = s.content.Pricing.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.Counts.Team, err = s.content.Team.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.content.Projects.List(ctx)
		return err
	})
	g.Go(func() (err error) {
		messages, err = s.messages.Filter(ctx, MessageQuery{})
		return err
	})
	g.Go(func() (err error) {
		st.Recent.Messages, err = s.messages.Recent(ctx, dashboardRecent)
		return err
	})
	g.Go(func() (err error) {
		st.Recent.Projects, err = s.content.Projects.Recent(ctx, dashboardRecent)
		return err
	})
	g.Go(func() (err error) {
		st.Recent.Services, err = s.content.Services.Recent(ctx, dashboardRecent)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st.Counts.Projects = len(projects)
	st.Counts.Messages = len(messages)
	for _, m := range messages {
		if m.Status == models.MessageUnread {
			st.Counts.Unread++
		}
	}
	st.MessagesPerDay = perDay(messages, s.now())
	st.ProjectsByCategory = byCategory(projects)
	return st, nil
}

// perDay buckets messages from the last dashboardDays UTC days, oldest
// first. Days without messages are omitted.
func perDay(messages []models.Message, now time.Time) []DayCount {
	today := now.UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(dashboardDays - 1))

	counts := map[string]int{}
	for _, m := range messages {
		if m.CreatedAt.Before(since) {
			continue
		}
		counts[m.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	out := make([]DayCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, DayCount{Date: day, Count: n})
	}
	slices.SortFunc(out, func(a, b DayCount) int { return cmp.Compare(a.Date, b.Date) })
	return out
}

// byCategory counts projects per category, largest first
func byCategory(projects []models.Project) []CategoryCount {
	counts := map[string]int{}
	for _, p := range projects {
		counts[p.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return out
}
