package services

import (
	"cmp"

	"prismtech.dev/internal/collection"
	"prismtech.dev/internal/models"
	"prismtech.dev/internal/store"
)

// Collection names, also used as URL segments
const (
	ServicesCollection = "services"
	ProjectsCollection = "projects"
	PricingCollection  = "pricing"
	TeamCollection     = "team"
)

// Ordered content stores
type (
	ServiceStore     = collection.Store[models.Service, *models.Service]
	ProjectStore     = collection.Store[models.Project, *models.Project]
	PricingTierStore = collection.Store[models.PricingTier, *models.PricingTier]
	TeamMemberStore  = collection.Store[models.TeamMember, *models.TeamMember]
)

// ContentService groups the four ordered collections
type ContentService struct {
	Services *ServiceStore
	Projects *ProjectStore
	Pricing  *PricingTierStore
	Team     *TeamMemberStore
}

// NewContentService creates the collection stores on one backend
func NewContentService(backend store.Backend) *ContentService {
	return &ContentService{
		Services: collection.New[models.Service](backend, ServiceSchema()),
		Projects: collection.New[models.Project](backend, ProjectSchema()),
		Pricing:  collection.New[models.PricingTier](backend, PricingTierSchema()),
		Team:     collection.New[models.TeamMember](backend, TeamMemberSchema()),
	}
}

// ServiceSchema describes the services collection
func ServiceSchema() collection.Schema[models.Service] {
	return collection.Schema[models.Service]{
		Name:     ServicesCollection,
		NewPatch: func() collection.Patch[models.Service] { return &models.ServicePatch{} },
		Fields: collection.Fields[models.Service]{
			Featured: func(s *models.Service) bool { return s.Featured },
			Text:     func(s *models.Service) []string { return []string{s.Title, s.Description} },
		},
		PageSize: 12,
	}
}

// ProjectSchema describes the projects collection
func ProjectSchema() collection.Schema[models.Project] {
	return collection.Schema[models.Project]{
		Name: ProjectsCollection,
		Defaults: func(p *models.Project) {
			if p.Status == "" {
				p.Status = models.StatusDraft
			}
		},
		NewPatch: func() collection.Patch[models.Project] { return &models.ProjectPatch{} },
		Fields: collection.Fields[models.Project]{
			Category: func(p *models.Project) string { return p.Category },
			Status:   func(p *models.Project) string { return p.Status },
			Featured: func(p *models.Project) bool { return p.Featured },
			Text: func(p *models.Project) []string {
				return []string{p.Title, p.Description, p.ClientName}
			},
		},
		PageSize: 6,
	}
}

// PricingTierSchema describes the pricing collection. Tiers sharing an
// order are shown cheapest first.
func PricingTierSchema() collection.Schema[models.PricingTier] {
	return collection.Schema[models.PricingTier]{
		Name: PricingCollection,
		Compare: func(a, b *models.PricingTier) int {
			return cmp.Compare(a.Price, b.Price)
		},
		Defaults: func(t *models.PricingTier) {
			if t.Currency == "" {
				t.Currency = "USD"
			}
			if t.BillingPeriod == "" {
				t.BillingPeriod = models.BillingMonthly
			}
			if t.Color == "" {
				t.Color = "#8b5cf6"
			}
			if t.ButtonText == "" {
				t.ButtonText = "Get Started"
			}
		},
		NewPatch: func() collection.Patch[models.PricingTier] { return &models.PricingTierPatch{} },
		Fields: collection.Fields[models.PricingTier]{
			Status:   func(t *models.PricingTier) string { return t.BillingPeriod },
			Featured: func(t *models.PricingTier) bool { return t.Featured },
			Text:     func(t *models.PricingTier) []string { return []string{t.Name, t.Description} },
		},
		PageSize: 12,
	}
}

// TeamMemberSchema describes the team collection
func TeamMemberSchema() collection.Schema[models.TeamMember] {
	return collection.Schema[models.TeamMember]{
		Name:     TeamCollection,
		NewPatch: func() collection.Patch[models.TeamMember] { return &models.TeamMemberPatch{} },
		Fields: collection.Fields[models.TeamMember]{
			Text: func(m *models.TeamMember) []string { return []string{m.Name, m.Role, m.Bio} },
		},
		PageSize: 12,
	}
}
