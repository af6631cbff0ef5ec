package models

// Project categories
const (
	CategoryWebApp        = "Web App"
	CategoryCMS           = "CMS"
	CategoryCybersecurity = "Cybersecurity"
	CategoryCloud         = "Cloud"
)

// Project statuses
const (
	StatusDraft      = "Draft"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusArchived   = "Archived"
)

// ProjectCategories lists every valid category in display order
var ProjectCategories = []string{CategoryWebApp, CategoryCMS, CategoryCybersecurity, CategoryCloud}

// ProjectStatuses lists every valid status in workflow order
var ProjectStatuses = []string{StatusDraft, StatusInProgress, StatusCompleted, StatusArchived}

// Project represents a portfolio project
type Project struct {
	Base
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Category    string   `json:"category" validate:"oneof='Web App' CMS Cybersecurity Cloud"`
	Status      string   `json:"status" validate:"oneof=Draft 'In Progress' Completed Archived"`
	Featured    bool     `json:"featured"`
	Image       string   `json:"image,omitempty"`
	Images      []string `json:"images,omitempty"`
	Link        string   `json:"link,omitempty"`
	ClientName  string   `json:"clientName,omitempty"`
	ClientEmail string   `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Timeline    string   `json:"timeline,omitempty"`
	StartDate   *Date    `json:"startDate,omitempty"`
	EndDate     *Date    `json:"endDate,omitempty"`
}

// ProjectPatch is a partial update to a Project
type ProjectPatch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Description *string   `json:"description" validate:"omitempty,min=1"`
	Category    *string   `json:"category" validate:"omitempty,oneof='Web App' CMS Cybersecurity Cloud"`
	Status      *string   `json:"status" validate:"omitempty,oneof=Draft 'In Progress' Completed Archived"`
	Featured    *bool     `json:"featured"`
	Image       *string   `json:"image"`
	Images      *[]string `json:"images"`
	Link        *string   `json:"link"`
	ClientName  *string   `json:"clientName"`
	ClientEmail *string   `json:"clientEmail" validate:"omitempty,email"`
	Timeline    *string   `json:"timeline"`
	StartDate   *Date     `json:"startDate"`
	EndDate     *Date     `json:"endDate"`
	Order       *int      `json:"order" validate:"omitempty,gte=0"`
}

// Apply merges the set fields into p
func (pp *ProjectPatch) Apply(p *Project) {
	setIf(&p.Title, pp.Title)
	setIf(&p.Description, pp.Description)
	setIf(&p.Category, pp.Category)
	setIf(&p.Status, pp.Status)
	setIf(&p.Featured, pp.Featured)
	setIf(&p.Image, pp.Image)
	setIf(&p.Images, pp.Images)
	setIf(&p.Link, pp.Link)
	setIf(&p.ClientName, pp.ClientName)
	setIf(&p.ClientEmail, pp.ClientEmail)
	setIf(&p.Timeline, pp.Timeline)
	if pp.StartDate != nil {
		p.StartDate = pp.StartDate
	}
	if pp.EndDate != nil {
		p.EndDate = pp.EndDate
	}
	setIf(&p.Order, pp.Order)
}
