package models

// TeamMember is a person shown on the about page
type TeamMember struct {
	Base
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role" validate:"required"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// TeamMemberPatch is a partial update to a TeamMember
type TeamMemberPatch struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Role  *string `json:"role" validate:"omitempty,min=1"`
	Bio   *string `json:"bio"`
	Photo *string `json:"photo"`
	Order *int    `json:"order" validate:"omitempty,gte=0"`
}

// Apply merges the set fields into m
func (p *TeamMemberPatch) Apply(m *TeamMember) {
	setIf(&m.Name, p.Name)
	setIf(&m.Role, p.Role)
	setIf(&m.Bio, p.Bio)
	setIf(&m.Photo, p.Photo)
	setIf(&m.Order, p.Order)
}
