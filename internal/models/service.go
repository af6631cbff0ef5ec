package models

// Service is an offering shown on the services page
type Service struct {
	Base
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon,omitempty"`
	Featured    bool   `json:"featured"`
}

// ServicePatch is a partial update to a Service
type ServicePatch struct {
	Title       *string `json:"title" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,min=1"`
	Icon        *string `json:"icon"`
	Featured    *bool   `json:"featured"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
}

// Apply merges the set fields into s
func (p *ServicePatch) Apply(s *Service) {
	setIf(&s.Title, p.Title)
	setIf(&s.Description, p.Description)
	setIf(&s.Icon, p.Icon)
	setIf(&s.Featured, p.Featured)
	setIf(&s.Order, p.Order)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
