package models

// Billing periods
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
	BillingOneTime = "one-time"
	BillingCustom  = "custom"
)

// PricingTier is one column of the pricing table
type PricingTier struct {
	Base
	Name          string    `json:"name" validate:"required"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price" validate:"gte=0"`
	Currency      string    `json:"currency"`
	BillingPeriod string    `json:"billingPeriod" validate:"oneof=monthly yearly one-time custom"`
	Features      []Feature `json:"features" validate:"dive"`
	Popular       bool      `json:"popular"`
	Featured      bool      `json:"featured"`
	Color         string    `json:"color,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	ButtonText    string    `json:"buttonText,omitempty"`
	ButtonLink    string    `json:"buttonLink,omitempty"`
	Limitations   []string  `json:"limitations,omitempty"`
	AddOns        []AddOn   `json:"addOns,omitempty" validate:"dive"`
}

// Feature is a line in a tier's feature list
type Feature struct {
	Text      string `json:"text" validate:"required"`
	Included  bool   `json:"included"`
	Highlight bool   `json:"highlight"`
}

// AddOn is an optional extra sold with a tier
type AddOn struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description,omitempty"`
}

// PricingTierPatch is a partial update to a PricingTier
type PricingTierPatch struct {
	Name          *string    `json:"name" validate:"omitempty,min=1"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price" validate:"omitempty,gte=0"`
	Currency      *string    `json:"currency" validate:"omitempty,min=1"`
	BillingPeriod *string    `json:"billingPeriod" validate:"omitempty,oneof=monthly yearly one-time custom"`
	Features      *[]Feature `json:"features" validate:"omitempty,dive"`
	Popular       *bool      `json:"popular"`
	Featured      *bool      `json:"featured"`
	Color         *string    `json:"color"`
	Icon          *string    `json:"icon"`
	ButtonText    *string    `json:"buttonText"`
	ButtonLink    *string    `json:"buttonLink"`
	Limitations   *[]string  `json:"limitations"`
	AddOns        *[]AddOn   `json:"addOns" validate:"omitempty,dive"`
	Order         *int       `json:"order" validate:"omitempty,gte=0"`
}

// Apply merges the set fields into t
func (p *PricingTierPatch) Apply(t *PricingTier) {
	setIf(&t.Name, p.Name)
	setIf(&t.Description, p.Description)
	setIf(&t.Price, p.Price)
	setIf(&t.Currency, p.Currency)
	setIf(&t.BillingPeriod, p.BillingPeriod)
	setIf(&t.Features, p.Features)
	setIf(&t.Popular, p.Popular)
	setIf(&t.Featured, p.Featured)
	setIf(&t.Color, p.Color)
	setIf(&t.Icon, p.Icon)
	setIf(&t.ButtonText, p.ButtonText)
	setIf(&t.ButtonLink, p.ButtonLink)
	setIf(&t.Limitations, p.Limitations)
	setIf(&t.AddOns, p.AddOns)
	setIf(&t.Order, p.Order)
}
