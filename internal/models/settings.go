package models

import "time"

// DefaultTheme is used until an admin picks one
const DefaultTheme = "prism-dark"

// Settings is the site-wide configuration singleton
type Settings struct {
	Logo         string        `json:"logo,omitempty"`
	Favicon      string        `json:"favicon,omitempty"`
	Theme        string        `json:"theme,omitempty"`
	SEO          SEO           `json:"seo"`
	Social       Social        `json:"social"`
	Home         Home          `json:"home"`
	About        About         `json:"about"`
	Testimonials []Testimonial `json:"testimonials" validate:"dive"`
	Contact      Contact       `json:"contact"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// SEO holds page metadata
type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Social holds profile links
type Social struct {
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// Home holds the landing page copy
type Home struct {
	Headline   string `json:"headline,omitempty"`
	Tagline    string `json:"tagline,omitempty"`
	Background string `json:"background,omitempty"`
	CTAs       []CTA  `json:"ctas,omitempty"`
}

// CTA is a call-to-action button
type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// About holds the about page copy
type About struct {
	Mission string   `json:"mission,omitempty"`
	Vision  string   `json:"vision,omitempty"`
	Values  []string `json:"values,omitempty"`
}

// Testimonial is a client quote
type Testimonial struct {
	Name  string `json:"name" validate:"required"`
	Role  string `json:"role,omitempty"`
	Quote string `json:"quote" validate:"required"`
	Photo string `json:"photo,omitempty"`
}

// Contact holds public contact details
type Contact struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	MapEmbedURL string `json:"mapEmbedUrl,omitempty"`
}
