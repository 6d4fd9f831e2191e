package domain

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination mocks/mock_agency_repository.go -package mocks github.com/listingdeck/listingdeck/internal/domain AgencyRepository
//go:generate mockgen -destination mocks/mock_property_repository.go -package mocks github.com/listingdeck/listingdeck/internal/domain PropertyRepository
//go:generate mockgen -destination mocks/mock_agent_repository.go -package mocks github.com/listingdeck/listingdeck/internal/domain AgentRepository

// Agency is a real-estate agency, owner of brochure settings
type Agency struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	LogoURL          string    `json:"logo_url,omitempty"`
	Email            string    `json:"email,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Website          string    `json:"website,omitempty"`
	Address          string    `json:"address,omitempty"`
	BrochureSettings string    `json:"brochure_settings,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PropertyFeature is a free-form feature entry of a listing, e.g. "Pool: Heated"
type PropertyFeature struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Property is a listing
type Property struct {
	ID           string            `json:"id"`
	AgencyID     string            `json:"agency_id"`
	AgentID      *string           `json:"agent_id,omitempty"`
	Title        string            `json:"title"`
	Address      string            `json:"address"`
	Price        float64           `json:"price"`
	Description  string            `json:"description"`
	BuildYear    *int              `json:"build_year,omitempty"`
	LotSize      *float64          `json:"lot_size,omitempty"`
	InternalArea *float64          `json:"internal_area,omitempty"`
	LivingArea   *float64          `json:"living_area,omitempty"`
	Bedrooms     *int              `json:"bedrooms,omitempty"`
	Bathrooms    *int              `json:"bathrooms,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	Images       []string          `json:"images"`
	Features     []PropertyFeature `json:"features"`
}

// HasCoordinates reports whether both latitude and longitude are known
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// Agent is the listing agent shown on the contact page
type Agent struct {
	ID       string `json:"id"`
	AgencyID string `json:"agency_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// AgencyRepository defines the interface for agency-related database operations
type AgencyRepository interface {
	// GetAgency retrieves an agency by id
	GetAgency(ctx context.Context, id string) (*Agency, error)

	// UpdateBrochureSettings stores the serialized brochure settings of an agency
	UpdateBrochureSettings(ctx context.Context, id string, settings string) error
}

// PropertyRepository defines the interface for property-related database operations
type PropertyRepository interface {
	GetProperty(ctx context.Context, agencyID, id string) (*Property, error)
}

// AgentRepository defines the interface for agent-related database operations
type AgentRepository interface {
	GetAgent(ctx context.Context, agencyID, id string) (*Agent, error)
}

// BrochureData is everything a brochure is generated from
type BrochureData struct {
	Agency   *Agency
	Property *Property
	Agent    *Agent
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optionalFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// DataContextMap exposes the data under the project, agency and agent roots
// with the field names the editor binds to.
func (d BrochureData) DataContextMap() map[string]interface{} {
	data := map[string]interface{}{}

	if p := d.Property; p != nil {
		features := make([]map[string]interface{}, 0, len(p.Features))
		for _, f := range p.Features {
			features = append(features, map[string]interface{}{"label": f.Label, "value": f.Value})
		}
		images := p.Images
		if images == nil {
			images = []string{}
		}
		var mainImage interface{}
		if len(images) > 0 {
			mainImage = images[0]
		}
		data["project"] = map[string]interface{}{
			"id":           p.ID,
			"title":        p.Title,
			"address":      p.Address,
			"price":        p.Price,
			"description":  p.Description,
			"buildYear":    optionalInt(p.BuildYear),
			"lotSize":      optionalFloat(p.LotSize),
			"internalArea": optionalFloat(p.InternalArea),
			"livingArea":   optionalFloat(p.LivingArea),
			"bedrooms":     optionalInt(p.Bedrooms),
			"bathrooms":    optionalInt(p.Bathrooms),
			"latitude":     optionalFloat(p.Latitude),
			"longitude":    optionalFloat(p.Longitude),
			"mainImage":    mainImage,
			"images":       images,
			"features":     features,
		}
	}

	if a := d.Agency; a != nil {
		data["agency"] = map[string]interface{}{
			"id":      a.ID,
			"name":    a.Name,
			"logo":    a.LogoURL,
			"email":   a.Email,
			"phone":   a.Phone,
			"website": a.Website,
			"address": a.Address,
		}
	}

	if ag := d.Agent; ag != nil {
		data["agent"] = map[string]interface{}{
			"id":    ag.ID,
			"name":  ag.Name,
			"email": ag.Email,
			"phone": ag.Phone,
			"photo": ag.PhotoURL,
		}
	}

	return data
}

// BindableField is an entry of the editor field catalog
type BindableField struct {
	Path  string `json:"path"`
	Label string `json:"label"`
	Group string `json:"group"`
	Image bool   `json:"image,omitempty"`
}

// BindableFields lists the dot paths a block may bind to
func BindableFields() []BindableField {
	return []BindableField{
		{Path: "project.title", Label: "Property title", Group: "project"},
		{Path: "project.address", Label: "Address", Group: "project"},
		{Path: "project.price", Label: "Price", Group: "project"},
		{Path: "project.description", Label: "Description", Group: "project"},
		{Path: "project.buildYear", Label: "Build year", Group: "project"},
		{Path: "project.lotSize", Label: "Lot size", Group: "project"},
		{Path: "project.internalArea", Label: "Internal area", Group: "project"},
		{Path: "project.livingArea", Label: "Living area", Group: "project"},
		{Path: "project.bedrooms", Label: "Bedrooms", Group: "project"},
		{Path: "project.bathrooms", Label: "Bathrooms", Group: "project"},
		{Path: "project.mainImage", Label: "Main image", Group: "project", Image: true},
		{Path: "project.images", Label: "All images", Group: "project", Image: true},
		{Path: "agency.name", Label: "Agency name", Group: "agency"},
		{Path: "agency.logo", Label: "Agency logo", Group: "agency", Image: true},
		{Path: "agency.email", Label: "Agency email", Group: "agency"},
		{Path: "agency.phone", Label: "Agency phone", Group: "agency"},
		{Path: "agency.website", Label: "Agency website", Group: "agency"},
		{Path: "agency.address", Label: "Agency address", Group: "agency"},
		{Path: "agent.name", Label: "Agent name", Group: "agent"},
		{Path: "agent.email", Label: "Agent email", Group: "agent"},
		{Path: "agent.phone", Label: "Agent phone", Group: "agent"},
		{Path: "agent.photo", Label: "Agent photo", Group: "agent", Image: true},
	}
}

// Validate checks that the data needed to render a brochure is present
func (d BrochureData) Validate() error {
	if d.Agency == nil {
		return &ErrMissingBrochureData{Field: "agency"}
	}
	if d.Property == nil {
		return &ErrMissingBrochureData{Field: "property"}
	}
	if d.Property.AgencyID != "" && d.Property.AgencyID != d.Agency.ID {
		return &ErrMissingBrochureData{Field: "property", Reason: fmt.Sprintf("property %s does not belong to agency %s", d.Property.ID, d.Agency.ID)}
	}
	return nil
}
