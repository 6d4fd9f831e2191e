package domain

import (
	"context"
	"fmt"
	"net/url"

	"github.com/asaskevich/govalidator"

	"github.com/listingdeck/listingdeck/pkg/blocktree"
)

//go:generate mockgen -destination mocks/mock_brochure_service.go -package mocks github.com/listingdeck/listingdeck/internal/domain BrochureService
//go:generate mockgen -destination mocks/mock_image_url_resolver.go -package mocks github.com/listingdeck/listingdeck/internal/domain ImageURLResolver

// RenderBackend identifies how a document was produced
type RenderBackend string

const (
	// RenderBackendVector draws system pages directly into a PDF
	RenderBackendVector RenderBackend = "vector"
	// RenderBackendRaster prints custom pages through a headless browser
	RenderBackendRaster RenderBackend = "raster"
	// RenderBackendHTML is a standalone HTML export
	RenderBackendHTML RenderBackend = "html"
)

// ImageURLResolver turns a storage identifier into a fetchable URL
type ImageURLResolver interface {
	ResolveURL(ctx context.Context, identifier string) (string, error)
}

// BrochureService provides brochure settings, editing and generation
type BrochureService interface {
	// GetSettings returns the assembled settings of an agency, defaults included
	GetSettings(ctx context.Context, agencyID string) (*BrochureSettings, error)

	// SaveSettings validates and persists the settings of an agency
	SaveSettings(ctx context.Context, agencyID string, settings *BrochureSettings) error

	// Generate renders the brochure of a property as a PDF
	Generate(ctx context.Context, req *GenerateRequest) (*Artifact, error)

	// ExportHTML renders bound custom pages as a standalone HTML document
	ExportHTML(ctx context.Context, req *ExportHTMLRequest) (*Artifact, error)

	// ApplyEditorOperation applies one structural edit to a posted tree
	ApplyEditorOperation(ctx context.Context, req *EditorOperationRequest) (*EditorState, error)

	// BindableFields lists the dot paths blocks may bind to
	BindableFields() []BindableField
}

// Artifact is a generated file streamed back to the caller
type Artifact struct {
	Filename    string        `json:"filename"`
	ContentType string        `json:"content_type"`
	Backend     RenderBackend `json:"backend"`
	Data        []byte        `json:"-"`
}

// GetSettingsRequest is the query of brochure.settings
type GetSettingsRequest struct {
	AgencyID string `json:"agency_id"`
}

func (r *GetSettingsRequest) FromURLParams(queryParams url.Values) (err error) {
	r.AgencyID = queryParams.Get("agency_id")

	if r.AgencyID == "" {
		return fmt.Errorf("invalid get settings request: agency_id is required")
	}
	if len(r.AgencyID) > 64 {
		return fmt.Errorf("invalid get settings request: agency_id length must be between 1 and 64")
	}

	return nil
}

// SaveSettingsRequest is the body of brochure.saveSettings
type SaveSettingsRequest struct {
	AgencyID string           `json:"agency_id"`
	Settings BrochureSettings `json:"settings"`
}

func (r *SaveSettingsRequest) Validate() error {
	if r.AgencyID == "" {
		return fmt.Errorf("invalid save settings request: agency_id is required")
	}
	if len(r.AgencyID) > 64 {
		return fmt.Errorf("invalid save settings request: agency_id length must be between 1 and 64")
	}
	if r.Settings.Pages == nil {
		return fmt.Errorf("invalid save settings request: settings.pages is required")
	}
	return nil
}

// GenerateRequest is the body of brochure.generate
type GenerateRequest struct {
	AgencyID   string `json:"agency_id"`
	PropertyID string `json:"property_id"`
	AgentID    string `json:"agent_id,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	if r.AgencyID == "" {
		return fmt.Errorf("invalid generate request: agency_id is required")
	}
	if r.PropertyID == "" {
		return fmt.Errorf("invalid generate request: property_id is required")
	}
	if len(r.AgencyID) > 64 || len(r.PropertyID) > 64 || len(r.AgentID) > 64 {
		return fmt.Errorf("invalid generate request: ids must be at most 64 characters")
	}
	return nil
}

// ExportHTMLRequest is the body of brochure.exportHTML. When Blocks is nil
// every enabled custom page of the agency settings is exported.
type ExportHTMLRequest struct {
	AgencyID   string            `json:"agency_id"`
	PropertyID string            `json:"property_id"`
	AgentID    string            `json:"agent_id,omitempty"`
	Blocks     []blocktree.Block `json:"blocks,omitempty"`
}

func (r *ExportHTMLRequest) Validate() error {
	if r.AgencyID == "" {
		return fmt.Errorf("invalid export html request: agency_id is required")
	}
	if r.PropertyID == "" {
		return fmt.Errorf("invalid export html request: property_id is required")
	}
	return nil
}

// EditorOperation names a structural edit
type EditorOperation string

const (
	EditorOperationAdd       EditorOperation = "add"
	EditorOperationUpdate    EditorOperation = "update"
	EditorOperationDelete    EditorOperation = "delete"
	EditorOperationDuplicate EditorOperation = "duplicate"
	EditorOperationSelect    EditorOperation = "select"
	EditorOperationMove      EditorOperation = "move"
	EditorOperationDrop      EditorOperation = "drop"
)

var editorOperations = []string{
	string(EditorOperationAdd),
	string(EditorOperationUpdate),
	string(EditorOperationDelete),
	string(EditorOperationDuplicate),
	string(EditorOperationSelect),
	string(EditorOperationMove),
	string(EditorOperationDrop),
}

// EditorOperationRequest carries a tree, the current selection and one edit
type EditorOperationRequest struct {
	Blocks     []blocktree.Block      `json:"blocks"`
	SelectedID string                 `json:"selected_id,omitempty"`
	Operation  EditorOperation        `json:"operation"`
	BlockID    string                 `json:"block_id,omitempty"`
	BlockType  blocktree.BlockType    `json:"block_type,omitempty"`
	Update     *blocktree.BlockUpdate `json:"update,omitempty"`
	Target     *blocktree.DropTarget  `json:"target,omitempty"`
}

func (r *EditorOperationRequest) Validate() error {
	if !govalidator.IsIn(string(r.Operation), editorOperations...) {
		return fmt.Errorf("invalid editor request: unknown operation %q", r.Operation)
	}

	switch r.Operation {
	case EditorOperationAdd:
		if r.BlockType == "" {
			return fmt.Errorf("invalid editor request: block_type is required for add")
		}
	case EditorOperationUpdate:
		if r.BlockID == "" || r.Update == nil {
			return fmt.Errorf("invalid editor request: block_id and update are required for update")
		}
	case EditorOperationDelete, EditorOperationDuplicate:
		if r.BlockID == "" {
			return fmt.Errorf("invalid editor request: block_id is required for %s", r.Operation)
		}
	case EditorOperationMove:
		if r.BlockID == "" || r.Target == nil {
			return fmt.Errorf("invalid editor request: block_id and target are required for move")
		}
	case EditorOperationDrop:
		if r.BlockType == "" || r.Target == nil {
			return fmt.Errorf("invalid editor request: block_type and target are required for drop")
		}
	}

	return nil
}

// EditorState is the tree and selection after an edit
type EditorState struct {
	Blocks     []blocktree.Block `json:"blocks"`
	SelectedID string            `json:"selected_id,omitempty"`
	AffectedID string            `json:"affected_id,omitempty"`
}
