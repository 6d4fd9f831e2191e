package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
	"github.com/listingdeck/listingdeck/pkg/logger"
	"github.com/listingdeck/listingdeck/pkg/metrics"
	"github.com/listingdeck/listingdeck/pkg/tracing"
)

// BrochureService implements domain.BrochureService
type BrochureService struct {
	logger       logger.Logger
	agencyRepo   domain.AgencyRepository
	propertyRepo domain.PropertyRepository
	agentRepo    domain.AgentRepository
	assembler    *PageAssembler
	renderer     *DocumentRenderer
	raster       *RasterRenderer
	timeout      time.Duration
	now          func() time.Time
}

// NewBrochureService creates a new brochure service. A zero timeout leaves
// generation bounded by the caller's context only.
func NewBrochureService(
	logger logger.Logger,
	agencyRepository domain.AgencyRepository,
	propertyRepository domain.PropertyRepository,
	agentRepository domain.AgentRepository,
	renderer *DocumentRenderer,
	raster *RasterRenderer,
	timeout time.Duration,
) *BrochureService {
	return &BrochureService{
		logger:       logger,
		agencyRepo:   agencyRepository,
		propertyRepo: propertyRepository,
		agentRepo:    agentRepository,
		assembler:    NewPageAssembler(logger),
		renderer:     renderer,
		raster:       raster,
		timeout:      timeout,
		now:          time.Now,
	}
}

// GetSettings returns the stored settings of an agency merged over the defaults
func (s *BrochureService) GetSettings(ctx context.Context, agencyID string) (*domain.BrochureSettings, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "BrochureService", "GetSettings")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "agency_id", agencyID)

	agency, err := s.agencyRepo.GetAgency(ctx, agencyID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	settings := s.assembler.Assemble(agency.BrochureSettings)
	return &settings, nil
}

// SaveSettings validates the settings against the schema and field rules,
// then stores them
func (s *BrochureService) SaveSettings(ctx context.Context, agencyID string, settings *domain.BrochureSettings) error {
	ctx, span := tracing.StartServiceSpan(ctx, "BrochureService", "SaveSettings")
	defer tracing.EndSpan(span, nil)
	tracing.AddAttribute(ctx, "agency_id", agencyID)

	if settings == nil {
		return domain.NewValidationError("settings are required")
	}

	raw, err := json.Marshal(settings)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return fmt.Errorf("failed to serialize brochure settings: %w", err)
	}

	if err := domain.ValidateBrochureSettingsJSON(raw); err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.agencyRepo.UpdateBrochureSettings(ctx, agencyID, string(raw)); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"agency_id": agencyID,
			"error":     err.Error(),
		}).Error("Failed to save brochure settings")
		tracing.MarkSpanError(ctx, err)
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"agency_id": agencyID,
		"pages":     len(settings.Pages),
	}).Info("Brochure settings saved")
	return nil
}

// Generate renders the brochure of a property as a PDF
func (s *BrochureService) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.Artifact, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "BrochureService", "Generate")
	defer tracing.EndSpan(span, nil)

	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	tracing.AddAttribute(ctx, "agency_id", req.AgencyID)
	tracing.AddAttribute(ctx, "property_id", req.PropertyID)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, agency, err := s.loadData(ctx, req.AgencyID, req.PropertyID, req.AgentID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	settings := s.assembler.Assemble(agency.BrochureSettings)
	backend := SelectBackend(settings.Pages)
	log := s.logger.WithFields(map[string]interface{}{
		"agency_id":   req.AgencyID,
		"property_id": req.PropertyID,
		"backend":     string(backend),
	})

	started := time.Now()
	result, err := s.renderer.Render(ctx, settings, *data)
	metrics.ObserveGeneration(string(backend), started, err)
	if err != nil {
		log.WithField("error", err.Error()).Error("Brochure generation failed")
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"bytes":       len(result.Data),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Brochure generated")

	return &domain.Artifact{
		Filename:    s.filename("pdf"),
		ContentType: result.ContentType,
		Backend:     result.Backend,
		Data:        result.Data,
	}, nil
}

// ExportHTML renders bound custom pages as a standalone HTML document: the
// posted blocks when present, otherwise every enabled custom page
func (s *BrochureService) ExportHTML(ctx context.Context, req *domain.ExportHTMLRequest) (*domain.Artifact, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "BrochureService", "ExportHTML")
	defer tracing.EndSpan(span, nil)

	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	data, agency, err := s.loadData(ctx, req.AgencyID, req.PropertyID, req.AgentID)
	if err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	settings := s.assembler.Assemble(agency.BrochureSettings)

	started := time.Now()
	html, err := s.exportHTML(ctx, req.Blocks, settings, *data)
	metrics.ObserveGeneration(string(domain.RenderBackendHTML), started, err)
	if err != nil {
		var validationErr domain.ValidationError
		if errors.As(err, &validationErr) {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"agency_id":   req.AgencyID,
			"property_id": req.PropertyID,
			"error":       err.Error(),
		}).Error("HTML export failed")
		tracing.MarkSpanError(ctx, err)
		return nil, &domain.ErrRenderFailed{Backend: string(domain.RenderBackendHTML), Err: err}
	}

	return &domain.Artifact{
		Filename:    s.filename("html"),
		ContentType: ContentTypeHTML,
		Backend:     domain.RenderBackendHTML,
		Data:        []byte(html),
	}, nil
}

func (s *BrochureService) exportHTML(ctx context.Context, blocks []blocktree.Block, settings domain.BrochureSettings, data domain.BrochureData) (string, error) {
	if blocks == nil {
		return s.raster.ComposeSettings(ctx, settings, data)
	}

	tree, err := blocktree.NewTree(blocks)
	if err != nil {
		return "", domain.NewValidationError(err.Error())
	}
	dc, err := blocktree.NewDataContext(data.DataContextMap())
	if err != nil {
		return "", fmt.Errorf("failed to build data context: %w", err)
	}
	body, err := s.raster.RenderTree(ctx, tree, dc)
	if err != nil {
		return "", err
	}
	return s.raster.ComposeDocument(documentTitle(data), settings.Theme, []string{body})
}

// ApplyEditorOperation applies one structural edit to the posted tree.
// A structurally invalid edit returns one of the blocktree sentinel errors.
func (s *BrochureService) ApplyEditorOperation(ctx context.Context, req *domain.EditorOperationRequest) (*domain.EditorState, error) {
	_, span := tracing.StartServiceSpan(ctx, "BrochureService", "ApplyEditorOperation")
	defer tracing.EndSpan(span, nil)

	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	tree, err := blocktree.NewTree(req.Blocks)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	editor := blocktree.NewEditor(tree)
	if err := editor.Select(req.SelectedID); err != nil {
		// a stale selection is dropped rather than rejected
		_ = editor.Select("")
	}

	affected := ""
	switch req.Operation {
	case domain.EditorOperationAdd:
		affected, err = editor.AddBlock(req.BlockType)
	case domain.EditorOperationUpdate:
		affected = req.BlockID
		err = editor.UpdateBlock(req.BlockID, *req.Update)
	case domain.EditorOperationDelete:
		affected = req.BlockID
		err = editor.DeleteBlock(req.BlockID)
	case domain.EditorOperationDuplicate:
		affected, err = editor.DuplicateBlock(req.BlockID)
	case domain.EditorOperationSelect:
		affected = req.BlockID
		err = editor.Select(req.BlockID)
	case domain.EditorOperationMove:
		affected = req.BlockID
		if err = editor.DragStartExisting(req.BlockID); err == nil {
			err = editor.Drop(*req.Target)
		}
	case domain.EditorOperationDrop:
		if err = editor.DragStartNew(req.BlockType); err == nil {
			err = editor.Drop(*req.Target)
			affected = editor.SelectedID()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("editor %s: %w", req.Operation, err)
	}

	return &domain.EditorState{
		Blocks:     editor.Tree().Blocks(),
		SelectedID: editor.SelectedID(),
		AffectedID: affected,
	}, nil
}

// BindableFields lists the dot paths blocks may bind to
func (s *BrochureService) BindableFields() []domain.BindableField {
	return domain.BindableFields()
}

// loadData fetches the agency, the property and, when known, the agent.
// A missing agent is logged and the brochure goes without one.
func (s *BrochureService) loadData(ctx context.Context, agencyID, propertyID, agentID string) (*domain.BrochureData, *domain.Agency, error) {
	agency, err := s.agencyRepo.GetAgency(ctx, agencyID)
	if err != nil {
		return nil, nil, err
	}

	property, err := s.propertyRepo.GetProperty(ctx, agencyID, propertyID)
	if err != nil {
		return nil, nil, err
	}

	if agentID == "" && property.AgentID != nil {
		agentID = *property.AgentID
	}

	var agent *domain.Agent
	if agentID != "" {
		agent, err = s.agentRepo.GetAgent(ctx, agencyID, agentID)
		if err != nil {
			var notFound *domain.ErrNotFound
			if !errors.As(err, &notFound) {
				return nil, nil, err
			}
			s.logger.WithFields(map[string]interface{}{
				"agency_id": agencyID,
				"agent_id":  agentID,
			}).Warn("Agent not found, brochure is generated without agent details")
			agent = nil
		}
	}

	data := &domain.BrochureData{Agency: agency, Property: property, Agent: agent}
	if err := data.Validate(); err != nil {
		return nil, nil, err
	}
	return data, agency, nil
}

func (s *BrochureService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *BrochureService) filename(ext string) string {
	return fmt.Sprintf("brochure-%s.%s", s.now().Format("2006-01-02"), ext)
}

var _ domain.BrochureService = (*BrochureService)(nil)
