package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/security"
)

// ErrForbidden is returned when the acting user lacks the capability to
// add or configure a block in a context.
var ErrForbidden = errors.New("forbidden")

// GraphTypeOption is one entry of the configuration form.
type GraphTypeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BlockInstanceService manages block placements and their configuration.
type BlockInstanceService struct {
	instances    block.InstanceRepository
	contexts     ContextLookup
	capabilities access.CapabilityChecker
	strings      StringLookup
	logger       *logging.ChanneledLogger
}

// NewBlockInstanceService creates a new block instance service
func NewBlockInstanceService(
	instances block.InstanceRepository,
	contexts ContextLookup,
	capabilities access.CapabilityChecker,
	lookup StringLookup,
	logger *logging.ChanneledLogger,
) *BlockInstanceService {
	return &BlockInstanceService{
		instances:    instances,
		contexts:     contexts,
		capabilities: capabilities,
		strings:      lookup,
		logger:       logger,
	}
}

// GraphTypeOptions lists the selectable graph types with localized labels.
func (s *BlockInstanceService) GraphTypeOptions() []GraphTypeOption {
	modes := block.Modes()
	options := make([]GraphTypeOption, 0, len(modes))
	for _, mode := range modes {
		options = append(options, GraphTypeOption{
			Value: mode.GraphType(),
			Label: s.strings.GetString(mode.LabelStringKey()),
		})
	}
	return options
}

// Create places a new block in a context. An empty graphType selects the default.
func (s *BlockInstanceService) Create(ctx context.Context, userID, parentContextID int64, graphType string) (*block.Instance, error) {
	if _, err := block.ParseMode(graphType); err != nil {
		return nil, err
	}

	parent, err := s.authorize(ctx, userID, parentContextID)
	if err != nil {
		return nil, err
	}

	instance := &block.Instance{
		ID:              security.GenerateULID(),
		ParentContextID: parent.ID,
		Config:          block.WidgetConfig{GraphType: graphType},
	}
	if err := s.instances.Store(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to store block instance: %w", err)
	}

	s.logger.Content().Info("Block instance created", "id", instance.ID, "contextId", parent.ID, "graphType", graphType, "userId", userID)
	return instance, nil
}

// Configure sets the graph type of an existing block.
func (s *BlockInstanceService) Configure(ctx context.Context, userID int64, instanceID, graphType string) (*block.Instance, error) {
	if _, err := block.ParseMode(graphType); err != nil {
		return nil, err
	}

	instance, err := s.Get(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, userID, instance.ParentContextID); err != nil {
		return nil, err
	}

	config := block.WidgetConfig{GraphType: graphType}
	if err := s.instances.UpdateConfig(ctx, instanceID, config); err != nil {
		return nil, fmt.Errorf("failed to update block instance %s: %w", instanceID, err)
	}
	instance.Config = config

	s.logger.Content().Info("Block instance configured", "id", instanceID, "graphType", graphType, "userId", userID)
	return instance, nil
}

// Get loads an instance, returning block.ErrInstanceNotFound when missing.
func (s *BlockInstanceService) Get(ctx context.Context, instanceID string) (*block.Instance, error) {
	instance, err := s.instances.FindByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load block instance %s: %w", instanceID, err)
	}
	if instance == nil {
		return nil, fmt.Errorf("%s: %w", instanceID, block.ErrInstanceNotFound)
	}
	return instance, nil
}

// ListForContext returns the blocks placed in a context.
func (s *BlockInstanceService) ListForContext(ctx context.Context, contextID int64) ([]*block.Instance, error) {
	instances, err := s.instances.FindByParentContext(ctx, contextID)
	if err != nil {
		return nil, fmt.Errorf("failed to list block instances: %w", err)
	}
	if instances == nil {
		instances = []*block.Instance{}
	}
	return instances, nil
}

// authorize requires addinstance on the context, or myaddinstance when the
// context is a user's dashboard.
func (s *BlockInstanceService) authorize(ctx context.Context, userID, contextID int64) (*access.Context, error) {
	c, err := s.contexts.FindByID(ctx, contextID)
	if err != nil {
		return nil, fmt.Errorf("failed to load context %d: %w", contextID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("context %d: %w", contextID, access.ErrContextNotFound)
	}

	capability := access.CapabilityAddInstance
	if c.Level == access.LevelUser {
		capability = access.CapabilityMyAddInstance
	}

	ok, err := s.capabilities.HasCapability(ctx, userID, capability, c.ID)
	if err != nil {
		return nil, fmt.Errorf("capability check %s: %w", capability, err)
	}
	s.logger.LogAuthOperation(capability, userID, ok, map[string]any{"contextId": c.ID})
	if !ok {
		return nil, fmt.Errorf("%s in context %d: %w", capability, c.ID, ErrForbidden)
	}
	return c, nil
}
