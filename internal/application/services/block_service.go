// Package services provides application-level services that orchestrate
// business logic and coordinate between repositories and domain entities.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtRiskMedia/ace-block/internal/domain/access"
	"github.com/AtRiskMedia/ace-block/internal/domain/analytics"
	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/ace-block/internal/presentation/templates"
)

// String identifiers used by the resolver.
const (
	StringPluginName          = "pluginname"
	StringViewYourDashboard   = "viewyourdashboard"
	StringSwitchToLiveGraph   = "switchtolivegraph"
	StringSwitchToStaticImage = "switchtostaticimage"

	// GraphImage is the bundled image shown in place of the live graph.
	GraphImage = "graph"
)

// ContextLookup is the part of the context tree the resolver reads.
type ContextLookup interface {
	FindByID(ctx context.Context, id int64) (*access.Context, error)
	SystemContext(ctx context.Context) (*access.Context, error)
	CourseContext(ctx context.Context, courseID int64) (*access.Context, error)
	CourseIDForContext(ctx context.Context, contextID int64, siteCourseID int64) (int64, error)
}

// UserLookup finds host user records.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*access.User, error)
}

// PreferenceReader reads per-user preferences.
type PreferenceReader interface {
	GetBool(ctx context.Context, userID int64, name string, defaultValue bool) (bool, error)
}

// StringLookup resolves localized strings.
type StringLookup interface {
	GetString(key string) string
}

// AssetLocator resolves bundled image URLs.
type AssetLocator interface {
	ImageURL(name string) string
}

// BlockSettings are the site-level values the resolver needs.
type BlockSettings struct {
	SiteCourseID        int64
	UserDashboardURL    string
	TeacherDashboardURL string
	PreferenceEndpoint  string
}

// BlockDependencies groups the ports consulted during a render.
type BlockDependencies struct {
	Contexts     ContextLookup
	Users        UserLookup
	Capabilities access.CapabilityChecker
	Graphs       analytics.GraphProvider
	Preferences  PreferenceReader
	Instances    block.InstanceRepository
	Strings      StringLookup
	Assets       AssetLocator
}

// ViewerRequest is the raw per-request input a ViewerContext is built from.
type ViewerRequest struct {
	CurrentUserID      int64
	PageContextID      int64
	RequestedContextID int64
	RequestedCourseID  int64
}

// modeResult is a handler's composed body. A nil result means nothing may be shown.
type modeResult struct {
	Body   string
	Toggle *block.ToggleBinding
}

type modeHandler func(ctx context.Context, viewer block.ViewerContext) (*modeResult, error)

// BlockService resolves the content of engagement block instances.
type BlockService struct {
	deps     BlockDependencies
	settings BlockSettings
	logger   *logging.ChanneledLogger
	perf     *performance.Tracker
	metrics  *metrics.Metrics
}

// NewBlockService creates a new block service
func NewBlockService(
	deps BlockDependencies,
	settings BlockSettings,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
	m *metrics.Metrics,
) *BlockService {
	return &BlockService{
		deps:     deps,
		settings: settings,
		logger:   logger,
		perf:     perf,
		metrics:  m,
	}
}

// NewViewerContext loads the page context and derives the current course.
func (s *BlockService) NewViewerContext(ctx context.Context, req ViewerRequest) (block.ViewerContext, error) {
	page, err := s.deps.Contexts.FindByID(ctx, req.PageContextID)
	if err != nil {
		return block.ViewerContext{}, fmt.Errorf("failed to load page context %d: %w", req.PageContextID, err)
	}
	if page == nil {
		return block.ViewerContext{}, fmt.Errorf("page context %d: %w", req.PageContextID, access.ErrContextNotFound)
	}

	courseID, err := s.deps.Contexts.CourseIDForContext(ctx, page.ID, s.settings.SiteCourseID)
	if err != nil {
		return block.ViewerContext{}, fmt.Errorf("failed to resolve course for context %d: %w", page.ID, err)
	}

	return block.ViewerContext{
		CurrentUserID:      req.CurrentUserID,
		RequestedContextID: req.RequestedContextID,
		RequestedCourseID:  req.RequestedCourseID,
		CurrentCourseID:    courseID,
		PageContext:        *page,
	}, nil
}

// RenderInstance resolves the content of a stored block instance. A missing
// instance renders as empty output.
func (s *BlockService) RenderInstance(ctx context.Context, instanceID string, viewer block.ViewerContext) (*block.WidgetOutput, error) {
	instance, err := s.deps.Instances.FindByID(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load block instance %s: %w", instanceID, err)
	}
	if instance == nil {
		s.logger.Content().Debug("Block instance not found", "instanceId", instanceID)
		return block.EmptyOutput(), nil
	}
	return s.ResolveContent(ctx, instance.Config, viewer)
}

// ResolveContent decides whether the viewer may see the configured mode,
// whose data to show and which graph provider to call, then composes the
// title, help popover, body and toggle script. Authorization failures and
// unknown modes yield empty output, never an error.
func (s *BlockService) ResolveContent(ctx context.Context, config block.WidgetConfig, viewer block.ViewerContext) (*block.WidgetOutput, error) {
	mode, err := config.Mode()
	if err != nil {
		s.logger.Content().Warn("Unknown graph type configured", "graphType", config.GraphType)
		s.metrics.ObserveRender(block.ModeUnknown.String(), metrics.OutcomeEmpty)
		return block.EmptyOutput(), nil
	}

	marker := s.perf.StartOperation("block:render", mode.String())
	defer s.perf.CompleteOperation(marker)

	handler := s.handlerFor(mode)
	if handler == nil {
		s.metrics.ObserveRender(mode.String(), metrics.OutcomeEmpty)
		return block.EmptyOutput(), nil
	}

	result, err := handler(ctx, viewer)
	if err != nil {
		marker.SetError(err)
		s.metrics.ObserveRender(mode.String(), metrics.OutcomeError)
		s.logger.LogError(logging.ChannelContent, "block:render", err, map[string]any{
			"mode":   mode.String(),
			"userId": viewer.CurrentUserID,
		})
		return nil, err
	}
	if result == nil {
		s.logger.Content().Debug("Block content withheld", "mode", mode.String(), "userId", viewer.CurrentUserID, "contextId", viewer.PageContext.ID)
		s.metrics.ObserveRender(mode.String(), metrics.OutcomeEmpty)
		return block.EmptyOutput(), nil
	}

	output := s.compose(mode, result)
	s.metrics.ObserveRender(mode.String(), metrics.OutcomeRendered)
	return output, nil
}

func (s *BlockService) compose(mode block.Mode, result *modeResult) *block.WidgetOutput {
	title := s.deps.Strings.GetString(StringPluginName)
	help := s.deps.Strings.GetString(mode.HelpStringKey())
	header := templates.RenderHeader(title, help)
	script := templates.RenderToggleScript(result.Toggle, s.settings.PreferenceEndpoint)

	output := block.EmptyOutput()
	output.Mode = mode.GraphType()
	output.Title = title
	output.Help = help
	output.Header = header
	output.Body = result.Body
	output.Script = script
	output.Text = header + result.Body + script
	output.Toggle = result.Toggle
	return output
}

// handlerFor returns the handler of a mode, or nil for ModeUnknown.
func (s *BlockService) handlerFor(mode block.Mode) modeHandler {
	switch mode {
	case block.ModeStudent:
		return s.renderStudent
	case block.ModeCourse:
		return s.renderCourse
	case block.ModeStudentWithTabs:
		return s.renderStudentWithTabs
	case block.ModeTeacherCourse:
		return s.renderTeacherCourse
	case block.ModeActivity:
		return s.renderActivity
	case block.ModeStudentTeacherAuto:
		return s.renderStudentTeacherAuto
	default:
		return nil
	}
}

func (s *BlockService) renderStudent(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	target, err := s.resolveTargetUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if ok, err := s.canViewUser(ctx, viewer, target); err != nil || !ok {
		return nil, err
	}

	graph, err := s.deps.Graphs.StudentGraph(ctx, target, 0, false)
	if err != nil {
		return nil, fmt.Errorf("student graph for user %d: %w", target, err)
	}

	dashboardURL, err := s.dashboardURL(ctx, viewer)
	if err != nil {
		return nil, err
	}
	label := s.deps.Strings.GetString(StringViewYourDashboard)
	imageURL := s.deps.Assets.ImageURL(GraphImage)

	if graph == "" {
		return &modeResult{Body: templates.RenderDashboardFallback(dashboardURL, imageURL, label)}, nil
	}

	hidden, err := s.deps.Preferences.GetBool(ctx, viewer.CurrentUserID, block.PreferenceHiddenGraph, false)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", block.PreferenceHiddenGraph, err)
	}

	toggle := block.NewStudentGraphToggle(
		hidden,
		s.deps.Strings.GetString(StringSwitchToLiveGraph),
		s.deps.Strings.GetString(StringSwitchToStaticImage),
	)
	body := templates.RenderStudentGraph(templates.StudentGraphView{
		Graph:        graph,
		DashboardURL: dashboardURL,
		ImageURL:     imageURL,
		LinkLabel:    label,
		Hidden:       toggle.Hidden,
		LiveID:       toggle.LiveID,
		StaticID:     toggle.StaticID,
		TriggerID:    toggle.TriggerID,
		TriggerLabel: toggle.Label(),
	})
	return &modeResult{Body: body, Toggle: toggle}, nil
}

func (s *BlockService) renderCourse(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	courseID := viewer.CurrentCourseID
	if courseID <= 0 || courseID == s.settings.SiteCourseID {
		return nil, nil
	}

	courseContext, err := s.deps.Contexts.CourseContext(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load context of course %d: %w", courseID, err)
	}
	if courseContext == nil {
		return nil, nil
	}
	if ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityView, courseContext.ID); err != nil || !ok {
		return nil, err
	}

	graph, err := s.deps.Graphs.CourseGraph(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course graph for course %d: %w", courseID, err)
	}
	return &modeResult{Body: templates.RenderCourseGraph(graph)}, nil
}

func (s *BlockService) renderStudentWithTabs(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	target, err := s.resolveTargetUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if ok, err := s.canViewUser(ctx, viewer, target); err != nil || !ok {
		return nil, err
	}

	graph, err := s.deps.Graphs.StudentFullGraph(ctx, target, viewer.RequestedCourseID)
	if err != nil {
		return nil, fmt.Errorf("student full graph for user %d: %w", target, err)
	}
	return &modeResult{Body: graph}, nil
}

func (s *BlockService) renderTeacherCourse(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	if ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityViewOwn, viewer.PageContext.ID); err != nil || !ok {
		return nil, err
	}

	graph, err := s.deps.Graphs.TeacherCourseGraph(ctx, viewer.CurrentUserID)
	if err != nil {
		return nil, fmt.Errorf("teacher course graph for user %d: %w", viewer.CurrentUserID, err)
	}
	return &modeResult{Body: graph}, nil
}

func (s *BlockService) renderActivity(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	if ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityView, viewer.PageContext.ID); err != nil || !ok {
		return nil, err
	}

	graph, err := s.deps.Graphs.ActivityEngagementGraph(ctx, viewer.PageContext.InstanceID)
	if err != nil {
		return nil, fmt.Errorf("activity graph for module %d: %w", viewer.PageContext.InstanceID, err)
	}
	return &modeResult{Body: graph}, nil
}

// renderStudentTeacherAuto picks the first matching branch. The last branch
// always shows the current user's own graph, whatever target was resolved.
func (s *BlockService) renderStudentTeacherAuto(ctx context.Context, viewer block.ViewerContext) (*modeResult, error) {
	target, err := s.resolveTargetUser(ctx, viewer)
	if err != nil {
		return nil, err
	}
	onUserPage := viewer.PageContext.Level == access.LevelUser

	if onUserPage && target != viewer.CurrentUserID {
		ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityView, viewer.PageContext.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return s.studentFull(ctx, target, viewer.RequestedCourseID)
		}
	}

	if onUserPage && target == viewer.CurrentUserID {
		system, err := s.deps.Contexts.SystemContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load system context: %w", err)
		}
		ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityView, system.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			graph, err := s.deps.Graphs.TeacherCourseGraph(ctx, viewer.CurrentUserID)
			if err != nil {
				return nil, fmt.Errorf("teacher course graph for user %d: %w", viewer.CurrentUserID, err)
			}
			return &modeResult{Body: graph}, nil
		}
	}

	ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityViewOwn, viewer.PageContext.ID)
	if err != nil || !ok {
		return nil, err
	}
	return s.studentFull(ctx, viewer.CurrentUserID, viewer.RequestedCourseID)
}

func (s *BlockService) studentFull(ctx context.Context, userID, courseID int64) (*modeResult, error) {
	graph, err := s.deps.Graphs.StudentFullGraph(ctx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("student full graph for user %d: %w", userID, err)
	}
	return &modeResult{Body: graph}, nil
}

// resolveTargetUser returns the user behind the requested context when it is
// a user context, else the current user. A user context without a user
// record is an error.
func (s *BlockService) resolveTargetUser(ctx context.Context, viewer block.ViewerContext) (int64, error) {
	if viewer.RequestedContextID <= 0 {
		return viewer.CurrentUserID, nil
	}

	requested, err := s.deps.Contexts.FindByID(ctx, viewer.RequestedContextID)
	if err != nil {
		return 0, fmt.Errorf("failed to load requested context %d: %w", viewer.RequestedContextID, err)
	}
	if requested == nil || requested.Level != access.LevelUser {
		return viewer.CurrentUserID, nil
	}

	u, err := s.deps.Users.FindByID(ctx, requested.InstanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to load user %d: %w", requested.InstanceID, err)
	}
	if u == nil {
		return 0, fmt.Errorf("user %d behind context %d: %w", requested.InstanceID, requested.ID, access.ErrUserNotFound)
	}
	return u.ID, nil
}

// canViewUser requires viewown on the page context, plus view when the
// target is someone else.
func (s *BlockService) canViewUser(ctx context.Context, viewer block.ViewerContext, target int64) (bool, error) {
	ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityViewOwn, viewer.PageContext.ID)
	if err != nil || !ok {
		return false, err
	}
	if target == viewer.CurrentUserID {
		return true, nil
	}
	return s.has(ctx, viewer.CurrentUserID, access.CapabilityView, viewer.PageContext.ID)
}

func (s *BlockService) dashboardURL(ctx context.Context, viewer block.ViewerContext) (string, error) {
	ok, err := s.has(ctx, viewer.CurrentUserID, access.CapabilityView, viewer.PageContext.ID)
	if err != nil {
		return "", err
	}
	if ok {
		return s.settings.TeacherDashboardURL, nil
	}
	return s.settings.UserDashboardURL, nil
}

func (s *BlockService) has(ctx context.Context, userID int64, capability string, contextID int64) (bool, error) {
	ok, err := s.deps.Capabilities.HasCapability(ctx, userID, capability, contextID)
	if err != nil {
		return false, fmt.Errorf("capability check %s: %w", capability, err)
	}
	s.logger.LogAuthOperation(capability, userID, ok, map[string]any{"contextId": contextID})
	return ok, nil
}

// IsUserNotFound reports whether err comes from a user context without a user record.
func IsUserNotFound(err error) bool {
	return errors.Is(err, access.ErrUserNotFound)
}
