// Package container provides dependency injection for all singleton services
package container

import (
	"fmt"

	"github.com/AtRiskMedia/ace-block/internal/application/services"
	"github.com/AtRiskMedia/ace-block/internal/domain/block"
	"github.com/AtRiskMedia/ace-block/internal/domain/user"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/analytics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/assets"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/i18n"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/performance"
	accesspersistence "github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/access"
	blockpersistence "github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/block"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
	userpersistence "github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/user"
	"github.com/AtRiskMedia/ace-block/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	BlockService         *services.BlockService
	BlockInstanceService *services.BlockInstanceService
	PreferenceService    *services.PreferenceService

	// Repositories
	Contexts     *accesspersistence.SQLContextRepository
	Users        *accesspersistence.SQLUserRepository
	Capabilities *accesspersistence.SQLCapabilityRepository
	Preferences  *userpersistence.SQLPreferenceRepository
	Instances    *blockpersistence.SQLInstanceRepository

	// Infrastructure Dependencies
	DB          *database.DB
	GraphCache  *stores.GraphStore
	Graphs      *analytics.GraphClient
	Strings     *i18n.Catalog
	Assets      *assets.Locator
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	Metrics     *metrics.Metrics
	JWTSecret   string
}

// NewContainer creates and wires all singleton services on top of an open database.
func NewContainer(db *database.DB, logger *logging.ChanneledLogger) (*Container, error) {
	catalog, err := i18n.Load(config.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to load strings: %w", err)
	}

	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig(), logger)
	m := metrics.New()

	contexts := accesspersistence.NewSQLContextRepository(db, logger)
	users := accesspersistence.NewSQLUserRepository(db, logger)
	capabilities := accesspersistence.NewSQLCapabilityRepository(db, logger)
	preferences := userpersistence.NewSQLPreferenceRepository(db, logger)
	instances := blockpersistence.NewSQLInstanceRepository(db, logger)

	graphCache := stores.NewGraphStore(config.GraphCacheTTL)
	graphs := analytics.NewGraphClient(config.AnalyticsBaseURL, config.AnalyticsTimeout, graphCache, m, perfTracker, logger)
	locator := assets.NewLocator(config.AssetBaseURL)

	blockService := services.NewBlockService(
		services.BlockDependencies{
			Contexts:     contexts,
			Users:        users,
			Capabilities: capabilities,
			Graphs:       graphs,
			Preferences:  preferences,
			Instances:    instances,
			Strings:      catalog,
			Assets:       locator,
		},
		services.BlockSettings{
			SiteCourseID:        config.SiteCourseID,
			UserDashboardURL:    config.UserDashboardURL,
			TeacherDashboardURL: config.TeacherDashboardURL,
			PreferenceEndpoint:  config.PreferenceEndpoint,
		},
		logger,
		perfTracker,
		m,
	)

	preferenceService := services.NewPreferenceService(preferences, logger, m)
	preferenceService.AllowAjaxUpdate(block.PreferenceHiddenGraph, user.PreferenceBool)

	return &Container{
		BlockService:         blockService,
		BlockInstanceService: services.NewBlockInstanceService(instances, contexts, capabilities, catalog, logger),
		PreferenceService:    preferenceService,

		Contexts:     contexts,
		Users:        users,
		Capabilities: capabilities,
		Preferences:  preferences,
		Instances:    instances,

		DB:          db,
		GraphCache:  graphCache,
		Graphs:      graphs,
		Strings:     catalog,
		Assets:      locator,
		Logger:      logger,
		PerfTracker: perfTracker,
		Metrics:     m,
		JWTSecret:   config.JWTSecret,
	}, nil
}

// Close releases the database connection.
func (c *Container) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
