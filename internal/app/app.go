package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/etf-portal/internal/cache"
	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/handlers"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
	"github.com/bobmcallan/etf-portal/internal/mcp"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	"github.com/bobmcallan/etf-portal/internal/storage"
)

// startupTimeout bounds the initial catalog load and selection restore.
const startupTimeout = 30 * time.Second

// LoadError values carry no file contents or paths. Details go to the log.
var (
	errCatalogLoad    = errors.New("failed to load ETF catalog (see server log)")
	errHistoryLoad    = errors.New("failed to load history CSV (see server log)")
	errFilenameNoDir  = errors.New("filename setting ignored: data.dir is not set")
	errFilenameUnsafe = errors.New("filename setting refused: must be a plain file name inside data.dir")
)

// historyPathFromSetting resolves the stored filename setting to a file
// directly under dir. Absolute paths, separators and ".." are refused.
func historyPathFromSetting(dir, name string) (string, error) {
	if dir == "" {
		return "", errFilenameNoDir
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") ||
		name != filepath.Base(name) {
		return "", errFilenameUnsafe
	}
	return filepath.Join(dir, name), nil
}

// catalogAdapter converts MCP catalog tools to dashboard display tools.
func catalogAdapter(mcpHandler *mcp.Handler) func() []handlers.DashboardTool {
	return func() []handlers.DashboardTool {
		if mcpHandler == nil {
			return nil
		}
		catalog := mcpHandler.Catalog()
		tools := make([]handlers.DashboardTool, len(catalog))
		for i, ct := range catalog {
			tools[i] = handlers.DashboardTool{
				Name:        ct.Name,
				Description: ct.Description,
				Params:      ct.ParamNames(),
			}
		}
		return tools
	}
}

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Storage  interfaces.StorageManager
	Settings *storage.Settings
	Catalog  *dataset.Catalog
	Manager  *portfolio.Manager
	Charts   *cache.ChartCache

	// HTTP handlers
	PageHandler      *handlers.PageHandler
	HealthHandler    *handlers.HealthHandler
	VersionHandler   *handlers.VersionHandler
	DashboardHandler *handlers.DashboardHandler
	SettingsHandler  *handlers.SettingsHandler
	ETFHandler       *handlers.ETFHandler
	PortfolioHandler *handlers.PortfolioHandler
	MCPHandler       *mcp.Handler

	mu      sync.RWMutex
	loadErr error
}

// New initializes the application with all dependencies. A catalog that
// fails to load is not fatal: the dashboard reports the error and renders
// an empty catalog.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	sm, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.Storage = sm
	a.Settings = storage.NewSettings(sm.KeyValueStorage())

	a.Catalog = dataset.NewCatalog(dataset.NewSource(cfg.Data), logger)
	a.Manager = portfolio.NewManager(a.Catalog, logger)
	a.Charts = cache.New(cfg.Cache.ChartTTL(), cfg.Cache.MaxEntries)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a.LoadData(ctx)
	a.restoreSelection(ctx)

	// Persist after restore so a partially restored selection is not written back mid-way.
	a.Manager.OnChange(func(selection []string) {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Settings.SaveSelection(saveCtx, selection); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("failed to persist selection")
		}
	})

	a.initHandlers()

	logger.Info().
		Int("tickers", a.Catalog.Len()).
		Int("selected", len(a.Manager.Selection())).
		Msg("application initialization complete")

	return a, nil
}

// LoadData loads the catalog document and merges the historical NAV CSV.
// The CSV path comes from config, falling back to the stored filename setting
// resolved under data.dir. Failures are logged and summarized for LoadError;
// loaded data is never discarded.
func (a *App) LoadData(ctx context.Context) {
	var errs []error

	if err := a.Catalog.Load(ctx); err == nil {
		a.Charts.Purge()
	} else if !errors.Is(err, dataset.ErrNoSource) {
		a.Logger.Error().Str("error", err.Error()).Msg("failed to load ETF catalog")
		errs = append(errs, errCatalogLoad)
	}

	path := a.Config.Data.HistoryCSV
	if path == "" {
		v, err := a.Settings.Filename(ctx)
		if err != nil {
			a.Logger.Warn().Str("error", err.Error()).Msg("failed to read filename setting")
		}
		if name := strings.TrimSpace(v); name != "" {
			if path, err = historyPathFromSetting(a.Config.Data.Dir, name); err != nil {
				a.Logger.Warn().Str("filename", name).Str("error", err.Error()).Msg("filename setting not used")
				errs = append(errs, err)
			}
		}
	}
	if path != "" {
		records, err := dataset.LoadHistoryFile(path)
		if err != nil {
			a.Logger.Error().Str("path", path).Str("error", err.Error()).Msg("failed to load history csv")
			errs = append(errs, errHistoryLoad)
		} else {
			a.Catalog.Merge(records)
			for ticker := range records {
				a.Charts.InvalidateTicker(ticker)
			}
			a.Logger.Info().Str("path", path).Int("tickers", len(records)).Msg("history csv merged")
		}
	}

	if a.Catalog.Len() == 0 && len(errs) == 0 {
		errs = append(errs, errors.New("no ETF data configured: set data.base_url, data.dir or data.history_csv"))
	}

	a.mu.Lock()
	a.loadErr = errors.Join(errs...)
	a.mu.Unlock()
}

// LoadError returns the error from the last LoadData, or nil.
func (a *App) LoadError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loadErr
}

func (a *App) restoreSelection(ctx context.Context) {
	saved, err := a.Settings.LoadSelection(ctx)
	if err != nil {
		a.Logger.Warn().Str("error", err.Error()).Msg("failed to read saved selection")
		return
	}
	if len(saved) == 0 {
		return
	}
	restored := a.Manager.Restore(ctx, saved)
	a.Logger.Info().Int("saved", len(saved)).Int("restored", restored).Msg("selection restored")
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	devMode := a.Config.IsDevMode()

	a.PageHandler = handlers.NewPageHandler(a.Logger, devMode)
	a.HealthHandler = handlers.NewHealthHandler(a.Catalog.Len, a.LoadError)
	a.VersionHandler = &handlers.VersionHandler{}
	a.ETFHandler = handlers.NewETFHandler(a.Logger, a.Catalog)
	a.PortfolioHandler = handlers.NewPortfolioHandler(a.Logger, a.Manager, a.Charts)
	a.SettingsHandler = handlers.NewSettingsHandler(a.Logger, devMode, a.Settings)

	if a.Config.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(a.Manager, a.Logger)
	}

	a.DashboardHandler = handlers.NewDashboardHandler(
		a.Logger,
		devMode,
		a.Config.Server.Port,
		a.Manager,
		catalogAdapter(a.MCPHandler),
	)
	a.DashboardHandler.SetSettingsStore(a.Settings)
	a.DashboardHandler.SetLoadErrorFn(a.LoadError)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Storage == nil {
		return nil
	}
	return a.Storage.Close()
}
