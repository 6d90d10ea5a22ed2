package cmd

import (
	"github.com/fleety/fleetyctl/internal/api"
	"github.com/fleety/fleetyctl/internal/config"
	"github.com/fleety/fleetyctl/internal/dashboard"
	"github.com/fleety/fleetyctl/internal/log"
	"github.com/fleety/fleetyctl/internal/org"
	"github.com/fleety/fleetyctl/internal/scope"
	"github.com/fleety/fleetyctl/internal/session"
)

// runtime wires the client stack for a single command invocation
type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	client *api.Client
	store  *session.Store
	ctrl   *dashboard.Controller
}

// newRuntime loads configuration, builds the API client and session store,
// and rehydrates any persisted session.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logConfig := log.Config{
		Level:  log.ParseLevel(cfg.LogLevel),
		Format: log.ParseFormat(cfg.LogFormat),
		Output: log.OutputStderr(),
	}
	if verbose {
		logConfig = log.DebugConfig()
	}
	logger := log.New(logConfig)
	log.SetDefaultLogger(logger)

	// The client and the store reference each other: the client reads the
	// bearer token from the store, the store authenticates through the
	// client. The token source closes over the store variable to break the
	// cycle.
	var store *session.Store
	client := api.NewClient(cfg.APIURL, func() string {
		if store == nil {
			return ""
		}
		return store.Token()
	}).WithTimeout(cfg.RequestTimeout)

	store = session.NewStore(client, session.NewFileStorage(cfg.StateDir), logger)
	store.Rehydrate()

	ctrl := dashboard.NewController(store, scope.NewSelector(logger), org.NewManager(client, logger), client, logger)

	return &runtime{
		cfg:    cfg,
		logger: logger,
		client: client,
		store:  store,
		ctrl:   ctrl,
	}, nil
}
