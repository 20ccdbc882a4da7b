package web

import (
	"net/http"
	"sync"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/instruction-server/pkg/app"
)

// App runs the instruction server within app.Run
type App struct {
	log            *logrus.Entry
	configProvider ConfigProvider

	server *Server

	stopOnce   sync.Once
	shutdownCh chan struct{}
}

func NewApp(configProvider ConfigProvider) *App {
	return &App{
		log:            logrus.StandardLogger().WithField("type", "web/app"),
		configProvider: configProvider,
		shutdownCh:     make(chan struct{}),
	}
}

// Init implements app.App.Init
func (a *App) Init(_ app.Config, metricsProvider *newrelic.Application) error {
	a.server = NewInstructionServer(a.configProvider)
	a.log.WithField("metrics_enabled", metricsProvider != nil).Info("instruction server initialized")
	return nil
}

// RegisterWithHTTP implements app.App.RegisterWithHTTP
func (a *App) RegisterWithHTTP(mux *http.ServeMux) {
	for path, handler := range a.server.GetHandlers() {
		mux.HandleFunc(path, handler)
	}
}

// ShutdownChan implements app.App.ShutdownChan
func (a *App) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

// Stop implements app.App.Stop
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.shutdownCh)
	})
}
