package api

import (
	"fmt"
	"net/http"
	"time"

	_ "github.com/rohits-web03/formstore/docs"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/rohits-web03/formstore/internal/api/handlers"
	"github.com/rohits-web03/formstore/internal/api/middleware"
	"github.com/rohits-web03/formstore/internal/config"
	"github.com/rohits-web03/formstore/internal/formstore"
	"github.com/rohits-web03/formstore/internal/metrics"
	"github.com/rohits-web03/formstore/internal/repositories"
	"github.com/rs/cors"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store     *formstore.Store
	Instances *repositories.InstanceRepository
	Artifacts handlers.ArtifactReader
	Metrics   *metrics.Metrics
	Config    config.Config
	Logger    *zap.Logger
	Clock     func() time.Time
}

func SetupRouter(d Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	mainMux := http.NewServeMux()
	c := cors.New(d.Config.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	if d.Metrics != nil {
		mainMux.Handle("GET /metrics", d.Metrics.Handler())
	}
	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	forms := handlers.NewFormHandler(d.Store, d.Logger.Named("forms"))
	protectedMux.HandleFunc("GET /forms", forms.ListForms)
	protectedMux.HandleFunc("POST /forms", forms.CreateForm)
	protectedMux.HandleFunc("PATCH /forms", forms.UpdateForms)
	protectedMux.HandleFunc("DELETE /forms", forms.DeleteForms)
	protectedMux.HandleFunc("GET /forms/{id}", forms.GetForm)
	protectedMux.HandleFunc("PATCH /forms/{id}", forms.UpdateForm)
	protectedMux.HandleFunc("DELETE /forms/{id}", forms.DeleteForm)
	protectedMux.HandleFunc("GET /newest_forms_by_formid", forms.ListNewestForms)

	if d.Artifacts != nil {
		files := handlers.NewFileHandler(d.Store, d.Artifacts, d.Logger.Named("files"))
		protectedMux.HandleFunc("GET /forms/{id}/definition", files.DownloadDefinition)
	}

	if d.Instances != nil {
		instances := handlers.NewInstanceHandler(d.Instances, d.Clock, d.Logger.Named("instances"))
		protectedMux.HandleFunc("GET /instances", instances.ListInstances)
		protectedMux.HandleFunc("POST /instances", instances.CreateInstance)
		protectedMux.HandleFunc("GET /instances/{id}", instances.GetInstance)
	}

	watch := handlers.NewWatchHandler(d.Store, d.Config.Store.WatchBuffer, d.Logger.Named("watch"))
	protectedMux.HandleFunc("GET /watch", watch.Watch)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.Auth(d.Config.JWTSecret)(protectedMux),
		),
	)

	d.Logger.Info("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(d.Logger.Named("http"))(handler)
	return handler
}
