package web

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rominf/conceptnet-lite/graph"
)

var (
	ErrNotRunning     = errors.New("web service not running")
	ErrAlreadyRunning = errors.New("web service already running")
)

type Config struct {
	Addr string
}

type WebService struct {
	listener net.Listener
	handler  http.Handler
	server   *http.Server
	mu       sync.Mutex

	Config *Config
	Graph  *graph.Graph
}

func New(g *graph.Graph, cfg *Config) *WebService {
	service := &WebService{
		Config: cfg,
		Graph:  g,
	}
	service.handler = service.activateRoutes()
	return service
}

// Handler exposes the routed API, for mounting elsewhere or in tests.
func (service *WebService) Handler() http.Handler {
	return service.handler
}

func (service *WebService) Start() error {
	log.Info("WebService starting..")

	service.mu.Lock()
	defer service.mu.Unlock()

	if service.listener != nil {
		return ErrAlreadyRunning
	}

	var err error

	if service.listener, err = net.Listen("tcp", service.Config.Addr); err != nil {
		service.listener = nil
		return err
	}

	service.server = &http.Server{
		Handler:           service.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var (
		g        errgroup.Group
		server   = service.server
		listener = service.listener
	)
	g.Go(func() error { return server.Serve(listener) })

	go func() {
		if err := g.Wait(); err != nil && err != http.ErrServerClosed {
			log.Errorf("run server result: %s", err)
			return
		}
		log.Debug("run server finished")
	}()

	log.WithField("addr", service.listener.Addr()).Info("WebService started")
	return nil
}

func (service *WebService) Stop() error {
	log.Info("WebService stopping..")

	service.mu.Lock()
	defer service.mu.Unlock()
	if service.listener == nil {
		return ErrNotRunning
	}
	err := service.server.Close()
	service.listener = nil
	service.server = nil
	log.Info("WebService stopped")
	return err
}

func (service *WebService) Addr() net.Addr {
	service.mu.Lock()
	defer service.mu.Unlock()
	if service.listener != nil {
		return service.listener.Addr()
	}
	return nil
}

func (service *WebService) activateRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(service.LoggerMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", service.info)
		r.Get("/languages", service.languages)
		r.Get("/labels/{lang}/{text}", service.labels)
		r.Get("/concepts/{lang}/{text}", service.concepts)
		r.Get("/edges/for/{lang}/{text}", service.edgesFor)
		r.Get("/edges/between/{lang}/{a}/{b}", service.edgesBetween)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondWithError(w, http.StatusNotFound, "no route for "+req.URL.Path)
	})
	return r
}

func (service *WebService) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var (
			ww    = middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start = time.Now()
		)
		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestsTotal.WithLabelValues(statusClass(status)).Inc()
		log.WithField("method", req.Method).
			WithField("url", req.URL.String()).
			WithField("remote-addr", req.RemoteAddr).
			WithField("status", status).
			WithField("duration", time.Since(start)).
			Debug("http handler invoked")
	})
}
