package cmd

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jsphweid/basstile/chord"
	"github.com/jsphweid/basstile/config"
	"github.com/jsphweid/basstile/constants"
	"github.com/jsphweid/basstile/library"
	"github.com/jsphweid/basstile/metrics"
	"github.com/jsphweid/basstile/model"
	"github.com/jsphweid/basstile/song"
	"github.com/jsphweid/basstile/tiling"
)

const reloadDelay = 500 * time.Millisecond

func init() {
	serveCmd.Flags().String("listen", ":8080", "address to listen on")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves bass lines over HTTP",
	Long:  `Serves POST /bassline and GET /metrics, reloading the library when its file changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLibrary(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		w, err := library.Watch(cfg.LibraryPath, store, reloadDelay, logger)
		if err != nil {
			logger.Warn("not watching library", zap.Error(err))
		} else {
			defer w.Stop()
		}

		srv := NewServer(store, cfg, logger, prometheus.NewRegistry())
		logger.Info("listening", zap.String("addr", cfg.Listen), zap.Int("fragments", store.Len()))
		return http.ListenAndServe(cfg.Listen, srv.Router())
	},
}

type Server struct {
	store    *library.MemoryStore
	settings config.Settings
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

func NewServer(store *library.MemoryStore, c config.Config, l *zap.Logger, reg *prometheus.Registry) *Server {
	return &Server{
		store:    store,
		settings: c.Settings,
		logger:   l,
		registry: reg,
		metrics:  metrics.New(reg),
		rng:      newRand(c.Seed),
	}
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/bassline", s.HandleGenerate).Methods(http.MethodPost)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return cors.Default().Handler(router)
}

// sessionRand gives each request its own generator; *rand.Rand is not safe
// for concurrent use.
func (s *Server) sessionRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) (model.GenerateResponse, error) {
	sg, err := song.DecodeJSON(http.MaxBytesReader(w, r.Body, constants.MaxRequestBytes))
	if err != nil {
		return model.GenerateResponse{}, err
	}
	sess := tiling.NewSession(s.store, s.settings,
		tiling.WithLogger(s.logger),
		tiling.WithMetrics(s.metrics),
		tiling.WithRand(s.sessionRand()))
	resp, _, err := render(sess, sg)
	return resp, err
}

// HandleGenerate renders the song in the request body.
func (s *Server) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.generate(w, r)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, chord.ErrMalformed):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
	default:
		s.logger.Error("generate failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal error"})
	}
}
