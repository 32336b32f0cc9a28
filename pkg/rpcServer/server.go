// Package rpcServer serves the analytics queries over a JSON HTTP API.
package rpcServer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/orbs-network/pos-analytics/pkg/metrics"
	"github.com/orbs-network/pos-analytics/pkg/model"
	"github.com/orbs-network/pos-analytics/pkg/service/posDataService"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// DataService is the query surface served by the API.
type DataService interface {
	GetDelegator(ctx context.Context, address string) (*model.Delegator, error)
	GetDelegatorStakingRewards(ctx context.Context, address string, opts *posDataService.RewardsQueryOptions) (*model.DelegatorStakingRewards, error)
	GetGuardian(ctx context.Context, address string) (*model.GuardianInfo, error)
	GetGuardianStakingRewards(ctx context.Context, address string, opts *posDataService.RewardsQueryOptions) (*model.GuardianStakingRewards, error)
	GetGuardians(ctx context.Context) ([]model.Guardian, error)
	GetOverview(ctx context.Context) (*model.PosOverview, error)
}

type RpcServerConfig struct {
	HttpPort int
	// AllowedOrigins defaults to every origin when empty
	AllowedOrigins []string
	// EnableTracing starts a span for every request
	EnableTracing bool
}

type RpcServer struct {
	config      *RpcServerConfig
	service     DataService
	metricsSink *metrics.MetricsSink
	logger      *zap.Logger
	server      *http.Server
}

func NewRpcServer(
	cfg *RpcServerConfig,
	service DataService,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *RpcServer {
	rpc := &RpcServer{
		config:      cfg,
		service:     service,
		metricsSink: ms,
		logger:      l,
	}
	rpc.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HttpPort),
		Handler:           rpc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return rpc
}

// Handler builds the router wrapped in the middleware chain.
func (rpc *RpcServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(requestIdMiddleware)
	if rpc.config.EnableTracing {
		router.Use(tracingMiddleware)
	}
	router.Use(rpc.metricsMiddleware)

	api := router.PathPrefix(apiPrefix).Subrouter()
	api.Path("/health").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(WrapHandlerFunc(rpc.handleHealth))
	api.Path("/delegators/{address}").
		Methods(http.MethodGet).
		Name("get_delegator").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetDelegator))
	api.Path("/delegators/{address}/rewards").
		Methods(http.MethodGet).
		Name("get_delegator_rewards").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetDelegatorRewards))
	api.Path("/guardians").
		Methods(http.MethodGet).
		Name("get_guardians").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetGuardians))
	api.Path("/guardians/{address}").
		Methods(http.MethodGet).
		Name("get_guardian").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetGuardian))
	api.Path("/guardians/{address}/rewards").
		Methods(http.MethodGet).
		Name("get_guardian_rewards").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetGuardianRewards))
	api.Path("/overview").
		Methods(http.MethodGet).
		Name("get_overview").
		HandlerFunc(WrapHandlerFunc(rpc.handleGetOverview))

	origins := rpc.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"content-type", requestIdHeader},
		ExposedHeaders: []string{requestIdHeader},
	}).Handler(handlers.CompressHandler(router))

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(&recoveryLogger{logger: rpc.logger}),
		handlers.PrintRecoveryStack(false),
	)(handler)
}

// Start serves in the background until a value is sent on stop.
func (rpc *RpcServer) Start(ctx context.Context, stop <-chan bool) error {
	go func() {
		rpc.logger.Sugar().Infow("Starting http server", zap.Int("port", rpc.config.HttpPort))
		if err := rpc.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rpc.logger.Sugar().Errorw("Http server failed", zap.Error(err))
		}
	}()
	go func() {
		select {
		case <-stop:
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rpc.server.Shutdown(shutdownCtx); err != nil {
			rpc.logger.Sugar().Errorw("Failed to shutdown http server", zap.Error(err))
		}
	}()
	return nil
}

type recoveryLogger struct {
	logger *zap.Logger
}

func (rl *recoveryLogger) Println(v ...interface{}) {
	rl.logger.Sugar().Errorw("Recovered from panic", zap.String("panic", fmt.Sprint(v...)))
}
