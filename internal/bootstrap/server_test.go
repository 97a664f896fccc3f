package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/skyticket/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func TestDialAddress(t *testing.T) {
	assert.Equal(t, "localhost:9090", dialAddress(":9090"))
	assert.Equal(t, "localhost:9090", dialAddress("0.0.0.0:9090"))
	assert.Equal(t, "grpc.internal:9090", dialAddress("grpc.internal:9090"))
	assert.Equal(t, "garbage", dialAddress("garbage"))
}

func servingStatus(t *testing.T, srv *health.Server) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestWatchHealth_FollowsDatabasePing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "database up", want: healthpb.HealthCheckResponse_SERVING},
		{name: "database down", err: errors.New("connection refused"), want: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := health.NewServer()
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				watchHealth(ctx, srv, fakePinger{err: tt.err})
				close(done)
			}()

			assert.Eventually(t, func() bool {
				resp, err := srv.Check(context.Background(), &healthpb.HealthCheckRequest{})
				return err == nil && resp.GetStatus() == tt.want
			}, time.Second, 10*time.Millisecond)

			cancel()
			<-done
			assert.Equal(t, tt.want, servingStatus(t, srv))
		})
	}
}

func TestNewServers_MountsOperationalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Address: ":0", RequestTimeout: 5, SwaggerDir: t.TempDir()},
		GRPC: config.GRPCConfig{Address: ":0"},
	}

	router := gin.New()
	s, err := newServers(cfg, router)
	require.NoError(t, err)
	defer s.conn.Close()

	assert.Equal(t, 5*time.Second, s.httpServer.ReadTimeout)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	routes := map[string]bool{}
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	assert.True(t, routes["GET /healthz"])
	assert.True(t, routes["GET /docs/*any"])
}
