package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/slicktrace/internal/config"
	"github.com/okian/slicktrace/pkg/logger"
	"github.com/okian/slicktrace/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestSetup(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		_ = os.Setenv("SLICKTRACE_ADDR", ":8088")
		_ = os.Setenv("SLICKTRACE_DEFAULT_WINDOW_HOURS", "36")
		_ = os.Setenv("SLICKTRACE_METRICS__NAMESPACE", "fleet")
		_ = os.Setenv("SLICKTRACE_METRICS__REFRESH_INTERVAL", "2s")
		defer func() {
			_ = os.Unsetenv("SLICKTRACE_ADDR")
			_ = os.Unsetenv("SLICKTRACE_DEFAULT_WINDOW_HOURS")
			_ = os.Unsetenv("SLICKTRACE_METRICS__NAMESPACE")
			_ = os.Unsetenv("SLICKTRACE_METRICS__REFRESH_INTERVAL")
		}()

		cfg, err := config.Load(context.Background())
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8088")

		convey.Convey("When the routes are wired", func() {
			mux, err := setup(context.Background(), cfg)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the API, metrics and docs respond", func() {
				for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then the configured default window is reported", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"defaultWindowHours":36`)
			})

			convey.Convey("Then metrics follow the configured namespace and interval", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analyses/missing", nil))
				w = httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "fleet_analysis_http_requests_total")
				convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 2*time.Second)
			})

			convey.Convey("Then unknown analyses are not found", func() {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analyses/missing", nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})

		convey.Convey("When the log level is invalid", func() {
			cfg.LogLevel = "loud"

			convey.Convey("Then setup falls back instead of failing", func() {
				_, err := setup(context.Background(), cfg)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			startSystemMetricsUpdater(ctx, 10*time.Millisecond)
			close(done)
		}()
		time.Sleep(30 * time.Millisecond)
		cancel()

		convey.Convey("Then it stops with its context", func() {
			select {
			case <-done:
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("updater still running", convey.ShouldBeEmpty)
			}
		})
	})
}
