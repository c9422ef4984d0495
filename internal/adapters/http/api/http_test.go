package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nanahoshi/pointbot/internal/adapters/http/api"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockGuildLister struct {
	guilds []types.GuildInfo
}

func (m *mockGuildLister) Guilds() []types.GuildInfo {
	return m.guilds
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockGuildLister{
			guilds: []types.GuildInfo{
				{Name: "guild one", Icon: "https://cdn.example/one.png", MemberCount: 42},
				{Name: "guild two", Icon: "https://cdn.example/two.png", MemberCount: 7},
			},
		}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{}}
		server := api.NewServer(deps, statsProvider)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("And health endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And getservers should return the guild list", func() {
				req := httptest.NewRequest("GET", "/api/getservers", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var response []types.GuildInfo
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(len(response), ShouldEqual, 2)
				So(response[0].Name, ShouldEqual, "guild one")
				So(response[1].MemberCount, ShouldEqual, 7)
			})
		})
	})
}

func TestServersHandler_HandleGetServers(t *testing.T) {
	Convey("Given a servers handler", t, func() {
		deps := &mockGuildLister{}
		handler := api.NewServersHandler(deps)

		Convey("When the bot is in no guilds yet", func() {
			req := httptest.NewRequest("GET", "/api/getservers", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return an empty JSON array", func() {
				handler.HandleGetServers(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response []types.GuildInfo
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response, ShouldBeEmpty)
			})
		})

		Convey("When handling a non-GET request", func() {
			req := httptest.NewRequest("POST", "/api/getservers", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return method not allowed", func() {
				handler.HandleGetServers(w, req)
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return OK status", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"guild_count":   3,
				"tracked_users": 150,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["guild_count"], ShouldEqual, 3)
				So(response["tracked_users"], ShouldEqual, 150)
			})
		})

		Convey("When handling a non-GET request", func() {
			req := httptest.NewRequest("POST", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return method not allowed", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}
