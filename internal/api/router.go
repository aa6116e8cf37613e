// Package api wires the HTTP surface: JSON handlers over the services,
// the realtime WebSocket feed, and operational endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmusial/convoy/internal/auth"
	"github.com/tmusial/convoy/internal/avatars"
	"github.com/tmusial/convoy/internal/journey"
	"github.com/tmusial/convoy/internal/metrics"
	"github.com/tmusial/convoy/internal/middleware"
	"github.com/tmusial/convoy/internal/realtime"
	"github.com/tmusial/convoy/internal/service"
	"github.com/tmusial/convoy/internal/storage"
)

// Handler owns all HTTP handlers and their dependencies.
type Handler struct {
	Auth         auth.Authenticator
	JWT          *auth.JWTManager
	Users        storage.UserStore
	Groups       *service.GroupService
	Markers      *service.MarkerService
	Locations    *service.LocationService
	Destinations *service.DestinationService
	Directory    *service.DirectoryService
	Journeys     *journey.Manager
	Hub          *realtime.Hub
	Avatars      *avatars.Store
}

// Routes builds the full router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(metrics.Instrument)
	r.Use(middleware.RequestLogger)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/avatars/*", http.StripPrefix("/avatars/",
		http.FileServer(http.Dir(h.Avatars.Dir()))))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		// The destination directory is browsable before login.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(h.JWT))

			r.Get("/categories", h.handleListCategories)
			r.Get("/destinations", h.handleListDestinations)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.JWT))

			r.Get("/users/me", h.handleCurrentUser)
			r.Patch("/users/me", h.handleUpdateProfile)
			r.Post("/users/me/avatar", h.handleUploadAvatar)

			r.Post("/locations", h.handleRecordLocation)

			r.Post("/destinations/import", h.handleImportDestination)
			r.Get("/places/search", h.handleSearchPlaces)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", h.handleListGroups)
				r.Post("/", h.handleCreateGroup)
				r.Post("/join", h.handleJoinByCode)

				r.Route("/{groupID}", func(r chi.Router) {
					r.Get("/", h.handleGetGroup)
					r.Delete("/", h.handleDeleteGroup)
					r.Post("/leave", h.handleLeaveGroup)
					r.Post("/kick", h.handleKickMember)
					r.Put("/destination", h.handleSetGroupDestination)
					r.Post("/requests/{userID}/approve", h.handleApproveRequest)
					r.Post("/requests/{userID}/reject", h.handleRejectRequest)

					r.Get("/members", h.handleGroupDirectory)
					r.Get("/locations", h.handleGroupLocations)

					r.Route("/journey", func(r chi.Router) {
						r.Get("/", h.handleJourneyState)
						r.Post("/start", h.handleJourneyStart)
						r.Post("/end", h.handleJourneyEnd)
						r.Post("/follow", h.handleJourneyFollow)
					})

					r.Route("/markers", func(r chi.Router) {
						r.Get("/", h.handleListMarkers)
						r.Post("/", h.handleAddMarker)
						r.Delete("/waypoints", h.handleClearWaypoints)
						r.Route("/{markerID}", func(r chi.Router) {
							r.Put("/", h.handleUpdateMarker)
							r.Delete("/", h.handleDeleteMarker)
							r.Post("/waypoint", h.handleAddWaypoint)
							r.Delete("/waypoint", h.handleRemoveWaypoint)
						})
					})
				})
			})
		})
	})

	// The realtime feed authenticates via Bearer header or ?token=.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.JWT))
		r.Get("/ws/groups/{groupID}", h.handleGroupFeed)
	})

	return r
}
