// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/guildstats/internal/authz"
	"github.com/tomtom215/guildstats/internal/middleware"
)

// SetupChi builds the route table.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS())
	if router.compress {
		r.Use(chimiddleware.Compress(5))
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/health", router.handler.handleHealth)

		r.Route("/guilds/{guild}", func(r chi.Router) {
			r.Use(Authenticate(router.authenticator))

			read := router.authzMiddleware.Require(authz.ActionRead)
			write := router.authzMiddleware.Require(authz.ActionWrite)
			manage := router.authzMiddleware.Require(authz.ActionManage)

			// Partition lifecycle
			r.With(manage).Post("/", router.handler.handleCreateGuild)
			r.With(manage).Delete("/", router.handler.handleDropGuild)
			r.With(manage).Delete("/purge", router.handler.handlePurgeGuild)

			// Message writes
			r.With(write).Post("/messages", router.handler.handleAddMessages)
			r.With(write).Patch("/messages/{message}", router.handler.handleEditMessage)
			r.With(write).Delete("/messages/{message}", router.handler.handleDeleteMessage)

			// Analytics
			r.Group(func(r chi.Router) {
				r.Use(read)
				r.Get("/count", router.handler.handleCount)
				r.Get("/words", router.handler.handleWords)
				r.Get("/letters", router.handler.handleLetters)
				r.Get("/channels/top", router.handler.handleTopChannels)
				r.Get("/leaderboard", router.handler.handleLeaderboard)
				r.Get("/activity", router.handler.handleActivity)
				r.Route("/users/{user}", func(r chi.Router) {
					r.Get("/mentions", router.handler.handleMentions)
					r.Get("/mentioned", router.handler.handleMostMentioned)
					r.Get("/mentioned-by", router.handler.handleMostMentionedBy)
					r.Get("/profile", router.handler.handleProfile)
				})
			})

			// Identity
			r.With(read).Get("/aliases", router.handler.handleListAliases)
			r.With(write).Put("/aliases", router.handler.handleAddAlias)
			r.With(write).Delete("/aliases", router.handler.handleRemoveAlias)
			r.With(read).Get("/ignores", router.handler.handleListIgnores)
			r.With(write).Put("/ignores", router.handler.handleAddIgnore)
			r.With(write).Delete("/ignores", router.handler.handleRemoveIgnore)

			// Settings
			r.With(read).Get("/config", router.handler.handleListConfig)
			r.With(read).Get("/config/{key}", router.handler.handleGetConfig)
			r.With(write).Put("/config/{key}", router.handler.handleSetConfig)
			r.With(write).Delete("/config/{key}", router.handler.handleDeleteConfig)
		})
	})

	return r
}
