// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader is the alternative to an Authorization bearer token.
const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards the admin API with a shared key, checked against
// its bcrypt hash. The key is read from "Authorization: Bearer <key>" or
// the X-Admin-Key header.
//
// With an empty hash every request is rejected, unless allowOpen is set:
// development runs without a configured key then pass through, and a
// warning is logged once here.
func RequireAdminKey(hash string, allowOpen bool) func(http.Handler) http.Handler {
	if hash == "" && allowOpen {
		slog.Warn("admin API is open: no ADMIN_KEY_HASH configured")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hash == "" {
				if allowOpen {
					next.ServeHTTP(w, r)
					return
				}
				writeError(w, http.StatusUnauthorized, "admin API key required")
				return
			}

			key := adminKey(r)
			if key == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				writeError(w, http.StatusUnauthorized, "admin API key required")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
				slog.Warn("admin key rejected", "remote", r.RemoteAddr, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "invalid admin API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func adminKey(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(AdminKeyHeader))
}
