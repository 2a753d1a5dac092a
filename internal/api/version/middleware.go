// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"encoding/json"
	"net/http"
)

// Middleware extracts the API version from the request header and
// stores it in the request context. Unknown versions are rejected with
// 400 so clients built against a newer server fail loudly.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := r.Header.Get(Header)
		if version == "" {
			version = LatestVersion
		}
		if !IsSupported(version) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"code":    "BAD_REQUEST",
					"message": "unsupported API version " + version,
				},
			})
			return
		}

		w.Header().Set(Header, version)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), version)))
	})
}
