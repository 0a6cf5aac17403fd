// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/middleware"
)

// cacheKey identifies a cacheable response. The lexicon and data versions
// make entries from before a lexicon publish or a catalog write unreachable.
func (h *Handler) cacheKey(route string, params ...string) string {
	var b strings.Builder
	b.WriteString(route)
	for _, p := range params {
		b.WriteByte('|')
		b.WriteString(p)
	}
	b.WriteString("|lex=")
	b.WriteString(strconv.FormatUint(h.engine.Lexicon().Version(), 10))
	b.WriteString("|data=")
	b.WriteString(strconv.FormatInt(h.catalog.DataVersion(), 10))
	return b.String()
}

// serveCached writes the cached response for key, if any.
func (h *Handler) serveCached(w http.ResponseWriter, key string, start time.Time) bool {
	data, ok := h.cache.Get(key)
	metrics.RecordCacheLookup(ok)
	if !ok {
		w.Header().Set(middleware.CacheStatusHeader, "MISS")
		return false
	}
	w.Header().Set(middleware.CacheStatusHeader, "HIT")
	respondSuccess(w, http.StatusOK, data, start, true)
	return true
}
