// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package database stores the movie catalog and reviews in DuckDB.

Tables:
  - movies: catalog entries; genres are a JSON array column
  - reviews: review text and rating, plus the derived sentiment label and
    polarity written back after classification

The recommendation core never touches this package. Handlers load a catalog
snapshot and a reviews-by-movie map through CatalogReader, which guards reads
with a circuit breaker so a wedged database fails fast with ErrUnavailable
instead of piling up requests.

Writes bump a data version. The API folds it into response cache keys, so a
new movie or review invalidates cached recommendations without explicit
purges.
*/
package database
