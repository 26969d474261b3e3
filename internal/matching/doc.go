// Package matching implements the track-to-file matching pipeline: an
// ordered list of strategies that consume the tracks still unmatched after
// prior strategies and emit scored, tier-tagged matches. Strategies never
// mutate their inputs and never re-declare a track that already has a match.
package matching
