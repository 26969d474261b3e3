// Package normalize implements the shared comparison-key rule applied to
// track and library-file metadata at the ingestion boundary. Both sides of
// the matcher must be keyed with the same rule or exact and fuzzy comparison
// silently degrade.
package normalize
