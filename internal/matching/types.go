package matching

import "time"

// Track is a provider-scoped remote track. Identity is (ID, Provider).
// Rows are produced by ingestion and are read-only to the matcher.
type Track struct {
	ID         string
	Provider   string
	Name       string
	Artist     string
	Album      string
	AlbumID    string
	ArtistID   string
	Year       int
	ISRC       string
	DurationMS int64
	Normalized string
}

// DurationSeconds returns the track duration rounded to whole seconds, or 0
// when unknown.
func (t Track) DurationSeconds() int {
	if t.DurationMS <= 0 {
		return 0
	}
	return int((t.DurationMS + 500) / 1000)
}

// LibraryFile is a locally scanned audio file. Identity is the
// store-assigned ID; Path is the natural key.
type LibraryFile struct {
	ID          int64
	Path        string
	Title       string
	Artist      string
	Album       string
	Year        int
	Duration    int // seconds, 0 when unknown
	ISRC        string
	Normalized  string
	Size        int64
	ModTime     time.Time
	PartialHash string
	BitrateKbps int
}

// Match pairs a track with a library file at a given confidence.
type Match struct {
	TrackID  string
	Provider string
	FileID   int64
	Score    float64
	Method   Method
}

// Candidates narrows the file search space per track: track ID to the file
// IDs a later strategy may consider. A present-but-empty entry means "no
// candidates" (the track is skipped); a missing entry means "unfiltered".
type Candidates map[string][]int64
