package briefing

import (
	"strings"
	"time"
)

type Playlist struct {
	Mood string
	URL  string
}

var Playlists = []Playlist{
	{"Morning Chill", "https://open.spotify.com/playlist/37i9dQZF1DX2sUQwD7tbmL"},
	{"Focus Flow", "https://open.spotify.com/playlist/37i9dQZF1DWWQRwui0ExPn"},
	{"Upbeat Energy", "https://open.spotify.com/playlist/37i9dQZF1DX6VdMW310YC7"},
	{"Lo-Fi Study", "https://open.spotify.com/playlist/0vvXsWCC9xrXsKd4FyS8kM"},
}

// DefaultMood picks a playlist by time of day.
func DefaultMood(now time.Time) string {
	h := now.Hour()
	switch {
	case h >= 18:
		return "Upbeat Energy"
	case h >= 12:
		return "Focus Flow"
	default:
		return "Morning Chill"
	}
}

// MatchPlaylist returns the first playlist whose name appears in response.
func MatchPlaylist(response string) (Playlist, bool) {
	for _, p := range Playlists {
		if strings.Contains(response, p.Mood) {
			return p, true
		}
	}
	return Playlist{}, false
}

func FindPlaylist(mood string) (Playlist, bool) {
	for _, p := range Playlists {
		if p.Mood == mood {
			return p, true
		}
	}
	return Playlist{}, false
}
