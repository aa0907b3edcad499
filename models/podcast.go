package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Podcast represents the structure of a podcast
type Podcast struct {
	ID          string           `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	FeedURL     string           `db:"feed_url" json:"feedURL"`
	Episodes    []PodcastEpisode `db:"episodes" json:"episodes"`
}

// ErrPodcastNotFound is returned by GetPodcast for an unknown id
var ErrPodcastNotFound = fmt.Errorf("podcast not found")

// GetPodcast returns a Podcast with its latest episodes
func GetPodcast(id string) (Podcast, error) {
	var podcast Podcast
	err := db.QueryRow("SELECT id, title, description, feed_url FROM podcasts WHERE id = $1", id).
		Scan(&podcast.ID, &podcast.Title, &podcast.Description, &podcast.FeedURL)
	switch {
	case err == sql.ErrNoRows:
		return podcast, ErrPodcastNotFound
	case err != nil:
		return podcast, fmt.Errorf("GetPodcast: %v", err)
	}

	podcast.Episodes, err = podcast.GetEpisodes()
	return podcast, err
}

// GetEpisodes fetches the first 20 episodes related to this podcast
func (p Podcast) GetEpisodes() ([]PodcastEpisode, error) {
	// First lets get a date from the past
	datetime := time.Date(1990, time.August, 24, 11, 0, 0, 0, time.UTC)
	return GetPodcastEpisodes(p.ID, datetime)
}
