package models

import (
	"database/sql"
	"fmt"
	"time"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
)

// The format of Published in the database - using reference time
var episodePublishedFormat = "Mon, 2 Jan 2006 15:04:05 -0700"

// The format of the API output - using reference time
var episodePublishedOutputFormat = "Jan 02, 2006"

// PodcastEpisode represents a single episode and the audio attached to it
type PodcastEpisode struct {
	ID              string            `db:"id" json:"id"`
	Title           string            `db:"title" json:"title"`
	Description     string            `db:"description" json:"description"`
	PublishedParsed string            `db:"published_parsed" json:"publishedParsed"`
	Published       string            `db:"published" json:"published"`
	ParentID        string            `db:"parent" json:"parentID"`
	Enclosure       *PodcastEnclosure `db:"enclosure" json:"enclosure,omitempty"`
}

// EpisodeEnclosure pairs an enclosure with the episode it belongs to
type EpisodeEnclosure struct {
	ID        string           `json:"id"`
	Enclosure PodcastEnclosure `json:"enclosure"`
}

// GetEpisodeEnclosure returns the enclosure of an episode, ok is false when
// the episode has none or does not exist
func GetEpisodeEnclosure(id string) (enc *PodcastEnclosure, ok bool, err error) {
	var raw []byte
	err = db.QueryRow("SELECT enclosure FROM podcast_episodes WHERE id = $1", id).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("GetEpisodeEnclosure: %v", err)
	}
	return decodeStoredEnclosure(id, raw)
}

// SaveEpisodeEnclosure replaces the enclosure of an episode, nil clears it
func SaveEpisodeEnclosure(id string, enc *PodcastEnclosure) error {
	var value interface{}
	if enc != nil {
		value = *enc
	}
	if _, err := db.Exec("UPDATE podcast_episodes SET enclosure = $1 WHERE id = $2", value, id); err != nil {
		return fmt.Errorf("SaveEpisodeEnclosure: %v", err)
	}
	return nil
}

// AllEnclosures returns every stored enclosure, used for snapshots
func AllEnclosures() ([]EpisodeEnclosure, error) {
	rows, err := db.Query("SELECT id, enclosure FROM podcast_episodes WHERE enclosure IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("AllEnclosures: %v", err)
	}
	defer rows.Close()

	var encs []EpisodeEnclosure
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("AllEnclosures: %v", err)
		}
		enc, ok, err := decodeStoredEnclosure(id, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			encs = append(encs, EpisodeEnclosure{ID: id, Enclosure: *enc})
		}
	}
	return encs, rows.Err()
}

// GetPodcastEpisodes returns up to 20 episodes published after datetime
// Example datetime from database - 2018-08-24T11:00:00Z
func GetPodcastEpisodes(id string, datetime time.Time) ([]PodcastEpisode, error) {
	rows, err := db.Query("SELECT id, title, description, published_parsed, published, parent, enclosure FROM podcast_episodes WHERE parent = $1 AND published_parsed > $2 ORDER BY published_parsed DESC LIMIT 20", id, datetime)
	if err != nil {
		return nil, fmt.Errorf("GetPodcastEpisodes: %v", err)
	}
	defer rows.Close()

	var podcastEpisodes []PodcastEpisode
	for rows.Next() {
		var podcastEpisode PodcastEpisode
		var raw []byte
		if err := rows.Scan(&podcastEpisode.ID, &podcastEpisode.Title, &podcastEpisode.Description, &podcastEpisode.PublishedParsed, &podcastEpisode.Published, &podcastEpisode.ParentID, &raw); err != nil {
			return nil, fmt.Errorf("GetPodcastEpisodes: %v", err)
		}
		enc, ok, err := decodeStoredEnclosure(podcastEpisode.ID, raw)
		if err != nil {
			return nil, err
		}
		if ok {
			podcastEpisode.Enclosure = enc
		}
		// Set the proper formatting for published
		podcastEpisode.formatPublished()
		podcastEpisodes = append(podcastEpisodes, podcastEpisode)
	}

	return podcastEpisodes, rows.Err()
}

func (p *PodcastEpisode) formatPublished() {
	t, err := time.Parse(episodePublishedFormat, p.Published)
	if err != nil {
		logger.Log.WithField("episode", p.ID).Debugf("unparseable published date %q", p.Published)
		return
	}
	p.Published = t.Format(episodePublishedOutputFormat)
}

// decodeStoredEnclosure goes through the attribute map rather than
// UnmarshalJSON, rows written before the column was renamed only have the
// "enclosure" key and a NULL column simply means no enclosure.
// A value that isn't an attribute object is logged and treated as no enclosure.
func decodeStoredEnclosure(id string, raw []byte) (*PodcastEnclosure, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false, nil
	}
	attrs, err := AttributesFromJSON(raw)
	if err != nil {
		logger.Log.WithField("episode", id).Warnf("ignoring stored enclosure: %v", err)
		return nil, false, nil
	}
	enc, ok := PodcastEnclosureFromMap(attrs)
	return enc, ok, nil
}
