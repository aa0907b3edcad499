package injest

import (
	"database/sql"
	"fmt"
	"time"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/mmcdole/gofeed"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// process takes a parsed feed and writes the podcast and its episodes,
// a new podcast gets a generated ID
func process(feed *gofeed.Feed, url string) error {
	db := models.DB()

	// Is there a new-feed element? And is it set to the same URL? (BBC ones seem to point to the same URL)
	if feed.ITunesExt != nil && feed.ITunesExt.NewFeedURL != "" && feed.ITunesExt.NewFeedURL != url {
		logger.Log.WithField("feed", url).Infof("new feed detected from itunes-new-feed-url: %s", feed.ITunesExt.NewFeedURL)

		// If the old URL exists we swap it now, otherwise we would end up creating a new podcast
		exists, err := urlExistsInDB(db, url)
		if err != nil {
			return err
		}
		if exists {
			if err := updatePodcastUrl(db, url, feed.ITunesExt.NewFeedURL); err != nil {
				return err
			}
		}
		url = feed.ITunesExt.NewFeedURL
	}

	id, exists, err := podcastExists(db, url)
	if err != nil {
		return err
	}
	if exists {
		err = updatePodcastMetadata(db, feed, url)
	} else {
		id = generateNewID()
		err = createNewPodcast(db, id, feed, url)
	}
	if err != nil {
		return err
	}

	for _, episode := range feed.Items {
		if err := processPodcastEpisode(db, episode, id); err != nil {
			// one broken episode shouldn't stop the rest of the feed
			logger.Log.WithFields(logrus.Fields{"feed": url, "guid": episode.GUID}).Error(err)
		}
	}
	return nil
}

// There are 3 states we need to work out...
// Episode exists and its digest matches, nothing to do
// Episode exists but something changed
// Episode does not exist
func processPodcastEpisode(db *sql.DB, episode *gofeed.Item, parent string) error {
	digest, err := Digest(episode)
	if err != nil {
		return fmt.Errorf("hashing episode: %v", err)
	}

	var storedDigest string
	err = db.QueryRow("SELECT digest FROM podcast_episodes WHERE guid = $1", episode.GUID).Scan(&storedDigest)
	switch {
	case err == sql.ErrNoRows:
		return addEpisodeInDatabase(db, episode, parent, digest)
	case err != nil:
		return err
	case storedDigest == digest:
		return nil
	default:
		logger.Log.WithField("guid", episode.GUID).Info("change detected, reinjesting episode")
		return updateEpisodeInDatabase(db, episode, parent, digest)
	}
}

// enclosureColumn is what gets written to the jsonb column, NULL for an
// episode without audio
func enclosureColumn(episode *gofeed.Item) interface{} {
	enc, ok := ItemEnclosure(episode)
	if !ok {
		return nil
	}
	return *enc
}

func addEpisodeInDatabase(db *sql.DB, episode *gofeed.Item, parent, digest string) error {
	id := generateIDForPodcast(episode.GUID)
	_, err := db.Exec("INSERT INTO podcast_episodes (id, guid, title, description, published, published_parsed, enclosure, digest, last_processed, parent) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		id, episode.GUID, episode.Title, episode.Description, episode.Published, episode.PublishedParsed, enclosureColumn(episode), digest, time.Now().UTC(), parent)
	if err != nil {
		return fmt.Errorf("addEpisodeInDatabase: could not write episode: %v", err)
	}
	return nil
}

func updateEpisodeInDatabase(db *sql.DB, episode *gofeed.Item, parent, digest string) error {
	_, err := db.Exec("UPDATE podcast_episodes SET (title, description, published, published_parsed, enclosure, digest, last_processed, parent) = ($2, $3, $4, $5, $6, $7, $8, $9) WHERE guid = $1",
		episode.GUID, episode.Title, episode.Description, episode.Published, episode.PublishedParsed, enclosureColumn(episode), digest, time.Now().UTC(), parent)
	if err != nil {
		return fmt.Errorf("updateEpisodeInDatabase: could not write episode: %v", err)
	}
	return nil
}

func updatePodcastMetadata(db *sql.DB, feed *gofeed.Feed, url string) error {
	_, err := db.Exec("UPDATE podcasts SET (title, description, link, language, copyright, last_processed, last_fetch) = ($1, $2, $3, $4, $5, $6, $6) WHERE feed_url = $7",
		feed.Title, feed.Description, feed.Link, feed.Language, feed.Copyright, time.Now().UTC(), url)
	if err != nil {
		return fmt.Errorf("updatePodcastMetadata: %v", err)
	}
	return nil
}

func createNewPodcast(db *sql.DB, id string, feed *gofeed.Feed, url string) error {
	_, err := db.Exec("INSERT INTO podcasts (id, title, description, link, language, copyright, last_processed, last_fetch, feed_url) VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8)",
		id, feed.Title, feed.Description, feed.Link, feed.Language, feed.Copyright, time.Now().UTC(), url)
	if err != nil {
		return fmt.Errorf("createNewPodcast: %v", err)
	}
	return nil
}

// podcastExists looks the podcast up by feed URL, at this point we won't know the GUID
func podcastExists(db *sql.DB, url string) (string, bool, error) {
	var id string
	err := db.QueryRow("SELECT id FROM podcasts WHERE feed_url = $1", url).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("podcastExists: %v", err)
	default:
		return id, true, nil
	}
}

// GUID's of podcasts can vary a LOT
// Some podcasts have perfectly good GUIDS, and we should be able to re-use these
// Some podcasts use the URL as their GUID, this isn't a great ID as it could change (https, change of TLD, change of mp3, new domain)
// Some podcasts don't have any GUID at all, in which case we need to generate one
func generateIDForPodcast(guid string) string {
	if IsValidUUID(guid) {
		return guid
	}
	return generateNewID()
}

func generateNewID() string {
	return uuid.NewV4().String()
}

// IsValidUUID checks for a version 4 UUID
func IsValidUUID(uuid string) bool {
	return UUIDRegex.MatchString(uuid)
}
