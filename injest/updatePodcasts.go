package injest

import (
	"fmt"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
)

// UpdateNewPodcasts re-injests podcasts which have never been fetched
func UpdateNewPodcasts() error {
	return injestQuery("select feed_url from podcasts where last_fetch is NULL")
}

// UpdatePodcasts re-injests podcasts which are due a poll
func UpdatePodcasts() error {
	logger.Log.Info("Performing update on podcasts..")
	return injestQuery("select feed_url from podcasts where last_fetch is NULL or extract('epoch' from age(now(), last_fetch))/3600 > poll_frequency")
}

func injestQuery(query string) error {
	rows, err := models.DB().Query(query)
	if err != nil {
		return fmt.Errorf("error in update query: %v", err)
	}

	// read every URL first so the connection is free while we injest
	var feedURLs []string
	for rows.Next() {
		var feedURL string
		if err := rows.Scan(&feedURL); err != nil {
			rows.Close()
			return err
		}
		feedURLs = append(feedURLs, feedURL)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	urls := make(chan string, len(feedURLs))
	status := make(chan int)
	for _, feedURL := range feedURLs {
		urls <- feedURL
	}
	close(urls)
	go Injest(urls, status)
	<-status
	return nil
}
