package injest

import (
	"regexp"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// UUIDRegex matches a version 4 UUID, compiled once for performance
var UUIDRegex = regexp.MustCompile("^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-4[a-fA-F0-9]{3}-[89abAB][a-fA-F0-9]{3}-[a-fA-F0-9]{12}$")

// Injest reads feed URLs until input is closed, then sends on status
func Injest(input <-chan string, status chan<- int) {
	for url := range input {
		if err := injestFeed(url); err != nil {
			logger.Log.WithFields(logrus.Fields{"feed": url}).Error(err)
		}
	}

	// Signal that we have finished
	status <- 1
}

func injestFeed(url string) error {
	// make sure we're fetching the correct URL, if there's been a 301, this will use the new endpoint
	// This will also update the DB if there has been a redirect
	url, err := checkPodcastUrl(url)
	if err != nil {
		return err
	}

	fp := gofeed.NewParser()
	feed, err := fp.ParseURL(url)
	if err != nil {
		return err
	}

	return process(feed, url)
}
