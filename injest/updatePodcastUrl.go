/*
	checkPodcastUrl will check the URL and see if it needs updating.
	It does this in 2 ways, first we check if there's been a 301 redirect, if there has then we do a
	lookup on the old URL and if there's a match we update it with the new URL.

	The second option is to check for a flag in the metadata to say the feed has been moved
	More info: https://help.apple.com/itc/podcasts_connect/?lang=en#/itca489031e0
*/

package injest

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func checkPodcastUrl(url string) (string, error) {
	timeout := viper.GetDuration("injest.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{
		CheckRedirect: redirectPolicyFunc,
		Timeout:       timeout,
	}

	newEndpoint, err := fetchCanonicalUrl(client, url)
	if err != nil {
		return "", err
	}
	if newEndpoint == url {
		return url, nil
	}

	logger.Log.WithFields(logrus.Fields{"from": url, "to": newEndpoint}).Info("feed has moved")
	db := models.DB()
	exists, err := urlExistsInDB(db, url)
	if err != nil {
		return "", err
	}
	if exists {
		logger.Log.Info("Old URL exists, updating to new URL before further injest...")
		if err := updatePodcastUrl(db, url, newEndpoint); err != nil {
			return "", err
		}
	}
	return newEndpoint, nil
}

func updatePodcastUrl(db *sql.DB, oldUrl string, newUrl string) error {
	if _, err := db.Exec("UPDATE podcasts SET feed_url = $1 WHERE feed_url = $2", newUrl, oldUrl); err != nil {
		return fmt.Errorf("updatePodcastUrl: %v", err)
	}
	return nil
}

func urlExistsInDB(db *sql.DB, url string) (bool, error) {
	var urlColumn string
	err := db.QueryRow("SELECT feed_url FROM podcasts WHERE feed_url = $1", url).Scan(&urlColumn)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("urlExistsInDB: %v", err)
	default:
		return true, nil
	}
}

// We don't follow any redirects and check the response object to see if its a 301
func redirectPolicyFunc(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}

// fetchCanonicalUrl returns the permanent location of a feed, which is the
// feed itself unless the server answers with a 301 or 308
func fetchCanonicalUrl(client *http.Client, feed string) (string, error) {
	resp, err := client.Get(feed)
	if err != nil {
		return "", fmt.Errorf("error fetching feed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently && resp.StatusCode != http.StatusPermanentRedirect {
		return feed, nil
	}

	location, err := resp.Location()
	if err != nil {
		return feed, nil
	}
	return location.String(), nil
}
