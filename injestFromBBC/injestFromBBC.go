package injestFromBBC

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bitbucket.org/jayflux/mypodcasts_enclosures/injest"
	"github.com/spf13/viper"
)

// PodcastsObj is the part of https://www.bbc.co.uk/podcasts.json we use
type PodcastsObj struct {
	Podcasts []struct {
		Title   string `json:"title"`
		FeedURL string `json:"feedUrl"`
	} `json:"podcasts"`
}

// FeedURLs reads the feed urls out of a podcasts.json document
func FeedURLs(r io.Reader) ([]string, error) {
	var podcastResult PodcastsObj
	if err := json.NewDecoder(r).Decode(&podcastResult); err != nil {
		return nil, fmt.Errorf("unable to decode podcasts.json: %v", err)
	}

	var urls []string
	for _, podcast := range podcastResult.Podcasts {
		if podcast.FeedURL != "" {
			urls = append(urls, podcast.FeedURL)
		}
	}
	return urls, nil
}

// CrawlBBC injests every feed listed in BBC's podcasts.json
func CrawlBBC() error {
	viper.SetDefault("bbc.url", "https://www.bbc.co.uk/podcasts.json")
	resp, err := http.Get(viper.GetString("bbc.url"))
	if err != nil {
		return fmt.Errorf("fetching the podcasts.json from BBC: %v", err)
	}
	defer resp.Body.Close()

	feedURLs, err := FeedURLs(resp.Body)
	if err != nil {
		return err
	}

	// We don't want to overload the injestor, so lets buffer to 5
	urls := make(chan string, 5)
	status := make(chan int)
	go injest.Injest(urls, status)

	for _, feedURL := range feedURLs {
		urls <- feedURL
	}

	close(urls)
	<-status // this lets us know that the injester has finished
	return nil
}
