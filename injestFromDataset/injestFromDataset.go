package injestFromDataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"bitbucket.org/jayflux/mypodcasts_enclosures/injest"
	"github.com/spf13/viper"
)

// feedColumn is where the all-podcasts dataset keeps the feed url
const feedColumn = 3

// FeedURLs reads the feed urls out of a tab separated dataset
func FeedURLs(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %v", err)
	}

	var urls []string
	for _, each := range records {
		if len(each) > feedColumn && each[feedColumn] != "" {
			urls = append(urls, each[feedColumn])
		}
	}
	return urls, nil
}

// CrawlDataset injests every feed in the configured dataset file
func CrawlDataset() error {
	viper.SetDefault("dataset.path", "/var/local/all-podcasts-dataset/a.tsv")
	file, err := os.Open(viper.GetString("dataset.path"))
	if err != nil {
		return err
	}
	defer file.Close()

	feedURLs, err := FeedURLs(file)
	if err != nil {
		return err
	}

	urls := make(chan string)
	status := make(chan int)
	go injest.Injest(urls, status)

	for _, feedURL := range feedURLs {
		urls <- feedURL
	}
	close(urls)
	<-status
	return nil
}
