package injest

import (
	"strconv"
	"strings"

	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/cnf/structhash"
	"github.com/mmcdole/gofeed"
)

// EnclosureAttributes turns a parsed enclosure into the attribute map that
// models.PodcastEnclosureFromMap reads.
// gofeed keeps length as the raw attribute text, so it is converted here,
// lengths that aren't a non-negative base 10 number are dropped.
func EnclosureAttributes(enc *gofeed.Enclosure) map[string]interface{} {
	attrs := make(map[string]interface{})
	if enc == nil {
		return attrs
	}

	if url := strings.TrimSpace(enc.URL); url != "" {
		attrs["url"] = url
	}
	if length, err := strconv.ParseInt(strings.TrimSpace(enc.Length), 10, 64); err == nil && length >= 0 {
		attrs["length"] = length
	}
	if mimeType := strings.TrimSpace(enc.Type); mimeType != "" {
		attrs["type"] = mimeType
	}
	return attrs
}

// ItemEnclosure returns the first usable enclosure of an item.
// Plenty of episodes have no audio attached, that isn't an error.
func ItemEnclosure(item *gofeed.Item) (*models.PodcastEnclosure, bool) {
	if item == nil {
		return nil, false
	}
	for _, enc := range item.Enclosures {
		if record, ok := models.PodcastEnclosureFromMap(EnclosureAttributes(enc)); ok {
			return record, true
		}
	}
	return nil, false
}

// Digest is a hash of the whole item, if it matches what is stored nothing
// about the episode has changed
// TODO: change to sha256
func Digest(item *gofeed.Item) (string, error) {
	return structhash.Hash(item, 1)
}
