package injestFromDataset

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFeedURLs(t *testing.T) {
	Convey("The fourth column holds the feed", t, func() {
		urls, err := FeedURLs(strings.NewReader("1\tWeather\ten\thttp://x/feed.rss\n2\tShort row\n3\tEmpty\ten\t\n"))
		So(err, ShouldBeNil)
		So(urls, ShouldResemble, []string{"http://x/feed.rss"})
	})
}
