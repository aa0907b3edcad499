package backup

import (
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	. "github.com/smartystreets/goconvey/convey"
)

func gzipped(s string) *bytes.Buffer {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(s))
	gz.Close()
	return &buf
}

func TestExportImport(t *testing.T) {
	Convey("Given some enclosures", t, func() {
		encs := []models.EpisodeEnclosure{
			{ID: "ep1", Enclosure: models.NewPodcastEnclosure().WithURL("http://x/a.mp3").WithLength(12216320).WithType("audio/mpeg")},
			{ID: "ep2", Enclosure: models.NewPodcastEnclosure().WithURL("http://x/b.mp3")},
		}

		Convey("They come back equal after a snapshot", func() {
			var buf bytes.Buffer
			So(Export(encs, &buf), ShouldBeNil)

			back, err := Import(&buf)
			So(err, ShouldBeNil)
			So(back, ShouldHaveLength, 2)
			for i := range encs {
				So(back[i].ID, ShouldEqual, encs[i].ID)
				So(back[i].Enclosure.Equal(encs[i].Enclosure), ShouldBeTrue)
			}
		})
	})

	Convey("Old snapshots using the enclosure key are read", t, func() {
		back, err := Import(gzipped(`{"id":"ep1","enclosure":{"enclosure":"http://x/a.mp3","length":7}}` + "\n\n"))
		So(err, ShouldBeNil)
		So(back, ShouldHaveLength, 1)
		So(*back[0].Enclosure.URL, ShouldEqual, "http://x/a.mp3")
		So(*back[0].Enclosure.Length, ShouldEqual, int64(7))
	})

	Convey("Lines without a url are skipped", t, func() {
		back, err := Import(gzipped(`{"id":"ep1","enclosure":{"type":"audio/mpeg"}}` + "\n" + `{"id":"ep2","enclosure":{"url":"http://x/b.mp3"}}` + "\n"))
		So(err, ShouldBeNil)
		So(back, ShouldHaveLength, 1)
		So(back[0].ID, ShouldEqual, "ep2")

		Convey("So are null and missing enclosures", func() {
			back, err := Import(gzipped(`{"id":"ep1","enclosure":{"url":"http://x/a.mp3"}}` + "\n" +
				`{"id":"ep2","enclosure":null}` + "\n" +
				`{"id":"ep3"}` + "\n" +
				`{"id":"ep4","enclosure":{"url":"http://x/d.mp3"}}` + "\n"))
			So(err, ShouldBeNil)
			So(back, ShouldHaveLength, 2)
			So(back[0].ID, ShouldEqual, "ep1")
			So(back[1].ID, ShouldEqual, "ep4")
		})
	})

	Convey("Broken snapshots are errors", t, func() {
		_, err := Import(bytes.NewBufferString("not gzip"))
		So(err, ShouldNotBeNil)

		_, err = Import(gzipped("{\"id\":\n"))
		So(err, ShouldNotBeNil)
	})
}

func TestSnapshotName(t *testing.T) {
	Convey("Snapshot names sort by time", t, func() {
		at := time.Date(2018, time.December, 20, 9, 30, 0, 0, time.UTC)
		So(SnapshotName(at), ShouldEqual, "enclosure-backups/enclosures-2018-12-20T09-30-00.jsonl.gz")
	})
}
