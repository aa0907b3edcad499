package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeStore struct {
	enclosures map[string]models.PodcastEnclosure
	podcasts   map[string]models.Podcast
	err        error
}

func (f fakeStore) GetEpisodeEnclosure(id string) (*models.PodcastEnclosure, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	enc, ok := f.enclosures[id]
	if !ok {
		return nil, false, nil
	}
	return &enc, true, nil
}

func (f fakeStore) GetPodcast(id string) (models.Podcast, error) {
	if f.err != nil {
		return models.Podcast{}, f.err
	}
	p, ok := f.podcasts[id]
	if !ok {
		return p, models.ErrPodcastNotFound
	}
	return p, nil
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]interface{} {
	var m map[string]interface{}
	So(json.Unmarshal(rec.Body.Bytes(), &m), ShouldBeNil)
	return m
}

func TestNormalizeEnclosure(t *testing.T) {
	Convey("Given the API", t, func() {
		router := NewRouter(fakeStore{})

		Convey("A full enclosure comes back unchanged", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"url":"http://x/a.mp3","length":12216320,"type":"audio/mpeg"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldEqual, `{"length":12216320,"type":"audio/mpeg","url":"http://x/a.mp3"}`+"\n")
		})

		Convey("The legacy key is rewritten to url", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"enclosure":"http://x/a.mp3","bitrate":128}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec), ShouldResemble, map[string]interface{}{"url": "http://x/a.mp3"})
		})

		Convey("A string length is dropped", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"url":"http://x/a.mp3","length":"12216320"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec), ShouldNotContainKey, "length")
		})

		Convey("No url is unprocessable", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"type":"audio/mpeg"}`)
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
		})

		Convey("Broken JSON is a bad request", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"url":`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Data after the object is a bad request", func() {
			rec := do(router, "POST", "/enclosures/normalize", `{"url":"http://x/a.mp3"} {"garbage":true`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestEpisodeEnclosure(t *testing.T) {
	Convey("Given a store with one enclosure", t, func() {
		store := fakeStore{enclosures: map[string]models.PodcastEnclosure{
			"ep1": models.NewPodcastEnclosure().WithURL("http://x/a.mp3").WithType("audio/mpeg"),
		}}
		router := NewRouter(store)

		Convey("It is served as its attribute map", func() {
			rec := do(router, "GET", "/episodes/ep1/enclosure", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")
			So(decode(rec), ShouldResemble, map[string]interface{}{"url": "http://x/a.mp3", "type": "audio/mpeg"})
		})

		Convey("An episode without one is a 404", func() {
			rec := do(router, "GET", "/episodes/ep2/enclosure", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Store errors are a 500", func() {
			store.err = errors.New("connection refused")
			rec := do(NewRouter(store), "GET", "/episodes/ep1/enclosure", "")
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestPodcast(t *testing.T) {
	Convey("Given a podcast with an episode", t, func() {
		enc := models.NewPodcastEnclosure().WithURL("http://x/a.mp3").WithLength(10)
		store := fakeStore{podcasts: map[string]models.Podcast{
			"p1": {ID: "p1", Title: "Weather Report", Episodes: []models.PodcastEpisode{{ID: "ep1", Enclosure: &enc}}},
		}}
		router := NewRouter(store)

		Convey("Its episodes carry the enclosure", func() {
			rec := do(router, "GET", "/podcasts/p1", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var p models.Podcast
			So(json.Unmarshal(rec.Body.Bytes(), &p), ShouldBeNil)
			So(p.Episodes, ShouldHaveLength, 1)
			So(p.Episodes[0].Enclosure.Equal(enc), ShouldBeTrue)
		})

		Convey("An unknown podcast is a 404", func() {
			rec := do(router, "GET", "/podcasts/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Health is always ok", t, func() {
		rec := do(NewRouter(fakeStore{}), "GET", "/health", "")
		So(rec.Code, ShouldEqual, http.StatusOK)
	})
}
