package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// maxBodySize caps the attribute objects clients can post
const maxBodySize = 64 << 10

// Store is what the handlers need from the database
type Store interface {
	GetEpisodeEnclosure(id string) (*models.PodcastEnclosure, bool, error)
	GetPodcast(id string) (models.Podcast, error)
}

type modelStore struct{}

func (modelStore) GetEpisodeEnclosure(id string) (*models.PodcastEnclosure, bool, error) {
	return models.GetEpisodeEnclosure(id)
}

func (modelStore) GetPodcast(id string) (models.Podcast, error) {
	return models.GetPodcast(id)
}

// API Entrypoint to the API
func API() error {
	addr := viper.GetString("api.address")
	logger.Log.WithField("address", addr).Info("API listening")
	return http.ListenAndServe(addr, NewRouter(modelStore{}))
}

// NewRouter wires the handlers to a store
func NewRouter(store Store) *mux.Router {
	h := handlers{store: store}
	router := mux.NewRouter()
	router.HandleFunc("/health", Health).Methods("GET")
	router.HandleFunc("/episodes/{id}/enclosure", h.episodeEnclosure).Methods("GET")
	router.HandleFunc("/podcasts/{id}", h.podcast).Methods("GET")
	router.HandleFunc("/enclosures/normalize", NormalizeEnclosure).Methods("POST")
	return router
}

type handlers struct {
	store Store
}

// Health is used by the load balancer
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h handlers) episodeEnclosure(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	enc, ok, err := h.store.GetEpisodeEnclosure(id)
	if err != nil {
		logger.Log.WithField("episode", id).Error(err)
		writeError(w, http.StatusInternalServerError, "could not load enclosure")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "episode has no enclosure")
		return
	}
	writeJSON(w, http.StatusOK, enc.Map())
}

func (h handlers) podcast(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	podcast, err := h.store.GetPodcast(id)
	switch {
	case err == models.ErrPodcastNotFound:
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		logger.Log.WithField("podcast", id).Error(err)
		writeError(w, http.StatusInternalServerError, "could not load podcast")
	default:
		writeJSON(w, http.StatusOK, podcast)
	}
}

// NormalizeEnclosure takes the raw attributes of an enclosure and returns
// them in canonical form, 422 if there is no url to build one from
func NormalizeEnclosure(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	attrs, err := models.AttributesFromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	enc, ok := models.PodcastEnclosureFromMap(attrs)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "enclosure needs a url")
		return
	}
	writeJSON(w, http.StatusOK, enc.Map())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error(err)
	}
}
