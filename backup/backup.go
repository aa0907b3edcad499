// Package backup keeps gzipped snapshots of every stored enclosure in
// DigitalOcean Spaces. Each line of a snapshot is one episode:
//
//	{"id":"<episode id>","enclosure":{"url":"...","length":123,"type":"audio/mpeg"}}
package backup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"bitbucket.org/jayflux/mypodcasts_enclosures/logger"
	"bitbucket.org/jayflux/mypodcasts_enclosures/models"
	"github.com/minio/minio-go"
	"github.com/spf13/viper"
)

// prefix of every snapshot object in the bucket
const prefix = "enclosure-backups/"

type line struct {
	ID        string          `json:"id"`
	Enclosure json.RawMessage `json:"enclosure"`
}

// Export writes the enclosures to w as gzipped JSON lines
func Export(encs []models.EpisodeEnclosure, w io.Writer) error {
	gz := gzip.NewWriter(w)
	enc := json.NewEncoder(gz)
	for _, e := range encs {
		if err := enc.Encode(e); err != nil {
			gz.Close()
			return fmt.Errorf("writing episode %s: %v", e.ID, err)
		}
	}
	return gz.Close()
}

// Import reads a snapshot written by Export. Lines whose enclosure is missing,
// null or has no url are skipped, a line that isn't JSON fails the whole import.
func Import(r io.Reader) ([]models.EpisodeEnclosure, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %v", err)
	}
	defer gz.Close()

	var (
		encs    []models.EpisodeEnclosure
		skipped int
	)
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	for n := 1; scanner.Scan(); n++ {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(scanner.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("snapshot line %d: %v", n, err)
		}
		if raw := bytes.TrimSpace(l.Enclosure); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			skipped++
			continue
		}
		attrs, err := models.AttributesFromJSON(l.Enclosure)
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: %v", n, err)
		}
		enc, ok := models.PodcastEnclosureFromMap(attrs)
		if !ok {
			skipped++
			continue
		}
		encs = append(encs, models.EpisodeEnclosure{ID: l.ID, Enclosure: *enc})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot: %v", err)
	}
	if skipped > 0 {
		logger.Log.WithField("skipped", skipped).Warn("snapshot lines without a url were skipped")
	}
	return encs, nil
}

// NewClient connects to Spaces with the configured keys
func NewClient() (*minio.Client, error) {
	return minio.New(viper.GetString("spaces.endpoint"), viper.GetString("spaces.key"), viper.GetString("spaces.secret"), viper.GetBool("spaces.ssl"))
}

// SnapshotName is the object name for a snapshot taken at t
func SnapshotName(t time.Time) string {
	return prefix + "enclosures-" + t.UTC().Format("2006-01-02T15-04-05") + ".jsonl.gz"
}

// Upload exports the enclosures and puts them in the bucket under name
func Upload(client *minio.Client, name string, encs []models.EpisodeEnclosure) error {
	var buf bytes.Buffer
	if err := Export(encs, &buf); err != nil {
		return err
	}

	bucket := viper.GetString("spaces.bucket")
	_, err := client.PutObject(bucket, name, &buf, int64(buf.Len()), minio.PutObjectOptions{ContentType: "application/gzip"})
	if err != nil {
		return fmt.Errorf("uploading %s: %v", name, err)
	}
	logger.Log.WithField("object", name).Infof("[backup] uploaded %d enclosures", len(encs))
	return nil
}

// Download fetches and imports the snapshot called name
func Download(client *minio.Client, name string) ([]models.EpisodeEnclosure, error) {
	obj, err := client.GetObject(viper.GetString("spaces.bucket"), name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %v", name, err)
	}
	defer obj.Close()
	return Import(obj)
}

// PerformBackup snapshots every stored enclosure to Spaces
func PerformBackup() error {
	encs, err := models.AllEnclosures()
	if err != nil {
		return err
	}
	client, err := NewClient()
	if err != nil {
		return err
	}
	return Upload(client, SnapshotName(time.Now()), encs)
}

// Restore writes the enclosures of a snapshot back onto their episodes
func Restore(name string) error {
	client, err := NewClient()
	if err != nil {
		return err
	}
	encs, err := Download(client, name)
	if err != nil {
		return err
	}
	for _, e := range encs {
		enc := e.Enclosure
		if err := models.SaveEpisodeEnclosure(e.ID, &enc); err != nil {
			return err
		}
	}
	logger.Log.WithField("object", name).Infof("[backup] restored %d enclosures", len(encs))
	return nil
}
