package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fileInfo struct {
	thumb   string
	caption string
}

// fakeWiki serves the three MediaWiki queries from in-memory fixtures
type fakeWiki struct {
	mu          sync.Mutex
	thumbnails  map[string]string
	pageImages  map[string][]string
	files       map[string]fileInfo
	failInfo    bool
	infoBatches []int
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("action") != "query" || q.Get("format") != "json" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	pages := map[string]interface{}{}
	switch q.Get("prop") {
	case "pageimages":
		title := q.Get("titles")
		p := map[string]interface{}{"title": title}
		if src, ok := f.thumbnails[title]; ok {
			p["thumbnail"] = map[string]interface{}{"source": src, "width": 1500}
		}
		pages["1"] = p
	case "images":
		title := q.Get("titles")
		var images []map[string]interface{}
		for _, t := range f.pageImages[title] {
			images = append(images, map[string]interface{}{"ns": 6, "title": t})
		}
		pages["1"] = map[string]interface{}{"title": title, "images": images}
	case "imageinfo":
		if f.failInfo {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		titles := strings.Split(q.Get("titles"), "|")
		f.mu.Lock()
		f.infoBatches = append(f.infoBatches, len(titles))
		f.mu.Unlock()
		for i, t := range titles {
			info := f.files[t]
			pages[fmt.Sprintf("-%d", i+1)] = map[string]interface{}{
				"title": t,
				"imageinfo": []map[string]interface{}{{
					"url":      info.thumb + "?full",
					"thumburl": info.thumb,
					"extmetadata": map[string]interface{}{
						"ImageDescription": map[string]string{"value": info.caption},
					},
				}},
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"query": map[string]interface{}{"pages": pages}})
}

func newTestClient(t *testing.T, fake *fakeWiki) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c := NewClient(config.WikiConfig{APIURL: srv.URL, Timeout: 5 * time.Second}, zap.NewNop())
	c.retry = retry.Policy{Retries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	c.shuffle = func(int, func(i, j int)) {}
	return c
}

func lyonFixture() *fakeWiki {
	return &fakeWiki{
		thumbnails: map[string]string{"Lyon": "https://img/primary.jpg"},
		pageImages: map[string][]string{"Lyon": {
			"Fichier:Lyon Fourvière.jpg",
			"Fichier:Blason Lyon.svg",
			"Fichier:Église Saint-Jean.jpg",
			"Fichier:Carte de Lyon.png",
			"Fichier:Drapeau église.jpg",
			"Fichier:Random person.jpg",
			"Fichier:Lyon pont.jpg",
			"Fichier:Lyon hôtel.jpg",
		}},
		files: map[string]fileInfo{
			"Fichier:Lyon Fourvière.jpg":    {thumb: "https://img/fourviere.jpg", caption: "<p>Basilique de Fourvi&egrave;re</p>"},
			"Fichier:Église Saint-Jean.jpg": {thumb: "https://img/saint-jean.jpg"},
			"Fichier:Carte de Lyon.png":     {thumb: "https://img/carte.png"},
			"Fichier:Drapeau église.jpg":    {thumb: "https://img/drapeau.jpg"},
			"Fichier:Random person.jpg":     {thumb: "https://img/person.jpg"},
			"Fichier:Lyon pont.jpg":         {thumb: "https://img/pont.jpg", caption: "<b>Logo</b> du pont"},
			"Fichier:Lyon hôtel.jpg":        {thumb: "https://img/primary.jpg"},
		},
	}
}

func urls(c *Client, name, dep string) []string {
	var out []string
	for _, img := range c.CityImages(context.Background(), name, dep) {
		out = append(out, img.URL)
	}
	return out
}

func TestClient_CityImages(t *testing.T) {
	t.Run("Primary first, then filtered candidates", func(t *testing.T) {
		c := newTestClient(t, lyonFixture())
		images := c.CityImages(context.Background(), "Lyon", "Rhône")

		require.Len(t, images, 3)
		assert.Equal(t, "https://img/primary.jpg", images[0].URL)
		assert.True(t, images[0].Primary)
		assert.Nil(t, images[0].Description)

		assert.Equal(t, "https://img/fourviere.jpg", images[1].URL)
		require.NotNil(t, images[1].Description)
		assert.Equal(t, "Basilique de Fourvière", *images[1].Description)

		assert.Equal(t, "https://img/saint-jean.jpg", images[2].URL)
		assert.Nil(t, images[2].Description)
	})

	t.Run("Disambiguated title when the plain name has nothing", func(t *testing.T) {
		fake := &fakeWiki{
			pageImages: map[string][]string{"Saint-Étienne_(Loire)": {"Fichier:Saint-Étienne centre.jpg"}},
			files: map[string]fileInfo{
				"Fichier:Saint-Étienne centre.jpg": {thumb: "https://img/se.jpg"},
			},
		}
		c := newTestClient(t, fake)
		assert.Equal(t, []string{"https://img/se.jpg"}, urls(c, "Saint-Étienne", "Loire"))
	})

	t.Run("Multi-word names use underscores", func(t *testing.T) {
		fake := &fakeWiki{
			pageImages: map[string][]string{"Le_Puy-en-Velay_(Haute-Loire)": {"Fichier:Le Puy-en-Velay rocher.jpg"}},
			files: map[string]fileInfo{
				"Fichier:Le Puy-en-Velay rocher.jpg": {thumb: "https://img/puy.jpg"},
			},
		}
		c := newTestClient(t, fake)
		assert.Equal(t, []string{"https://img/puy.jpg"}, urls(c, "Le Puy-en-Velay", "Haute-Loire"))
	})

	t.Run("Capped to primaries plus twelve", func(t *testing.T) {
		fake := &fakeWiki{
			thumbnails: map[string]string{"Nice": "https://img/nice.jpg"},
			pageImages: map[string][]string{},
			files:      map[string]fileInfo{},
		}
		for i := 0; i < 60; i++ {
			title := fmt.Sprintf("Fichier:Nice %02d.jpg", i)
			fake.pageImages["Nice"] = append(fake.pageImages["Nice"], title)
			fake.files[title] = fileInfo{thumb: fmt.Sprintf("https://img/nice-%02d.jpg", i)}
		}
		c := newTestClient(t, fake)

		got := urls(c, "Nice", "Alpes-Maritimes")
		require.Len(t, got, 13)
		assert.Equal(t, "https://img/nice.jpg", got[0])
		assert.Equal(t, "https://img/nice-00.jpg", got[1])
		assert.ElementsMatch(t, []int{50, 10}, fake.infoBatches)
	})

	t.Run("Failed batches degrade to fewer images", func(t *testing.T) {
		fake := lyonFixture()
		fake.failInfo = true
		c := newTestClient(t, fake)
		assert.Equal(t, []string{"https://img/primary.jpg"}, urls(c, "Lyon", "Rhône"))
	})

	t.Run("Unreachable API yields no images", func(t *testing.T) {
		c := NewClient(config.WikiConfig{APIURL: "http://127.0.0.1:1", Timeout: time.Second}, zap.NewNop())
		c.retry = retry.Policy{Retries: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
		assert.Empty(t, c.CityImages(context.Background(), "Lyon", "Rhône"))
	})
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		caption  string
		expected bool
	}{
		{"City token", "lyon_quais.jpg", "", true},
		{"Allowlisted keyword", "église_saint-nizier.jpg", "", true},
		{"Neither token nor keyword", "portrait.jpg", "", false},
		{"Blocklist beats city token", "blason_lyon.jpg", "", false},
		{"Blocklist beats allowlist", "drapeau_sur_la_mairie.jpg", "", false},
		{"Blocklisted caption", "lyon_pont.jpg", "carte postale", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, keep(tt.file, tt.caption, "lyon"))
		})
	}
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "saint-jean-de-luz", cityToken("Saint-Jean-de-Luz"))
	assert.Equal(t, "le_puy-en-velay", cityToken("Le  Puy-en-Velay"))
	assert.Equal(t, "vue_du_pont.jpg", fileName("Fichier:Vue du pont.jpg"))
	assert.Equal(t, "Tom & Jerry", stripHTML(" <i>Tom</i> &amp; <b>Jerry</b> "))
	assert.True(t, isPhoto("Fichier:A.JPEG"))
	assert.False(t, isPhoto("Fichier:A.svg"))
}
