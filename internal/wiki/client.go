// Package wiki collects photos of a city from the French Wikipedia.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	thumbWidth       = 1500
	maxTitles        = 100
	infoBatchSize    = 50
	extraImages      = 12
	batchConcurrency = 4
	userAgent        = "communes-api/1.0 (city image search)"
)

type queryResponse struct {
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title     string `json:"title"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
	Images []struct {
		Title string `json:"title"`
	} `json:"images"`
	ImageInfo []struct {
		URL         string `json:"url"`
		ThumbURL    string `json:"thumburl"`
		ExtMetadata struct {
			ImageDescription struct {
				Value string `json:"value"`
			} `json:"ImageDescription"`
		} `json:"extmetadata"`
	} `json:"imageinfo"`
}

// sortedPages returns pages in title order so results are reproducible
func (r queryResponse) sortedPages() []page {
	pages := make([]page, 0, len(r.Query.Pages))
	for _, p := range r.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Title < pages[j].Title })
	return pages
}

func (r queryResponse) firstPage() (page, bool) {
	pages := r.sortedPages()
	if len(pages) == 0 {
		return page{}, false
	}
	return pages[0], true
}

// Client queries the MediaWiki API
type Client struct {
	httpClient *http.Client
	apiURL     string
	logger     *zap.Logger
	retry      retry.Policy
	shuffle    func(n int, swap func(i, j int))
}

// NewClient creates a new image search client
func NewClient(cfg config.WikiConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		logger:     logger,
		retry:      retry.Once,
		shuffle:    rand.Shuffle,
	}
}

// CityImages returns photos of the city page, retrying once with the
// "Name_(Department)" title when the plain name yields nothing. Upstream
// failures only reduce the result; they are logged, never returned.
func (c *Client) CityImages(ctx context.Context, name, department string) []model.Image {
	token := cityToken(name)

	images := c.pageImages(ctx, name, token)
	if len(images) == 0 {
		fallback := fmt.Sprintf("%s_(%s)",
			strings.Join(strings.Fields(name), "_"),
			strings.Join(strings.Fields(department), "_"),
		)
		c.logger.Info("No images found, retrying with disambiguated title",
			zap.String("title", name), zap.String("fallback", fallback))
		images = c.pageImages(ctx, fallback, token)
	}
	return images
}

func (c *Client) pageImages(ctx context.Context, title, token string) []model.Image {
	var (
		primary *model.Image
		titles  []string
	)

	// Both phases are independent lookups on the same page.
	var g errgroup.Group
	g.Go(func() error {
		primary = c.primaryImage(ctx, title)
		return nil
	})
	g.Go(func() error {
		titles = c.imageTitles(ctx, title)
		return nil
	})
	_ = g.Wait()

	var results []model.Image
	seen := make(map[string]struct{})
	if primary != nil {
		results = append(results, *primary)
		seen[primary.URL] = struct{}{}
	}

	var batches [][]string
	for i := 0; i < len(titles); i += infoBatchSize {
		end := i + infoBatchSize
		if end > len(titles) {
			end = len(titles)
		}
		batches = append(batches, titles[i:end])
	}

	candidates := make([][]model.Image, len(batches))
	g = errgroup.Group{}
	g.SetLimit(batchConcurrency)
	for i, batch := range batches {
		g.Go(func() error {
			candidates[i] = c.imageInfo(ctx, batch, token)
			return nil
		})
	}
	_ = g.Wait()

	for _, batch := range candidates {
		for _, img := range batch {
			if _, dup := seen[img.URL]; dup {
				continue
			}
			seen[img.URL] = struct{}{}
			results = append(results, img)
		}
	}

	return c.limit(results)
}

// limit keeps every primary image plus a random sample of extraImages others
func (c *Client) limit(images []model.Image) []model.Image {
	var primaries, others []model.Image
	for _, img := range images {
		if img.Primary {
			primaries = append(primaries, img)
		} else {
			others = append(others, img)
		}
	}
	if len(images) <= len(primaries)+extraImages {
		return images
	}

	c.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	return append(primaries, others[:extraImages]...)
}

func (c *Client) primaryImage(ctx context.Context, title string) *model.Image {
	resp, err := c.query(ctx, url.Values{
		"titles":      {title},
		"prop":        {"pageimages"},
		"piprop":      {"thumbnail"},
		"pithumbsize": {strconv.Itoa(thumbWidth)},
	})
	if err != nil {
		c.logger.Warn("Page thumbnail lookup failed", zap.String("title", title), zap.Error(err))
		return nil
	}

	p, ok := resp.firstPage()
	if !ok || p.Thumbnail == nil || p.Thumbnail.Source == "" {
		return nil
	}
	return &model.Image{URL: p.Thumbnail.Source, Primary: true}
}

func (c *Client) imageTitles(ctx context.Context, title string) []string {
	resp, err := c.query(ctx, url.Values{
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {strconv.Itoa(maxTitles)},
	})
	if err != nil {
		c.logger.Warn("Image title lookup failed", zap.String("title", title), zap.Error(err))
		return nil
	}

	p, ok := resp.firstPage()
	if !ok {
		return nil
	}
	var titles []string
	for _, img := range p.Images {
		if isPhoto(img.Title) {
			titles = append(titles, img.Title)
		}
	}
	return titles
}

func (c *Client) imageInfo(ctx context.Context, titles []string, token string) []model.Image {
	resp, err := c.query(ctx, url.Values{
		"titles":     {strings.Join(titles, "|")},
		"prop":       {"imageinfo"},
		"iiprop":     {"url|thumburl|extmetadata"},
		"iiurlwidth": {strconv.Itoa(thumbWidth)},
	})
	if err != nil {
		c.logger.Warn("Image info batch failed", zap.Int("size", len(titles)), zap.Error(err))
		return nil
	}

	var images []model.Image
	for _, p := range resp.sortedPages() {
		if len(p.ImageInfo) == 0 {
			continue
		}
		info := p.ImageInfo[0]
		src := info.ThumbURL
		if src == "" {
			src = info.URL
		}
		if src == "" {
			continue
		}

		caption := stripHTML(info.ExtMetadata.ImageDescription.Value)
		if !keep(fileName(p.Title), caption, token) {
			continue
		}

		img := model.Image{URL: src}
		if caption != "" {
			img.Description = &caption
		}
		images = append(images, img)
	}
	return images
}

func (c *Client) query(ctx context.Context, params url.Values) (*queryResponse, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	endpoint := c.apiURL + "?" + params.Encode()

	var out queryResponse
	err := c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}

		out = queryResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return retry.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
