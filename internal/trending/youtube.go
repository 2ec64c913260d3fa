package trending

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/edgard/maintain/internal/model"
)

// categoryIDs maps category names to YouTube video category ids.
var categoryIDs = map[string]string{
	"gaming":        "20",
	"music":         "10",
	"news":          "25",
	"education":     "27",
	"entertainment": "24",
	"sports":        "17",
	"technology":    "28",
	"science":       "28",
}

type thumbnail struct {
	URL string `json:"url"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		Description  string `json:"description"`
		PublishedAt  string `json:"publishedAt"`
		Thumbnails   struct {
			Maxres  *thumbnail `json:"maxres"`
			High    *thumbnail `json:"high"`
			Medium  *thumbnail `json:"medium"`
			Default *thumbnail `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

// apiClient calls the YouTube Data API v3 videos endpoint.
type apiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	regionCode string
}

// mostPopular fetches the most popular chart, optionally for one category.
func (c *apiClient) mostPopular(ctx context.Context, category string, maxResults int) ([]videoItem, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics")
	q.Set("chart", "mostPopular")
	q.Set("regionCode", c.regionCode)
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("key", c.apiKey)
	if id, ok := categoryIDs[category]; ok {
		q.Set("videoCategoryId", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.baseURL, "/")+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build youtube request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read youtube response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube API error: %d", resp.StatusCode)
	}

	var list videoListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse youtube response: %w", err)
	}
	return list.Items, nil
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as PT1H2M10S into whole
// minutes, dropping the seconds. Unparseable input yields 0.
func ParseDuration(d string) int {
	m := isoDuration.FindStringSubmatch(d)
	if m == nil {
		return 0
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return atoi(m[1])*24*60 + atoi(m[2])*60 + atoi(m[3])
}

func bestThumbnail(item videoItem) string {
	t := item.Snippet.Thumbnails
	for _, th := range []*thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	if item.ID != "" {
		return "https://i.ytimg.com/vi/" + item.ID + "/hqdefault.jpg"
	}
	return ""
}

// toSuggestion maps a YouTube video to a suggestion tagged with category.
func toSuggestion(item videoItem, category string) model.Suggestion {
	s := model.Suggestion{
		ID:            "yt_" + item.ID,
		Title:         item.Snippet.Title,
		CreatorName:   item.Snippet.ChannelTitle,
		ThumbnailURL:  bestThumbnail(item),
		DatePublished: item.Snippet.PublishedAt,
		Tags:          []string{category, model.TagTrending, model.TagYouTube},
		URL:           "https://www.youtube.com/watch?v=" + item.ID,
	}
	if s.Title == "" {
		s.Title = "Untitled"
	}
	if s.CreatorName == "" {
		s.CreatorName = "Unknown"
	}
	if minutes := ParseDuration(item.ContentDetails.Duration); minutes > 0 {
		s.DurationMinutes = model.IntPtr(minutes)
	}
	if desc := item.Snippet.Description; desc != "" {
		runes := []rune(desc)
		if len(runes) > 150 {
			runes = runes[:150]
		}
		s.Description = string(runes) + "..."
	}
	views, _ := strconv.ParseFloat(item.Statistics.ViewCount, 64)
	s.Relevance = min(0.9, 0.5+views/1e7*0.4)
	return s
}

func newAPIClient(baseURL, apiKey, regionCode string, timeout time.Duration) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		regionCode: regionCode,
	}
}
