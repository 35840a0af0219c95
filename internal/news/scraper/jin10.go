package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/wonny/alpha-engine/backend/internal/contracts"
	"github.com/wonny/alpha-engine/backend/internal/news"
	"github.com/wonny/alpha-engine/backend/pkg/httputil"
	"github.com/wonny/alpha-engine/backend/pkg/logger"
)

const (
	jin10Source   = "jin10"
	jin10MaxItems = 20
	titleMaxRunes = 120
)

// Jin10 timestamps are China Standard Time
var cst = time.FixedZone("CST", 8*60*60)

var htmlTagRE = regexp.MustCompile(`<[^>]+>`)

// central bank, interest rate, nonfarm, Fed, hike, cut
var jin10HighKeywords = []string{"央行", "利率", "非农", "CPI", "GDP", "PMI", "美联储", "加息", "降息"}

// expected, released, previous
var jin10MediumKeywords = []string{"预期", "公布", "前值"}

// Jin10 reads the Jin10 flash (macro headline) feed
type Jin10 struct {
	client *httputil.Client
	apiURL string
	appID  string
	logger *logger.Logger
	now    func() time.Time
}

// NewJin10 creates a Jin10 scraper
func NewJin10(client *httputil.Client, apiURL, appID string, log *logger.Logger) *Jin10 {
	return &Jin10{client: client, apiURL: apiURL, appID: appID, logger: log, now: time.Now}
}

// Name implements Scraper
func (j *Jin10) Name() string { return jin10Source }

type jin10Response struct {
	Data []jin10Flash `json:"data"`
}

type jin10Flash struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Important int    `json:"important"`
	Data      struct {
		Content string `json:"content"`
	} `json:"data"`
}

// Fetch returns up to 20 of the latest flashes as macro items
func (j *Jin10) Fetch(ctx context.Context) ([]news.Item, error) {
	params := url.Values{}
	params.Set("channel", "-8200")
	params.Set("max_time", "")
	params.Set("vip", "1")

	body, err := j.client.GetBodyWithHeaders(ctx, j.apiURL+"?"+params.Encode(), map[string]string{
		"x-app-id":  j.appID,
		"x-version": "1.0.0",
	})
	if err != nil {
		return nil, fmt.Errorf("jin10 request: %w", err)
	}

	var resp jin10Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("jin10 decode: %w", err)
	}

	raws := resp.Data
	if len(raws) > jin10MaxItems {
		raws = raws[:jin10MaxItems]
	}

	items := make([]news.Item, 0, len(raws))
	for _, raw := range raws {
		if item, ok := j.parse(raw); ok {
			items = append(items, item)
		}
	}

	j.logger.WithField("items", len(items)).Debug("Jin10 flashes fetched")
	return items, nil
}

func (j *Jin10) parse(raw jin10Flash) (news.Item, bool) {
	content := strings.TrimSpace(htmlTagRE.ReplaceAllString(raw.Data.Content, ""))
	if content == "" {
		return news.Item{}, false
	}

	now := j.now().UTC()
	published, err := time.ParseInLocation("2006-01-02 15:04:05", raw.Time, cst)
	if err != nil {
		published = now
	}

	rawJSON, _ := json.Marshal(raw)

	return news.Item{
		Source:      jin10Source,
		Category:    news.CategoryMacro,
		Title:       truncateRunes(content, titleMaxRunes),
		Content:     content,
		PublishedAt: published,
		ScrapedAt:   now,
		Importance:  jin10Importance(raw),
		RawData:     string(rawJSON),
	}, true
}

func jin10Importance(raw jin10Flash) string {
	if raw.Important == 1 {
		return contracts.ImportanceHigh
	}
	if containsAny(raw.Data.Content, jin10HighKeywords) {
		return contracts.ImportanceHigh
	}
	if containsAny(raw.Data.Content, jin10MediumKeywords) {
		return contracts.ImportanceMedium
	}
	return contracts.ImportanceLow
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
