package services

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type Article struct {
	Source string
	Title  string
	URL    string
}

// NewsSnapshot is an ordered headline list, immutable once fetched.
type NewsSnapshot struct {
	Articles []Article
}

// HeadlinesSummary joins the first three titles.
func (n *NewsSnapshot) HeadlinesSummary() string {
	titles := make([]string, 0, 3)
	for _, a := range n.Articles {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, a.Title)
	}
	return strings.Join(titles, ", ")
}

type newsAPIResponse struct {
	Articles *[]struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"articles"`
}

// News returns top headlines from NewsAPI when a key is configured, and
// otherwise from the configured RSS feeds.
func (c *Client) News(ctx context.Context) (*NewsSnapshot, error) {
	if c.opts.NewsKey != "" {
		return c.newsAPI(ctx)
	}
	if len(c.opts.Feeds) > 0 {
		return c.newsFeeds(ctx)
	}
	return nil, unavailable("news", "no api key or feeds")
}

func (c *Client) newsAPI(ctx context.Context) (*NewsSnapshot, error) {
	q := url.Values{}
	q.Set("country", c.opts.NewsCountry)
	q.Set("pageSize", strconv.Itoa(c.opts.NewsPageSize))
	q.Set("apiKey", c.opts.NewsKey)

	var resp newsAPIResponse
	if err := c.getJSON(ctx, "news", c.opts.NewsURL+"/top-headlines?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Articles == nil {
		return nil, unavailable("news", "missing articles")
	}

	snap := &NewsSnapshot{}
	for _, a := range *resp.Articles {
		if a.Title == "" {
			continue
		}
		snap.Articles = append(snap.Articles, Article{Source: a.Source.Name, Title: a.Title, URL: a.URL})
	}
	return snap, nil
}

// newsFeeds reads feeds in order until the page is full. A feed that fails
// is skipped; all feeds failing is ErrUnavailable.
func (c *Client) newsFeeds(ctx context.Context) (*NewsSnapshot, error) {
	snap := &NewsSnapshot{}
	var failed int
	for _, src := range c.opts.Feeds {
		feed, err := c.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			failed++
			c.log.Warn("feed unavailable", zap.String("feed", src.Name), zap.Error(err))
			continue
		}
		for _, item := range feed.Items {
			title := cleanTitle(item.Title)
			if title == "" {
				continue
			}
			snap.Articles = append(snap.Articles, Article{Source: src.Name, Title: title, URL: item.Link})
			if len(snap.Articles) == c.opts.NewsPageSize {
				return snap, nil
			}
		}
	}
	if failed == len(c.opts.Feeds) {
		return nil, unavailable("news", "all feeds failed")
	}
	return snap, nil
}

// cleanTitle drops markup and entities some feeds leave in item titles.
func cleanTitle(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
