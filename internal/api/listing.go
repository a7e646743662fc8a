package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

// Item is one post of a listing, as cached in the plugin context. Only
// Title, URL and Subreddit are normalized; the rest is kept for reference.
type Item struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author,omitempty"`
	Permalink   string  `json:"permalink,omitempty"`
	Score       int     `json:"score,omitempty"`
	NumComments int     `json:"num_comments,omitempty"`
	CreatedUTC  float64 `json:"created_utc,omitempty"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data Item   `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchHot returns the first page of the hot listing of subreddit. The name
// is not validated; whatever the API makes of it is reported as a
// *FetchError.
func (c *Client) FetchHot(ctx context.Context, token *oauth2.Token, subreddit string) ([]Item, error) {
	if token == nil || token.AccessToken == "" {
		return nil, &FetchError{Subreddit: subreddit, Message: "no access token"}
	}

	endpoint := c.apiURL + "/r/" + url.PathEscape(subreddit) + "/hot"

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Subreddit: subreddit, Err: err}
	}
	q := req.URL.Query()
	q.Set("raw_json", "1")
	req.URL.RawQuery = q.Encode()

	resp, err := c.authorized(token).Do(req)
	if err != nil {
		return nil, &FetchError{Subreddit: subreddit, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Subreddit: subreddit, StatusCode: resp.StatusCode, Message: summarize(resp)}
	}

	var page listing
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &FetchError{Subreddit: subreddit, Message: "malformed listing", Err: err}
	}

	items := make([]Item, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		items = append(items, child.Data)
	}
	return items, nil
}

// authorized returns an http.Client that sends token as a bearer header and
// keeps c's timeout and redirect policy.
func (c *Client) authorized(token *oauth2.Token) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   c.httpClient.Transport,
		},
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
	}
}
