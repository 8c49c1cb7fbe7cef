package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/juju/errors"
)

// DefaultAPIURL is the imgflip endpoint returning the most popular templates.
const DefaultAPIURL = "https://api.imgflip.com/get_memes"

// Template is a base image which captions are drawn over.
type Template struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	URL      string `json:"url" yaml:"url"`
	Width    int    `json:"width" yaml:"width"`
	Height   int    `json:"height" yaml:"height"`
	BoxCount int    `json:"box_count" yaml:"box_count"`
}

func (t Template) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.ID)
}

type Fetcher interface {
	Fetch(ctx context.Context) ([]Template, error)
}

// ImgflipFetcher fetches templates from the imgflip API, or anything else
// which responds in the same format:
//
//	{"success": true, "data": {"memes": [{"id": "...", "name": "...", "url": "..."}]}}
type ImgflipFetcher struct {
	params ImgflipFetcherParams
}

type ImgflipFetcherParams struct {
	// URL is DefaultAPIURL if empty.
	URL string

	// Client is http.DefaultClient if nil.
	Client *http.Client
}

func NewImgflipFetcher(params ImgflipFetcherParams) *ImgflipFetcher {
	if params.URL == "" {
		params.URL = DefaultAPIURL
	}

	if params.Client == nil {
		params.Client = http.DefaultClient
	}

	return &ImgflipFetcher{
		params: params,
	}
}

type imgflipResp struct {
	Success bool `json:"success"`
	Data    struct {
		Memes []Template `json:"memes"`
	} `json:"data"`
	ErrorMessage string `json:"error_message"`
}

func (f *ImgflipFetcher) Fetch(ctx context.Context) ([]Template, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.params.URL, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "creating request")
	}

	resp, err := f.params.Client.Do(req)
	if err != nil {
		return nil, errors.Annotatef(err, "fetching %s", f.params.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("fetching %s: %s", f.params.URL, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotatef(err, "reading response")
	}

	var ir imgflipResp
	if err := json.Unmarshal(body, &ir); err != nil {
		return nil, errors.Annotatef(err, "parsing response")
	}

	if !ir.Success {
		if ir.ErrorMessage != "" {
			return nil, errors.Errorf("API returned unsuccessful response: %s", ir.ErrorMessage)
		}

		return nil, errors.Errorf("API returned unsuccessful response")
	}

	return ir.Data.Memes, nil
}
