package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

// Source fetches the full product list.
type Source interface {
	FetchProducts(ctx context.Context) ([]models.Product, error)
}

// NewSource picks an HTTP source for http(s) locations and a file source otherwise.
func NewSource(location string, timeout time.Duration) Source {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return NewFileSource(location)
}

// HTTPSource is a resty-backed implementation of Source.
type HTTPSource struct {
	httpClient *resty.Client
	url        string
}

// NewHTTPSource builds a client for a static JSON document served over HTTP.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &HTTPSource{httpClient: restyClient, url: url}
}

// FetchProducts performs a plain GET and decodes the product array.
func (s *HTTPSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetResult(&products).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog %s: %w", s.url, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch catalog %s: unexpected status %d", s.url, resp.StatusCode())
	}

	// resty only decodes into SetResult for JSON content types
	if products == nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &products); err != nil {
			return nil, fmt.Errorf("decode catalog %s: %w", s.url, err)
		}
	}

	return products, nil
}

// FileSource reads the product array from a local JSON file.
type FileSource struct {
	path string
}

// NewFileSource builds a source for a local products.json.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchProducts reads and decodes the file.
func (s *FileSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.path, err)
	}

	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", s.path, err)
	}
	return products, nil
}
