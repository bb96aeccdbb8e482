package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/alekLukanen/errs"

	"github.com/alekLukanen/BreweryMedallion/elements"
)

const (
	DefaultSourceURL   = "https://api.openbrewerydb.org/breweries"
	defaultMaxBodySize = 64 << 20
)

type ISource interface {
	Fetch(ctx context.Context) (elements.RecordSet, error)
}

type HTTPSourceOptions struct {
	URL         string
	PerPage     int
	Timeout     time.Duration
	MaxBodySize int64
}

type HTTPSource struct {
	logger *slog.Logger
	client *http.Client

	url         *url.URL
	maxBodySize int64
}

func NewHTTPSource(logger *slog.Logger, client *http.Client, options HTTPSourceOptions) (*HTTPSource, error) {
	rawURL := options.URL
	if rawURL == "" {
		rawURL = DefaultSourceURL
	}
	sourceURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("invalid source url %s", rawURL))
	}
	if sourceURL.Scheme != "http" && sourceURL.Scheme != "https" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("unsupported url scheme %q", sourceURL.Scheme)), ErrInvalidOptions)
	}
	if options.PerPage > 0 {
		query := sourceURL.Query()
		query.Set("per_page", strconv.Itoa(options.PerPage))
		sourceURL.RawQuery = query.Encode()
	}

	if client == nil {
		client = &http.Client{}
	}
	if options.Timeout > 0 {
		timedClient := *client
		timedClient.Timeout = options.Timeout
		client = &timedClient
	}

	maxBodySize := options.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	return &HTTPSource{
		logger:      logger,
		client:      client,
		url:         sourceURL,
		maxBodySize: maxBodySize,
	}, nil
}

func (obj *HTTPSource) URL() string {
	return obj.url.String()
}

func (obj *HTTPSource) Fetch(ctx context.Context) (elements.RecordSet, error) {
	obj.logger.Info("fetching records", slog.String("url", obj.url.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, obj.url.String(), nil)
	if err != nil {
		return elements.RecordSet{}, errs.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := obj.client.Do(req)
	if err != nil {
		return elements.RecordSet{}, errs.Wrap(err, fmt.Errorf("request to %s failed", obj.url.Redacted()))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return elements.RecordSet{}, errs.Wrap(errs.NewStackError(fmt.Errorf("status code: %d", resp.StatusCode)), ErrUnexpectedStatus)
	}

	records, err := DecodeRecords(io.LimitReader(resp.Body, obj.maxBodySize))
	if err != nil {
		return elements.RecordSet{}, err
	}

	obj.logger.Info("fetched records", slog.Int("numRecords", records.Len()))
	return records, nil
}

////////////////////////////////////////

// FileSource reads the same JSON payload from a local file.
type FileSource struct {
	logger *slog.Logger

	path string
}

func NewFileSource(logger *slog.Logger, path string) (*FileSource, error) {
	if path == "" {
		return nil, errs.Wrap(errs.NewStackError(fmt.Errorf("file path is required")), ErrInvalidOptions)
	}
	return &FileSource{logger: logger, path: path}, nil
}

func (obj *FileSource) Fetch(ctx context.Context) (elements.RecordSet, error) {
	obj.logger.Info("reading records", slog.String("path", obj.path))

	file, err := os.Open(obj.path)
	if err != nil {
		return elements.RecordSet{}, errs.Wrap(err)
	}
	defer file.Close()

	records, err := DecodeRecords(file)
	if err != nil {
		return elements.RecordSet{}, err
	}
	obj.logger.Info("read records", slog.Int("numRecords", records.Len()))
	return records, nil
}
