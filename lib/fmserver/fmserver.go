// Package fmserver is a client for the XML Custom Web Publishing interface
// of a FileMaker Server.
package fmserver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"lariat/lib/fmquery"
	"lariat/lib/fmxml"
	"lariat/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("fmserver")

const defaultPath = "/fmi/xml/fmresultset.xml"

type Client struct {
	http    *resty.Client
	baseUrl string
}

type ClientOptions struct {
	// Url of the fmresultset endpoint. Scheme defaults to http, the path
	// to /fmi/xml/fmresultset.xml and the port to 80/443 by scheme.
	Url      string
	Username string
	Password string
	// Defaults to 10 seconds.
	Timeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	parsed, err := url.Parse(opts.Url)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("server url %q has no hostname", opts.Url)
	}

	scheme := parsed.Scheme
	if scheme == "" {
		scheme = "http"
	}
	port := parsed.Port()
	if port == "" {
		port = "80"
		if scheme == "https" {
			port = "443"
		}
	}
	path := parsed.Path
	if path == "" {
		path = defaultPath
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 10
	}

	baseUrl := fmt.Sprintf("%s://%s:%s%s", scheme, parsed.Hostname(), port, path)

	http := resty.New()
	http.SetBasicAuth(opts.Username, opts.Password)
	http.SetTimeout(timeout)

	telemetry.InstrumentResty(http, "fmserver/http")

	return &Client{
		http:    http,
		baseUrl: baseUrl,
	}, nil
}

// BaseUrl returns the fully resolved fmresultset endpoint url.
func (c *Client) BaseUrl() string {
	return c.baseUrl
}

// RunQuery encodes and executes a single CWP query, returning the parsed
// records and layout metadata. FileMaker-reported errors come back as
// fmerror.Error.
func (c *Client) RunQuery(ctx context.Context, query *fmquery.Query) ([]fmxml.Record, *fmxml.Metadata, error) {
	ctx, span := tracer.Start(ctx, "RunQuery")
	defer span.End()
	span.SetAttributes(attribute.String("command", query.Command))

	encoded, err := query.Encode()
	if err != nil {
		span.SetStatus(codes.Error, "failed to encode query")
		return nil, nil, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.baseUrl + "?" + encoded)
	if err != nil {
		span.SetStatus(codes.Error, "request failed")
		return nil, nil, err
	}
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		span.SetStatus(codes.Error, res.Status())
		return nil, nil, httpError(res)
	}

	records, metadata, err := fmxml.Parse(bytes.NewReader(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse response")
		return nil, nil, err
	}

	return records, metadata, nil
}

// httpError builds an error from a non-2xx response. Misconfigured web
// servers in front of FileMaker tend to answer with an HTML page, in which
// case the page title is the most useful diagnostic to surface.
func httpError(res *resty.Response) error {
	contentType := res.Header().Get("content-type")
	if strings.Contains(contentType, "html") {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
		if err == nil {
			title := strings.TrimSpace(doc.Find("title").First().Text())
			if title != "" {
				return fmt.Errorf("server returned %s: %s", res.Status(), title)
			}
		}
	}
	return fmt.Errorf("server returned %s", res.Status())
}

// DatabaseNames lists the databases available for XML publishing.
func (c *Client) DatabaseNames(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "DatabaseNames")
	defer span.End()

	records, _, err := c.RunQuery(ctx, fmquery.New("-dbnames"))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Field("database_name", ""))
	}
	return names, nil
}

// LayoutNames lists the layouts of a database.
func (c *Client) LayoutNames(ctx context.Context, db string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "LayoutNames")
	defer span.End()

	query := fmquery.New("-layoutnames").SetParam("-db", db)
	records, _, err := c.RunQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Field("layout_name", ""))
	}
	return names, nil
}

// LayoutMetadata fetches the field definitions of a layout without
// fetching any records.
func (c *Client) LayoutMetadata(ctx context.Context, db, layout string) (*fmxml.Metadata, error) {
	ctx, span := tracer.Start(ctx, "LayoutMetadata")
	defer span.End()

	query := fmquery.New("-view").
		SetParam("-db", db).
		SetParam("-lay", layout)
	_, metadata, err := c.RunQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		return nil, fmt.Errorf("response contained no metadata node")
	}
	return metadata, nil
}
