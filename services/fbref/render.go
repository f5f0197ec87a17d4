package fbref

import (
	"bytes"
	"context"
	"fmt"
	"footstats/lib/htmlutil"
	"footstats/lib/scraper"
	"footstats/services/fbref/layout"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Renderer returns the final html of a category page.
type Renderer interface {
	Render(ctx context.Context, category layout.Category) ([]byte, error)
}

// HttpRenderer downloads category pages. Tables the page ships inside html
// comments are uncommented so they can be located like any other table.
type HttpRenderer struct {
	client *resty.Client
}

func NewHttpRenderer(opts scraper.ClientOptions) (HttpRenderer, error) {
	if opts.TracerName == "" {
		opts.TracerName = "footstats.services.fbref/http"
	}
	client, err := scraper.NewClient(opts)
	if err != nil {
		return HttpRenderer{}, err
	}
	return HttpRenderer{client: client}, nil
}

func (r HttpRenderer) Render(ctx context.Context, category layout.Category) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "HttpRenderer.Render")
	defer span.End()
	span.SetAttributes(
		attribute.String("category", category.Name),
		attribute.String("url", category.Url),
	)

	body, err := scraper.Get(ctx, r.client, category.Url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return htmlutil.UncommentTables(body), nil
}

// DirRenderer reads pages saved as <Dir>/<category>.html.
type DirRenderer struct {
	Dir string
}

func (r DirRenderer) Path(category string) string {
	return filepath.Join(r.Dir, fmt.Sprintf("%s.html", category))
}

func (r DirRenderer) Render(ctx context.Context, category layout.Category) ([]byte, error) {
	_, span := tracer.Start(ctx, "DirRenderer.Render")
	defer span.End()
	span.SetAttributes(attribute.String("category", category.Name))

	page, err := os.ReadFile(r.Path(category.Name))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return htmlutil.UncommentTables(page), nil
}

func parsePage(page []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewBuffer(page))
}
