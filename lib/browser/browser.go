package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"nightout-backend/lib/htmlutil"
	"nightout-backend/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/browser")

var ErrNoForm = fmt.Errorf("the current page has no form to submit")

// Session is a single automated browsing context: one HTTP client with a
// cookie jar plus the most recently loaded document. Every stage of a run
// shares the same session since the remote sites assume one coherent
// visitor, so navigation is strictly sequential.
type Session struct {
	Http *resty.Client

	url *url.URL
	doc *goquery.Document
}

func New(ctx context.Context) (*Session, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 30)

	return &Session{Http: client}, nil
}

func (s *Session) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(s.Http, tracer, output)
}

// CurrentUrl returns the url of the current document, after redirects.
func (s *Session) CurrentUrl() *url.URL {
	return s.url
}

// Navigate loads the given page and makes it the current document.
func (s *Session) Navigate(ctx context.Context, link string) error {
	ctx, span := tracer.Start(ctx, "session:Navigate")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	res, err := s.Http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return fmt.Errorf("could not navigate to %s: %w", link, err)
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "error status")
		return fmt.Errorf("could not navigate to %s: status %d", link, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return err
	}

	s.url = res.RawResponse.Request.URL
	s.doc = doc
	return nil
}

func (s *Session) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if s.url == nil {
		return href
	}
	return s.url.ResolveReference(ref).String()
}

// Links returns the unique outbound links of the current document,
// resolved against the current url, in document order.
func (s *Session) Links(ctx context.Context) []string {
	if s.doc == nil {
		return nil
	}

	anchors := htmlutil.GetAnchors(ctx, s.doc.Find("li > a"))
	seen := map[string]bool{}
	var links []string
	for _, a := range anchors {
		link := s.resolve(a.Href)
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// Text returns the cleaned text of the first element matching the selector.
func (s *Session) Text(selector string) string {
	if s.doc == nil {
		return ""
	}
	return htmlutil.CleanText(s.doc.Find(selector).First().Text())
}

// TextAll returns the cleaned text of every element matching the selector.
func (s *Session) TextAll(selector string) []string {
	if s.doc == nil {
		return nil
	}
	var out []string
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, htmlutil.CleanText(sel.Text()))
	})
	return out
}

// Values returns the value attribute of every element matching the
// selector, typically checkbox or radio inputs.
func (s *Session) Values(selector string) []string {
	if s.doc == nil {
		return nil
	}
	var out []string
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, sel.AttrOr("value", ""))
	})
	return out
}

// SubmitForm fills the named inputs of the current document's first form
// and submits it, following the resulting navigation. The page the form
// leads to becomes the current document, which is the HTTP equivalent of
// clicking submit and waiting for the follow-up navigation to finish.
func (s *Session) SubmitForm(ctx context.Context, fields map[string]string) error {
	ctx, span := tracer.Start(ctx, "session:SubmitForm")
	defer span.End()

	if s.doc == nil {
		return ErrNoForm
	}
	form := s.doc.Find("form").First()
	if form.Length() == 0 {
		span.SetStatus(codes.Error, "no form on page")
		return ErrNoForm
	}

	// hidden inputs carry session tokens, they must survive the round trip
	data := map[string]string{}
	form.Find("input[type=hidden]").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", "")
		if name != "" {
			data[name] = sel.AttrOr("value", "")
		}
	})
	for name, value := range fields {
		data[name] = value
	}

	target := s.resolve(form.AttrOr("action", ""))
	method := strings.ToUpper(form.AttrOr("method", "POST"))

	req := s.Http.R().SetContext(ctx)
	var res *resty.Response
	var err error
	if method == "GET" {
		res, err = req.SetQueryParams(data).Get(target)
	} else {
		res, err = req.SetFormData(data).Post(target)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit form")
		return fmt.Errorf("could not submit form to %s: %w", target, err)
	}
	if res.StatusCode() >= 400 {
		span.SetStatus(codes.Error, "error status")
		return fmt.Errorf("could not submit form to %s: status %d", target, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return err
	}

	s.url = res.RawResponse.Request.URL
	s.doc = doc
	return nil
}
