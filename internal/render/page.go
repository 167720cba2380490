// Package render builds the board page as templ components.
//
// Rendering is a pure function of PageData. Every user-controlled string is
// HTML-escaped before it is written; the only raw markup is the fixed page
// skeleton and the <br> elements inserted for line breaks.
package render

import (
	"bytes"
	"context"
	"embed"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/blackmichael/bulletin/internal/domain"
	"github.com/blackmichael/bulletin/internal/i18n"
	"github.com/dustin/go-humanize"
)

// ImagePathPrefix is the URL path under which blobs are served.
const ImagePathPrefix = "/image/"

// ScriptPath is the URL path of the advisory upload-size script.
const ScriptPath = "/static/board.js"

const timestampLayout = "2006-01-02 15:04:05"

// StaticFS holds the page's same-origin static assets.
//
//go:embed static/*
var StaticFS embed.FS

// PageData is everything the board page displays.
type PageData struct {
	Copy      i18n.Copy
	ErrorCode string
	Posts     []domain.Post

	// Location is used to display timestamps. Nil means UTC.
	Location *time.Location

	// Now anchors relative timestamps. Zero means time.Now().
	Now time.Time
}

// Page returns the full board document.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return layout(data.Copy).Render(templ.WithChildren(ctx, content(data)), w)
	})
}

// RenderPage renders the board document into a byte slice.
func RenderPage(ctx context.Context, data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := Page(data).Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func layout(c i18n.Copy) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.raw(`<!doctype html>` + "\n" + `<html lang="`)
		pw.text(c.Lang)
		pw.raw(`">` + "\n<head>\n" + `<meta charset="utf-8">` + "\n<title>")
		pw.text(c.Title)
		pw.raw("</title>\n" + `<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n<style>")
		pw.raw(pageCSS)
		pw.raw("</style>\n</head>\n<body>\n<h1>")
		pw.text(c.Title)
		pw.raw("</h1>\n")
		if pw.err != nil {
			return pw.err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		pw.raw(`<script src="` + ScriptPath + `"></script>` + "\n</body>\n</html>\n")
		return pw.err
	})
}

func content(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := errorBanner(data.Copy, data.ErrorCode).Render(ctx, w); err != nil {
			return err
		}
		if err := postForm(data.Copy).Render(ctx, w); err != nil {
			return err
		}

		pw := &pageWriter{w: w}
		pw.raw("<h2>")
		pw.text(data.Copy.ListHeading)
		pw.raw("</h2>\n")
		if pw.err != nil {
			return pw.err
		}

		loc := data.Location
		if loc == nil {
			loc = time.UTC
		}
		now := data.Now
		if now.IsZero() {
			now = time.Now()
		}
		for _, p := range data.Posts {
			if err := postItem(data.Copy, p, loc, now).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// errorBanner renders the localized message for code, or nothing when code
// is empty.
func errorBanner(c i18n.Copy, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		msg := c.ErrorMessage(strings.TrimSpace(code))
		if msg == "" {
			return nil
		}
		pw := &pageWriter{w: w}
		pw.raw(`<div class="err" role="alert">`)
		pw.text(msg)
		pw.raw("</div>\n")
		return pw.err
	})
}

func postForm(c i18n.Copy) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.raw(`<form method="POST" action="/" enctype="multipart/form-data">` + "\n")
		pw.raw(`<label for="body">`)
		pw.text(c.BodyLabel)
		pw.raw("</label>\n" + `<textarea id="body" name="body" maxlength="` + strconv.Itoa(domain.MaxBodyChars) + `" required></textarea>` + "\n")
		pw.raw(`<div class="field">` + "\n" + `<label for="imageInput">`)
		pw.text(c.ImageLabel)
		pw.raw("</label><br>\n")
		pw.raw(`<input type="file" accept="image/*" name="image" id="imageInput" data-size-limit="` +
			strconv.FormatInt(domain.MaxImageBytes, 10) + `" data-size-alert="`)
		pw.text(c.SizeAlert)
		pw.raw(`">` + "\n</div>\n" + `<button type="submit">`)
		pw.text(c.Submit)
		pw.raw("</button>\n</form>\n")
		return pw.err
	})
}

func postItem(c i18n.Copy, p domain.Post, loc *time.Location, now time.Time) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		pw := &pageWriter{w: w}
		pw.raw(`<div class="post" id="post-` + strconv.FormatInt(p.ID, 10) + `">` + "\n")
		pw.raw(`<div class="meta">#` + strconv.FormatInt(p.ID, 10) + " / ")
		if !p.CreatedAt.IsZero() {
			pw.raw(`<time datetime="`)
			pw.text(p.CreatedAt.UTC().Format(time.RFC3339))
			pw.raw(`" title="`)
			pw.text(humanize.RelTime(p.CreatedAt, now, "ago", "from now"))
			pw.raw(`">`)
			pw.text(p.CreatedAt.In(loc).Format(timestampLayout))
			pw.raw("</time>")
		}
		pw.raw("</div>\n" + `<div class="content">`)
		pw.raw(BodyHTML(p.Body))
		if p.HasImage() {
			pw.raw("\n" + `<img src="`)
			pw.text(ImageURL(*p.ImageFilename))
			pw.raw(`" alt="`)
			pw.text(c.ImageAlt)
			pw.raw(`">`)
		}
		pw.raw("</div>\n</div>\n")
		return pw.err
	})
}

var lineBreaks = strings.NewReplacer("\r\n", "<br>\n", "\n", "<br>\n", "\r", "<br>\n")

// BodyHTML escapes body for an HTML text context and turns line breaks into
// <br> elements.
func BodyHTML(body string) string {
	return lineBreaks.Replace(templ.EscapeString(body))
}

// ImageURL returns the path of an image blob with the filename path-escaped.
func ImageURL(filename string) string {
	return ImagePathPrefix + url.PathEscape(filename)
}

// pageWriter writes until the first error and remembers it.
type pageWriter struct {
	w   io.Writer
	err error
}

func (pw *pageWriter) raw(s string) {
	if pw.err != nil {
		return
	}
	_, pw.err = io.WriteString(pw.w, s)
}

func (pw *pageWriter) text(s string) {
	pw.raw(templ.EscapeString(s))
}
