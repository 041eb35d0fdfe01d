package hxasset

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// AssetURL joins a published base URL and a file path relative to the
// published directory.
//
//	hxasset.AssetURL("/assets/widget-1a2b", "css/widget.css")
//	// "/assets/widget-1a2b/css/widget.css"
//
// An empty base returns an empty string, so unpublished assets never
// resolve to a root-relative path.
func AssetURL(base, file string) string {
	if base == "" {
		return ""
	}
	file = strings.TrimLeft(file, "/")
	if file == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + file
}

// URL returns the public URL of file within the publisher's directory,
// publishing the directory on first use.
func (p *Publisher) URL(file string) (string, error) {
	base, err := p.PublishedURL()
	if err != nil {
		return "", err
	}
	return AssetURL(base, file), nil
}

// Stylesheet returns a templ component rendering a <link> tag for a CSS file
// inside the publisher's directory.
//
// Add it to a component's template head:
//
//	@hxasset.Stylesheet(c.assets, "datepicker.css")
//
// Publish errors are returned from Render. A detached publisher renders
// nothing.
func Stylesheet(p *Publisher, file string) templ.Component {
	return assetTag(p, file, `<link rel="stylesheet" href="`, `">`)
}

// Script returns a templ component rendering a deferred <script> tag for a
// JavaScript file inside the publisher's directory.
//
//	@hxasset.Script(c.assets, "datepicker.js")
func Script(p *Publisher, file string) templ.Component {
	return assetTag(p, file, `<script src="`, `" defer></script>`)
}

// assetTag renders open + escaped URL + end, resolving the URL at render
// time so publishing stays lazy.
func assetTag(p *Publisher, file, open, end string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		url, err := p.URL(file)
		if err != nil {
			return err
		}
		if url == "" {
			return nil
		}
		_, err = io.WriteString(w, open+html.EscapeString(url)+end)
		return err
	})
}
