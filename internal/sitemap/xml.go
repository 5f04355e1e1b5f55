package sitemap

import (
	"encoding/xml"
	"io"
	"strconv"
	"time"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

type xmlSitemap struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// WriteURLSet renders entries as a <urlset> document.
func WriteURLSet(w io.Writer, entries []Entry) error {
	set := urlSet{Xmlns: xmlns, URLs: make([]xmlURL, len(entries))}
	for i, e := range entries {
		set.URLs[i] = xmlURL{
			Loc:        e.URL,
			LastMod:    lastMod(e.LastModified),
			ChangeFreq: e.ChangeFrequency,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
	}
	return write(w, set)
}

// WriteIndex renders a <sitemapindex> pointing at baseURL/sitemap/<id>.xml.
func WriteIndex(w io.Writer, baseURL string, ids []string, modified time.Time) error {
	index := sitemapIndex{Xmlns: xmlns, Sitemaps: make([]xmlSitemap, len(ids))}
	for i, id := range ids {
		index.Sitemaps[i] = xmlSitemap{Loc: SitemapURL(baseURL, id), LastMod: lastMod(modified)}
	}
	return write(w, index)
}

// SitemapURL is where sitemap id is served under baseURL.
func SitemapURL(baseURL, id string) string {
	return baseURL + "/sitemap/" + id + ".xml"
}

func write(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
