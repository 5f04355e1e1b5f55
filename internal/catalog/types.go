// Package catalog is the typed surface over the REST API: catalog
// resources, public profiles, the user's collection, and the loaders that
// feed list views from a coordinator through the fetch cache.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Page is one page of a paginated list response.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalPages int `json:"totalPages"`
}

// normalize fills pagination fields older endpoints leave out.
func (p *Page[T]) normalize(page, perPage int) {
	if p.Page == 0 {
		p.Page = page
	}
	if p.PerPage == 0 {
		p.PerPage = perPage
	}
	if p.TotalPages == 0 && p.PerPage > 0 {
		p.TotalPages = (p.Total + p.PerPage - 1) / p.PerPage
	}
	if p.Items == nil {
		p.Items = []T{}
	}
}

// Genre is a game genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Platform is a console a game was released on.
type Platform struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Game is a catalog game.
type Game struct {
	ID          int        `json:"id"`
	Slug        string     `json:"slug"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ReleaseYear int        `json:"releaseYear,omitempty"`
	Genres      []Genre    `json:"genres,omitempty"`
	Platforms   []Platform `json:"platforms,omitempty"`
	Rating      float64    `json:"rating,omitempty"`
	CoverURL    string     `json:"coverUrl,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Console is a catalog console.
type Console struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Generation  int       `json:"generation,omitempty"`
	Type        string    `json:"type,omitempty"`
	ReleaseYear int       `json:"releaseYear,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Accessory is a catalog accessory.
type Accessory struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	SubType   string    `json:"subType,omitempty"`
	Console   string    `json:"console,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Kit is a bundle of a console with games and accessories.
type Kit struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Console   string    `json:"console,omitempty"`
	Contents  []string  `json:"contents,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Listing is a marketplace offer. Price is in cents.
type Listing struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Price     int       `json:"price"`
	Currency  string    `json:"currency"`
	Condition string    `json:"condition"`
	Platform  string    `json:"platform,omitempty"`
	Seller    string    `json:"seller"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile is a public profile.
type UserProfile struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	DisplayName string         `json:"displayName"`
	Bio         string         `json:"bio,omitempty"`
	AvatarURL   string         `json:"avatarUrl,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CollectionItem is one owned item. PurchasePrice is in cents.
type CollectionItem struct {
	ID            int       `json:"id"`
	Kind          string    `json:"kind"`
	CatalogID     int       `json:"catalogId"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Condition     Condition `json:"condition"`
	Notes         string    `json:"notes,omitempty"`
	IsFavorite    bool      `json:"isFavorite"`
	PurchasePrice *int      `json:"purchasePrice,omitempty"`
	PurchaseDate  string    `json:"purchaseDate,omitempty"`
	Photos        []string  `json:"photos,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Photo is an uploaded collection photo.
type Photo struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Ref is the minimal shape every catalog item shares. Sitemaps read pages
// of Refs from any list endpoint.
type Ref struct {
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary is the display row every list item renders to.
type Summary struct {
	ID       string
	Title    string
	Subtitle string
	Detail   string
	Favorite bool
}

// Summary implements Summarizer.
func (g Game) Summary() Summary {
	names := make([]string, len(g.Platforms))
	for i, p := range g.Platforms {
		names[i] = p.Name
	}
	return Summary{ID: g.Slug, Title: g.Name, Subtitle: year(g.ReleaseYear), Detail: strings.Join(names, ", ")}
}

// Summary implements Summarizer.
func (c Console) Summary() Summary {
	detail := c.Type
	if c.Generation > 0 {
		detail = strings.TrimSpace(fmt.Sprintf("gen %d %s", c.Generation, c.Type))
	}
	return Summary{ID: c.Slug, Title: c.Name, Subtitle: c.Brand, Detail: detail}
}

// Summary implements Summarizer.
func (a Accessory) Summary() Summary {
	kind := a.Type
	if a.SubType != "" {
		kind += "/" + a.SubType
	}
	return Summary{ID: a.Slug, Title: a.Name, Subtitle: kind, Detail: a.Console}
}

// Summary implements Summarizer.
func (l Listing) Summary() Summary {
	return Summary{
		ID:       strconv.Itoa(l.ID),
		Title:    l.Title,
		Subtitle: FormatPrice(l.Price, l.Currency),
		Detail:   strings.TrimSpace(l.Condition + " " + l.Platform),
	}
}

// Summary implements Summarizer.
func (c CollectionItem) Summary() Summary {
	detail := string(c.Condition)
	if c.PurchasePrice != nil {
		detail += ", paid " + FormatPrice(*c.PurchasePrice, "")
	}
	return Summary{ID: strconv.Itoa(c.ID), Title: c.Name, Subtitle: c.Kind, Detail: detail, Favorite: c.IsFavorite}
}

// Summarizer converts an item to its display row.
type Summarizer interface {
	Summary() Summary
}

// Summaries converts a typed page to a page of display rows.
func Summaries[T Summarizer](p Page[T]) Page[Summary] {
	out := Page[Summary]{Total: p.Total, Page: p.Page, PerPage: p.PerPage, TotalPages: p.TotalPages}
	out.Items = make([]Summary, len(p.Items))
	for i, item := range p.Items {
		out.Items[i] = item.Summary()
	}
	return out
}

// FormatPrice renders cents as a decimal amount, e.g. 1999 -> "19.99 EUR".
func FormatPrice(cents int, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	s := fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	if currency != "" {
		s += " " + currency
	}
	return s
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}
