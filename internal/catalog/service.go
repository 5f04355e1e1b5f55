package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/listing"
)

// Requester is the REST surface the service needs. *api.Client implements it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
	Post(ctx context.Context, path string, body, dest any) error
	Patch(ctx context.Context, path string, body, dest any) error
	Delete(ctx context.Context, path string, dest any) error
	Upload(ctx context.Context, path string, fields map[string]string, file api.UploadFile, dest any) error
}

// Invalidator drops cached entries by key prefix. *query.Cache implements it.
type Invalidator interface {
	Invalidate(prefix string) int
}

var _ Requester = (*api.Client)(nil)

// Service wraps the catalog endpoints.
type Service struct {
	client Requester
	cache  Invalidator
}

// NewService creates a service. cache may be nil.
func NewService(client Requester, cache Invalidator) *Service {
	return &Service{client: client, cache: cache}
}

func list[T any](ctx context.Context, r Requester, p listing.Params) (Page[T], error) {
	var page Page[T]
	if err := r.Get(ctx, p.Path, p.Query(), &page); err != nil {
		return Page[T]{}, fmt.Errorf("list %s: %w", p.Path, err)
	}
	page.normalize(p.Page, p.PerPage)
	return page, nil
}

// ListGames lists catalog games.
func (s *Service) ListGames(ctx context.Context, p listing.Params) (Page[Game], error) {
	return list[Game](ctx, s.client, p)
}

// ListConsoles lists catalog consoles.
func (s *Service) ListConsoles(ctx context.Context, p listing.Params) (Page[Console], error) {
	return list[Console](ctx, s.client, p)
}

// ListAccessories lists catalog accessories.
func (s *Service) ListAccessories(ctx context.Context, p listing.Params) (Page[Accessory], error) {
	return list[Accessory](ctx, s.client, p)
}

// ListListings lists marketplace offers.
func (s *Service) ListListings(ctx context.Context, p listing.Params) (Page[Listing], error) {
	return list[Listing](ctx, s.client, p)
}

// ListProfileItems lists one tab of a public profile. p.Path comes from
// listing.PublicProfile.
func (s *Service) ListProfileItems(ctx context.Context, p listing.Params) (Page[CollectionItem], error) {
	return list[CollectionItem](ctx, s.client, p)
}

// ListRefs reads one page of slugs from any list endpoint.
func (s *Service) ListRefs(ctx context.Context, path string, page, perPage int) (Page[Ref], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	var out Page[Ref]
	if err := s.client.Get(ctx, path, q, &out); err != nil {
		return Page[Ref]{}, fmt.Errorf("list %s: %w", path, err)
	}
	out.normalize(page, perPage)
	return out, nil
}

// Count returns the total number of items behind a list endpoint.
func (s *Service) Count(ctx context.Context, path string) (int, error) {
	page, err := s.ListRefs(ctx, path, 1, 1)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

func get[T any](ctx context.Context, r Requester, collection, slug string) (*T, error) {
	var out T
	if err := r.Get(ctx, collection+"/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, fmt.Errorf("get %s %q: %w", collection, slug, err)
	}
	return &out, nil
}

// GetGame returns one game by slug.
func (s *Service) GetGame(ctx context.Context, slug string) (*Game, error) {
	return get[Game](ctx, s.client, "games", slug)
}

// GetConsole returns one console by slug.
func (s *Service) GetConsole(ctx context.Context, slug string) (*Console, error) {
	return get[Console](ctx, s.client, "consoles", slug)
}

// GetAccessory returns one accessory by slug.
func (s *Service) GetAccessory(ctx context.Context, slug string) (*Accessory, error) {
	return get[Accessory](ctx, s.client, "accessories", slug)
}

// GetKit returns one kit by slug.
func (s *Service) GetKit(ctx context.Context, slug string) (*Kit, error) {
	return get[Kit](ctx, s.client, "kits", slug)
}

// GetProfile returns a public profile by slug.
func (s *Service) GetProfile(ctx context.Context, slug string) (*UserProfile, error) {
	return get[UserProfile](ctx, s.client, "users", slug)
}

const collectionPath = "collection/items"

// AddToCollection validates form and creates the item.
func (s *Service) AddToCollection(ctx context.Context, form CollectionForm) (*CollectionItem, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	var item CollectionItem
	if err := s.client.Post(ctx, collectionPath, form, &item); err != nil {
		return nil, fmt.Errorf("add to collection: %w", err)
	}
	s.invalidate(form.Kind)
	return &item, nil
}

// UpdateCollectionItem validates upd and applies it to item id.
func (s *Service) UpdateCollectionItem(ctx context.Context, id int, upd CollectionUpdate) (*CollectionItem, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	var item CollectionItem
	if err := s.client.Patch(ctx, itemPath(id), upd, &item); err != nil {
		return nil, fmt.Errorf("update collection item %d: %w", id, err)
	}
	s.invalidate(listing.ProfileKind(item.Kind))
	return &item, nil
}

// RemoveFromCollection deletes item id.
func (s *Service) RemoveFromCollection(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, itemPath(id), nil); err != nil {
		return fmt.Errorf("remove collection item %d: %w", id, err)
	}
	s.invalidate("")
	return nil
}

// UploadCollectionPhoto attaches a photo to item id.
func (s *Service) UploadCollectionPhoto(ctx context.Context, id int, fileName, contentType string, content io.Reader) (*Photo, error) {
	var photo Photo
	file := api.UploadFile{FieldName: "photo", FileName: fileName, ContentType: contentType, Content: content}
	if err := s.client.Upload(ctx, itemPath(id)+"/photos", nil, file, &photo); err != nil {
		return nil, fmt.Errorf("upload photo for item %d: %w", id, err)
	}
	s.invalidate("")
	return &photo, nil
}

func itemPath(id int) string {
	return collectionPath + "/" + strconv.Itoa(id)
}

// invalidate drops cached profile pages for kind, or for every kind when
// kind is empty or unknown.
func (s *Service) invalidate(kind listing.ProfileKind) {
	if s.cache == nil {
		return
	}
	kinds := listing.ProfileKinds
	if parsed, err := listing.ParseProfileKind(string(kind)); err == nil {
		kinds = []listing.ProfileKind{parsed}
	}
	for _, k := range kinds {
		s.cache.Invalidate(string(k) + "-catalog-")
	}
}
