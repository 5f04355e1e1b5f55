package listing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cristianoliveira/retroshelf/internal/prefs"
)

// Filter parameter names used across surfaces.
const (
	FilterGenres     = "genres"
	FilterPlatforms  = "platforms"
	FilterBrand      = "brand"
	FilterGeneration = "generation"
	FilterType       = "type"
	FilterSubType    = "subType"
	FilterConsole    = "console"
	FilterCondition  = "condition"
	FilterPrice      = "price"
	FilterIsFavorite = "isFavorite"
)

var (
	nameSorts = []string{"name-asc", "name-desc"}

	gameFilters = []FilterSpec{
		{Name: FilterGenres, Kind: KindInts},
		{Name: FilterPlatforms, Kind: KindInts},
	}
	consoleFilters = []FilterSpec{
		{Name: FilterBrand, Kind: KindStrings},
		{Name: FilterGeneration, Kind: KindInts},
		{Name: FilterType, Kind: KindStrings},
	}
	accessoryFilters = []FilterSpec{
		{Name: FilterType, Kind: KindStrings},
		{Name: FilterSubType, Kind: KindStrings},
		{Name: FilterConsole, Kind: KindStrings},
	}
)

// GameCatalog is the public game catalog.
func GameCatalog() Definition {
	return Definition{
		Namespace:       "game-catalog",
		Path:            "games",
		DefaultSort:     "name-asc",
		DefaultPerPage:  20,
		DefaultViewMode: prefs.ViewModeGrid,
		Filters:         slices.Clone(gameFilters),
		SortOptions:     slices.Concat(nameSorts, []string{"release-desc", "release-asc", "rating-desc"}),
	}
}

// ConsoleCatalog is the public console catalog.
func ConsoleCatalog() Definition {
	return Definition{
		Namespace:       "console-catalog",
		Path:            "consoles",
		DefaultSort:     "name-asc",
		DefaultPerPage:  20,
		DefaultViewMode: prefs.ViewModeGrid,
		Filters:         slices.Clone(consoleFilters),
		SortOptions:     slices.Concat(nameSorts, []string{"release-desc", "release-asc"}),
	}
}

// AccessoryCatalog is the public accessory catalog.
func AccessoryCatalog() Definition {
	return Definition{
		Namespace:       "accessory-catalog",
		Path:            "accessories",
		DefaultSort:     "name-asc",
		DefaultPerPage:  20,
		DefaultViewMode: prefs.ViewModeGrid,
		Filters:         slices.Clone(accessoryFilters),
		SortOptions:     slices.Clone(nameSorts),
	}
}

// Marketplace lists items for sale. The price filter holds the lowest and
// highest accepted price in cents; its order is not significant.
func Marketplace() Definition {
	return Definition{
		Namespace:       "marketplace",
		Path:            "marketplace/listings",
		DefaultSort:     "created-desc",
		DefaultPerPage:  24,
		DefaultViewMode: prefs.ViewModeList,
		Filters: []FilterSpec{
			{Name: FilterPlatforms, Kind: KindInts},
			{Name: FilterCondition, Kind: KindStrings},
			{Name: FilterPrice, Kind: KindInts},
		},
		SortOptions: []string{"created-desc", "price-asc", "price-desc"},
	}
}

// ProfileKind is the item kind shown on a public profile tab.
type ProfileKind string

const (
	ProfileGames       ProfileKind = "game"
	ProfileConsoles    ProfileKind = "console"
	ProfileAccessories ProfileKind = "accessory"
	ProfileKits        ProfileKind = "kit"
)

// ProfileKinds lists the supported profile tabs.
var ProfileKinds = []ProfileKind{ProfileGames, ProfileConsoles, ProfileAccessories, ProfileKits}

// ParseProfileKind accepts singular or plural kind names.
func ParseProfileKind(raw string) (ProfileKind, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "game", "games":
		return ProfileGames, nil
	case "console", "consoles":
		return ProfileConsoles, nil
	case "accessory", "accessories":
		return ProfileAccessories, nil
	case "kit", "kits":
		return ProfileKits, nil
	default:
		return "", fmt.Errorf("unknown profile kind %q", raw)
	}
}

// Plural returns the collection segment used in API paths.
func (k ProfileKind) Plural() string {
	if k == ProfileAccessories {
		return "accessories"
	}
	return string(k) + "s"
}

// PublicProfile is one item tab of a user's public profile. The namespace is
// "<kind>-catalog-<slug>", so every profile keeps its own preference.
func PublicProfile(slug string, kind ProfileKind) Definition {
	filters := []FilterSpec{{Name: FilterIsFavorite, Kind: KindBool}}
	switch kind {
	case ProfileGames:
		filters = append(filters, gameFilters...)
	case ProfileConsoles:
		filters = append(filters, consoleFilters...)
	case ProfileAccessories:
		filters = append(filters, accessoryFilters...)
	}
	return Definition{
		Namespace:       fmt.Sprintf("%s-catalog-%s", kind, slug),
		Path:            fmt.Sprintf("users/%s/collection/%s", slug, kind.Plural()),
		DefaultSort:     "added-desc",
		DefaultPerPage:  20,
		DefaultViewMode: prefs.ViewModeGrid,
		Filters:         filters,
		SortOptions:     slices.Concat(nameSorts, []string{"added-desc", "added-asc"}),
	}
}
