package catalog

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cristianoliveira/retroshelf/internal/api"
	"github.com/cristianoliveira/retroshelf/internal/listing"
)

// Condition grades an item's physical state.
type Condition string

const (
	ConditionSealed   Condition = "sealed"
	ConditionComplete Condition = "complete"
	ConditionBoxed    Condition = "boxed"
	ConditionLoose    Condition = "loose"
	ConditionDamaged  Condition = "damaged"
)

// Conditions lists the accepted grades, best first.
var Conditions = []Condition{ConditionSealed, ConditionComplete, ConditionBoxed, ConditionLoose, ConditionDamaged}

// IsValid reports whether c is an accepted grade.
func (c Condition) IsValid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

const (
	maxNotesLength = 1000
	dateLayout     = "2006-01-02"
)

// CollectionForm adds a catalog item to the user's collection.
type CollectionForm struct {
	Kind          listing.ProfileKind `json:"kind"`
	CatalogID     int                 `json:"catalogId"`
	Condition     Condition           `json:"condition"`
	Notes         string              `json:"notes,omitempty"`
	IsFavorite    bool                `json:"isFavorite"`
	PurchasePrice *int                `json:"purchasePrice,omitempty"`
	PurchaseDate  string              `json:"purchaseDate,omitempty"`
}

// CollectionUpdate edits a collection item. Nil fields are left unchanged.
type CollectionUpdate struct {
	Condition     *Condition `json:"condition,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	IsFavorite    *bool      `json:"isFavorite,omitempty"`
	PurchasePrice *int       `json:"purchasePrice,omitempty"`
	PurchaseDate  *string    `json:"purchaseDate,omitempty"`
}

// fieldErrors collects per-field failures in the backend's error shape.
type fieldErrors map[string]api.FieldError

func (f fieldErrors) add(field, typ, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = api.FieldError{Message: msg, Type: typ}
	}
}

// err returns a validation *api.Error, or nil when nothing failed.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &api.Error{
		Kind:    api.KindValidation,
		Status:  http.StatusUnprocessableEntity,
		Code:    api.CodeValidationError,
		Message: "invalid collection item",
		Fields:  f,
	}
}

// Validate checks the form locally. Failures come back as an *api.Error of
// kind validation so they render like backend validation errors.
func (f CollectionForm) Validate() error {
	errs := fieldErrors{}
	switch f.Kind {
	case listing.ProfileGames, listing.ProfileConsoles, listing.ProfileAccessories, listing.ProfileKits:
	case "":
		errs.add("kind", "required", "kind is required")
	default:
		errs.add("kind", "invalid", "kind must be one of game, console, accessory, kit")
	}
	if f.CatalogID <= 0 {
		errs.add("catalogId", "required", "catalog item is required")
	}
	if f.Condition == "" {
		errs.add("condition", "required", "condition is required")
	}
	validateCommon(errs, &f.Condition, &f.Notes, f.PurchasePrice, &f.PurchaseDate)
	return errs.err()
}

// Validate checks the update locally.
func (u CollectionUpdate) Validate() error {
	errs := fieldErrors{}
	if u.Condition == nil && u.Notes == nil && u.IsFavorite == nil && u.PurchasePrice == nil && u.PurchaseDate == nil {
		errs.add("update", "required", "nothing to update")
	}
	validateCommon(errs, u.Condition, u.Notes, u.PurchasePrice, u.PurchaseDate)
	return errs.err()
}

func validateCommon(errs fieldErrors, condition *Condition, notes *string, price *int, date *string) {
	if condition != nil && *condition != "" && !condition.IsValid() {
		errs.add("condition", "invalid", "condition must be one of sealed, complete, boxed, loose, damaged")
	}
	if notes != nil && utf8.RuneCountInString(*notes) > maxNotesLength {
		errs.add("notes", "too_long", "notes must be at most 1000 characters")
	}
	if price != nil && *price < 0 {
		errs.add("purchasePrice", "invalid", "purchase price must not be negative")
	}
	if date != nil && strings.TrimSpace(*date) != "" {
		d, err := time.Parse(dateLayout, strings.TrimSpace(*date))
		if err != nil {
			errs.add("purchaseDate", "invalid", "purchase date must look like 2006-01-02")
		} else if d.After(time.Now()) {
			errs.add("purchaseDate", "invalid", "purchase date must not be in the future")
		}
	}
}
