package main

import (
	"fmt"
	"math"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cristianoliveira/retroshelf/cmd"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/colors"
	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/spf13/cobra"
)

const collectionCommandLong = `Manage your collection.

USAGE:
    retroshelf collection <subcommand>

SUBCOMMANDS:
    add      Add a catalog item to your collection
    edit     Change an item you own
    rm       Remove an item
    photo    Attach a photo to an item

Invalid fields are reported one per line before anything is sent.

EXAMPLES:
    retroshelf collection add --kind console --id 12 --condition boxed --price 45.00
    retroshelf collection edit 7 --favorite=true --notes "box has a dent"
    retroshelf collection photo 7 ./box.jpg`

// itemFlags are the editable fields of a collection item.
type itemFlags struct {
	condition string
	notes     string
	favorite  bool
	price     string
	date      string
}

func (f *itemFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.condition, "condition", "", "sealed, complete, boxed, loose or damaged")
	c.Flags().StringVar(&f.notes, "notes", "", "Free-form notes (max 1000 characters)")
	c.Flags().BoolVar(&f.favorite, "favorite", false, "Mark as favorite")
	c.Flags().StringVar(&f.price, "price", "", "Purchase price, e.g. 19.99")
	c.Flags().StringVar(&f.date, "date", "", "Purchase date as YYYY-MM-DD")
}

// NewCollectionCmd creates the collection command with explicit dependencies.
func NewCollectionCmd(load appLoader) *cobra.Command {
	if load == nil {
		panic("NewCollectionCmd: load dependency cannot be nil")
	}
	c := &cobra.Command{
		Use:   "collection",
		Short: "Manage your collection",
		Long:  collectionCommandLong,
	}
	c.AddCommand(newCollectionAddCmd(load), newCollectionEditCmd(load), newCollectionRmCmd(load), newCollectionPhotoCmd(load))
	return c
}

func newCollectionAddCmd(load appLoader) *cobra.Command {
	var kind string
	var id int
	var fields itemFlags
	c := &cobra.Command{
		Use:   "add",
		Short: "Add a catalog item to your collection",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			form := catalog.CollectionForm{
				Kind:         listing.ProfileKind(strings.ToLower(strings.TrimSpace(kind))),
				CatalogID:    id,
				Condition:    catalog.Condition(fields.condition),
				Notes:        fields.notes,
				IsFavorite:   fields.favorite,
				PurchaseDate: fields.date,
			}
			if k, err := listing.ParseProfileKind(kind); err == nil {
				form.Kind = k
			}
			if fields.price != "" {
				cents, err := parsePrice(fields.price)
				if err != nil {
					return err
				}
				form.PurchasePrice = &cents
			}
			item, err := a.catalog.AddToCollection(c.Context(), form)
			if err != nil {
				return a.report(err)
			}
			colors.Success(fmt.Sprintf("Added %s to your collection (item %d)", displayName(item.Name, string(form.Kind)), item.ID))
			return nil
		},
	}
	c.Flags().StringVar(&kind, "kind", "", "game, console, accessory or kit")
	c.Flags().IntVar(&id, "id", 0, "Catalog item id")
	fields.register(c)
	return c
}

func newCollectionEditCmd(load appLoader) *cobra.Command {
	var fields itemFlags
	c := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change an item you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			upd, err := updateFromFlags(c, &fields)
			if err != nil {
				return err
			}
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			item, err := a.catalog.UpdateCollectionItem(c.Context(), id, upd)
			if err != nil {
				return a.report(err)
			}
			colors.Success(fmt.Sprintf("Updated item %d", item.ID))
			return nil
		},
	}
	fields.register(c)
	return c
}

// updateFromFlags sets only the fields whose flags were given.
func updateFromFlags(c *cobra.Command, f *itemFlags) (catalog.CollectionUpdate, error) {
	var upd catalog.CollectionUpdate
	changed := c.Flags().Changed
	if changed("condition") {
		cond := catalog.Condition(f.condition)
		upd.Condition = &cond
	}
	if changed("notes") {
		upd.Notes = &f.notes
	}
	if changed("favorite") {
		upd.IsFavorite = &f.favorite
	}
	if changed("price") {
		cents, err := parsePrice(f.price)
		if err != nil {
			return upd, err
		}
		upd.PurchasePrice = &cents
	}
	if changed("date") {
		upd.PurchaseDate = &f.date
	}
	return upd, nil
}

func newCollectionRmCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			a, err := load(c.Context())
			if err != nil {
				return err
			}
			if err := a.catalog.RemoveFromCollection(c.Context(), id); err != nil {
				return a.report(err)
			}
			colors.Success(fmt.Sprintf("Removed item %d", id))
			return nil
		},
	}
}

func newCollectionPhotoCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <item-id> <file>",
		Short: "Attach a photo to an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open photo: %w", err)
			}
			defer f.Close()

			a, err := load(c.Context())
			if err != nil {
				return err
			}
			name := filepath.Base(args[1])
			photo, err := a.catalog.UploadCollectionPhoto(c.Context(), id, name, mime.TypeByExtension(filepath.Ext(name)), f)
			if err != nil {
				return a.report(err)
			}
			colors.Success(fmt.Sprintf("Uploaded %s", photo.URL))
			return nil
		},
	}
}

func parseItemID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", raw)
	}
	return id, nil
}

// parsePrice converts a decimal amount to cents.
func parsePrice(raw string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	return int(math.Round(v * 100)), nil
}

func init() {
	cmd.RootCmd.AddCommand(NewCollectionCmd(loadApp))
}
