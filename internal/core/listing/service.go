// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/core/manufacturer"
	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/ctxutil"
	"github.com/taibuivan/etalage/internal/platform/validate"
	"github.com/taibuivan/etalage/pkg/pointer"
	"github.com/taibuivan/etalage/pkg/uuid"
)

/*
Service is the Listing Synchronizer.

Every write runs in one transaction: scalar fields, manufacturer and category
associations, the delete contract on replaced units, image resolution and the
new units commit together or not at all. Blobs of images that lost their last
reference are purged only after commit.
*/
type Service struct {
	repo            Repository
	resolver        *image.Resolver
	cache           VariantCache
	defaultLanguage string
	logger          *slog.Logger
}

// NewService wires the synchronizer.
func NewService(repo Repository, resolver *image.Resolver, cache VariantCache, defaultLanguage string, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		resolver:        resolver,
		cache:           cache,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// Detail is a listing with its variant projection.
type Detail struct {
	*Listing
	Variants Variants `json:"variants"`
}

// # Reads

func (service *Service) ListListings(context context.Context, filter Filter, limit, offset int) ([]*Listing, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetListing returns an active listing with its variants projected in mode.

Returns:
  - *Detail: The listing and its projection
  - error: apperr.NotFound for missing or inactive listings
*/
func (service *Service) GetListing(context context.Context, id string, mode Mode) (*Detail, error) {
	listing, err := service.activeListing(context, id)
	if err != nil {
		return nil, err
	}

	representatives, err := service.representatives(context, id)
	if err != nil {
		return nil, err
	}

	return &Detail{Listing: listing, Variants: Variants{Mode: mode, Representatives: representatives}}, nil
}

// ListVariants projects the active units of an active listing.
func (service *Service) ListVariants(context context.Context, listingID string, mode Mode) (Variants, error) {
	if _, err := service.activeListing(context, listingID); err != nil {
		return Variants{}, err
	}

	representatives, err := service.representatives(context, listingID)
	if err != nil {
		return Variants{}, err
	}

	return Variants{Mode: mode, Representatives: representatives}, nil
}

func (service *Service) activeListing(context context.Context, id string) (*Listing, error) {
	listing, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive {
		return nil, apperr.NotFound("Listing")
	}
	return listing, nil
}

// representatives reads the flat projection through the cache. A cache
// failure falls back to PostgreSQL.
func (service *Service) representatives(context context.Context, listingID string) ([]*ProductUnit, error) {
	cached, ok, err := service.cache.Get(context, listingID)
	switch {
	case err != nil:
		service.logger.Warn("variant_cache_read_failed", slog.String("listing_id", listingID), slog.Any("error", err))
	case ok:
		return cached, nil
	default:
		service.logger.Debug("variant_cache_miss", slog.String("listing_id", listingID))
	}

	units, err := service.repo.ListUnits(context, listingID, true)
	if err != nil {
		return nil, err
	}

	representatives := Flat(units)
	if err := service.cache.Set(context, listingID, representatives); err != nil {
		service.logger.Warn("variant_cache_write_failed", slog.String("listing_id", listingID), slog.Any("error", err))
	}

	return representatives, nil
}

// # Writes

/*
CreateListing persists a listing with its expanded units.

Description: The manufacturer is looked up by id, or fetched or created by
name, and falls back to the "Unknown" manufacturer. Unknown category ids
abort the operation. Options that fail validation are skipped and reported;
if every option fails nothing is persisted.

Parameters:
  - context: context.Context
  - payload: Payload (name and price required)

Returns:
  - *Result: The listing with its units and the rejected options
  - error: Validation, conflict or persistence errors
*/
func (service *Service) CreateListing(context context.Context, payload Payload) (*Result, error) {
	listing := &Listing{
		ID:       uuid.New(),
		Weight:   DefaultWeight,
		Kind:     DefaultKind,
		Language: service.defaultLanguage,
		IsActive: true,
		Version:  1,
	}

	required := &validate.Validator{}
	required.Custom(FieldName, payload.Name == nil, "This field is required")
	required.Custom(FieldPrice, payload.Price == nil, "This field is required")
	if err := required.Err(); err != nil {
		return nil, err
	}

	if err := applyScalars(listing, payload); err != nil {
		return nil, err
	}

	categoryIDs, err := normalizeCategoryIDs(payload.Categories)
	if err != nil {
		return nil, err
	}

	result := &Result{RejectedOptions: []Rejection{}}

	err = service.repo.Transaction(context, func(store TxStore) error {
		if err := service.assignManufacturer(context, store, listing, payload, true); err != nil {
			return err
		}

		if err := store.CreateListing(context, listing); err != nil {
			return err
		}

		if categoryIDs != nil {
			if err := attachCategories(context, store, listing.ID, categoryIDs); err != nil {
				return err
			}
		}

		rejected, err := service.expandInto(context, store, listing.ID, pointer.Val(payload.Options))
		if err != nil {
			return err
		}
		result.RejectedOptions = rejected

		result.Listing, err = hydrate(context, store, listing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.invalidate(context, listing.ID)
	service.logger.Info("listing_created",
		slog.String("actor", ctxutil.Actor(context)),
		slog.String("listing_id", listing.ID),
		slog.Int("units", len(result.Listing.Products)),
		slog.Int("rejected_options", len(result.RejectedOptions)),
	)

	return result, nil
}

/*
UpdateListing applies a partial update under a row lock.

Description: Only present scalar fields change and the version increments.
Present categories or manufacturer replace the previous association. Present
options replace every active unit: the new options are expanded first, then
each previous unit goes through the delete contract, archived when sold and
removed otherwise. Images shared by old and new units are reused.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - payload: Payload (Version enables optimistic concurrency)

Returns:
  - *Result: The listing, rejected options and archived/deleted unit counts
  - error: NotFound (also for deleted listings), Conflict on version mismatch, validation or persistence errors
*/
func (service *Service) UpdateListing(context context.Context, id string, payload Payload) (*Result, error) {
	categoryIDs, err := normalizeCategoryIDs(payload.Categories)
	if err != nil {
		return nil, err
	}

	result := &Result{RejectedOptions: []Rejection{}}
	var purged []string

	err = service.repo.Transaction(context, func(store TxStore) error {
		listing, err := store.LockListing(context, id)
		if err != nil {
			return err
		}
		if !listing.IsActive {
			return apperr.NotFound("Listing")
		}

		if payload.Version != nil && *payload.Version != listing.Version {
			return apperr.Conflict(fmt.Sprintf("Listing is at version %d", listing.Version))
		}

		if err := applyScalars(listing, payload); err != nil {
			return err
		}

		if err := service.assignManufacturer(context, store, listing, payload, false); err != nil {
			return err
		}

		if err := store.UpdateListing(context, listing); err != nil {
			return err
		}

		if categoryIDs != nil {
			if err := attachCategories(context, store, listing.ID, categoryIDs); err != nil {
				return err
			}
		}

		if payload.Options != nil {
			previous, err := store.ListUnits(context, listing.ID, true)
			if err != nil {
				return err
			}

			rejected, err := service.expandInto(context, store, listing.ID, *payload.Options)
			if err != nil {
				return err
			}
			result.RejectedOptions = rejected

			outcome, err := retire(context, store, previous)
			if err != nil {
				return err
			}
			result.ArchivedUnits, result.DeletedUnits, purged = outcome.archived, outcome.deleted, outcome.purged
		}

		result.Listing, err = hydrate(context, store, listing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.resolver.Purge(context, purged)
	service.invalidate(context, id)
	service.logger.Info("listing_updated",
		slog.String("actor", ctxutil.Actor(context)),
		slog.String("listing_id", id),
		slog.Int("version", result.Listing.Version),
		slog.Int("archived_units", result.ArchivedUnits),
		slog.Int("deleted_units", result.DeletedUnits),
	)

	return result, nil
}

/*
DeleteListing soft-deletes a listing.

Description: The listing is deactivated and every active unit goes through
the delete contract. Sold units stay behind, archived.
*/
func (service *Service) DeleteListing(context context.Context, id string) (*Result, error) {
	result := &Result{RejectedOptions: []Rejection{}}
	var purged []string

	err := service.repo.Transaction(context, func(store TxStore) error {
		listing, err := store.LockListing(context, id)
		if err != nil {
			return err
		}
		if !listing.IsActive {
			return apperr.NotFound("Listing")
		}

		listing.IsActive = false
		if err := store.UpdateListing(context, listing); err != nil {
			return err
		}

		units, err := store.ListUnits(context, id, true)
		if err != nil {
			return err
		}

		outcome, err := retire(context, store, units)
		if err != nil {
			return err
		}
		result.ArchivedUnits, result.DeletedUnits, purged = outcome.archived, outcome.deleted, outcome.purged

		result.Listing, err = hydrate(context, store, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.resolver.Purge(context, purged)
	service.invalidate(context, id)
	service.logger.Warn("listing_deleted",
		slog.String("actor", ctxutil.Actor(context)),
		slog.String("listing_id", id),
		slog.Int("archived_units", result.ArchivedUnits),
		slog.Int("deleted_units", result.DeletedUnits),
	)

	return result, nil
}

/*
DeleteUnit applies the delete contract to one unit.

Returns:
  - *Removal: Archived is true when the unit was sold and therefore retained
  - error: NotFound or persistence errors
*/
func (service *Service) DeleteUnit(context context.Context, id string) (*Removal, error) {
	removal := &Removal{ID: id}
	var listingID string
	var purged []string

	err := service.repo.Transaction(context, func(store TxStore) error {
		unit, err := store.LockUnit(context, id)
		if err != nil {
			return err
		}
		listingID = unit.ListingID

		// Already archived by an earlier delete.
		if !unit.IsActive {
			removal.Archived = true
			return nil
		}

		outcome, err := retire(context, store, []*ProductUnit{unit})
		if err != nil {
			return err
		}
		removal.Archived = outcome.archived == 1
		purged = outcome.purged
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.resolver.Purge(context, purged)
	service.invalidate(context, listingID)
	service.logger.Info("product_unit_removed",
		slog.String("unit_id", id),
		slog.String("listing_id", listingID),
		slog.Bool("archived", removal.Archived),
	)

	return removal, nil
}

/*
MarkSold records the sale of a unit to an order.

Returns:
  - *ProductUnit: The sold unit
  - error: Conflict when the unit is already sold or archived
*/
func (service *Service) MarkSold(context context.Context, id string, input SaleInput) (*ProductUnit, error) {
	soldAt := pointer.Fallback(input.SoldAt, time.Now()).UTC()
	var sold *ProductUnit

	err := service.repo.Transaction(context, func(store TxStore) error {
		unit, err := store.LockUnit(context, id)
		if err != nil {
			return err
		}

		switch {
		case unit.IsSold:
			return apperr.Conflict("Product is already sold")
		case !unit.IsActive:
			return apperr.Conflict("Product is archived")
		}

		if err := store.MarkSold(context, id, input.OrderID, soldAt); err != nil {
			return err
		}

		unit.IsSold = true
		unit.SoldAt = &soldAt
		unit.InOrder = &input.OrderID
		sold = unit
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.invalidate(context, sold.ListingID)
	service.logger.Info("product_unit_sold",
		slog.String("actor", ctxutil.Actor(context)),
		slog.String("unit_id", id),
		slog.String("order_id", input.OrderID),
	)

	return sold, nil
}

// # Internals

// expandInto expands options and persists the units under listingID. An
// empty option list creates nothing; a list where every option is rejected
// aborts the caller.
func (service *Service) expandInto(context context.Context, store TxStore, listingID string, options []OptionSpec) ([]Rejection, error) {
	if len(options) == 0 {
		return []Rejection{}, nil
	}

	expansion, err := Expand(context, options, bindResolver(service.resolver, store))
	if err != nil {
		return nil, err
	}

	if len(expansion.Units) == 0 {
		return nil, rejectedAll(expansion.Rejected)
	}

	for _, unit := range expansion.Units {
		unit.ListingID = listingID
	}

	if err := store.InsertUnits(context, expansion.Units); err != nil {
		return nil, err
	}

	if len(expansion.Rejected) > 0 {
		service.logger.Warn("listing_options_rejected",
			slog.String("listing_id", listingID),
			slog.Int("rejected", len(expansion.Rejected)),
			slog.Int("accepted", len(options)-len(expansion.Rejected)),
		)
	}

	return expansion.Rejected, nil
}

// bindResolver resolves option images against the transaction's store.
func bindResolver(resolver *image.Resolver, store TxStore) ResolveFunc {
	return func(context context.Context, field string, input image.Input) (*image.Image, error) {
		return resolver.Resolve(context, store, field, input)
	}
}

func (service *Service) assignManufacturer(context context.Context, store TxStore, listing *Listing, payload Payload, creating bool) error {
	switch {
	case payload.ManufacturerID != nil:
		found, err := store.FindManufacturer(context, strings.ToLower(*payload.ManufacturerID))
		if err != nil {
			if apperr.HasCode(err, apperr.CodeNotFound) {
				return apperr.FieldInvalid(FieldManufacturer, "Unknown manufacturer")
			}
			return err
		}
		listing.ManufacturerID = &found.ID

	case payload.ManufacturerName != nil:
		name := strings.TrimSpace(*payload.ManufacturerName)
		if name == "" {
			name = manufacturer.UnknownName
		}
		found, err := store.GetOrCreateManufacturer(context, name)
		if err != nil {
			return err
		}
		listing.ManufacturerID = &found.ID

	case creating:
		found, err := store.GetOrCreateManufacturer(context, manufacturer.UnknownName)
		if err != nil {
			return err
		}
		listing.ManufacturerID = &found.ID
	}

	return nil
}

func (service *Service) invalidate(context context.Context, listingID string) {
	if err := service.cache.Invalidate(context, listingID); err != nil {
		service.logger.Warn("variant_cache_invalidate_failed", slog.String("listing_id", listingID), slog.Any("error", err))
	}
}

// retirement summarizes one pass of the delete contract.
type retirement struct {
	archived int
	deleted  int
	purged   []string
}

/*
retire applies the delete contract to units.

Description: Sold units are archived and lose their image links, unsold ones
are removed. Images that end up with no referent are deleted and their refs
returned for purging after commit.
*/
func retire(context context.Context, store TxStore, units []*ProductUnit) (retirement, error) {
	var sold, unsold, imageIDs []string
	seen := make(map[string]struct{})

	for _, unit := range units {
		if unit.IsSold {
			sold = append(sold, unit.ID)
		} else {
			unsold = append(unsold, unit.ID)
		}

		for _, attached := range unit.Images {
			if _, duplicate := seen[attached.ID]; duplicate {
				continue
			}
			seen[attached.ID] = struct{}{}
			imageIDs = append(imageIDs, attached.ID)
		}
	}

	if err := store.ArchiveUnits(context, sold); err != nil {
		return retirement{}, err
	}
	if err := store.DeleteUnits(context, unsold); err != nil {
		return retirement{}, err
	}

	purged, err := store.DeleteUnreferencedImages(context, imageIDs)
	if err != nil {
		return retirement{}, err
	}

	return retirement{archived: len(sold), deleted: len(unsold), purged: purged}, nil
}

// hydrate reloads the listing with its active units.
func hydrate(context context.Context, store TxStore, id string) (*Listing, error) {
	listing, err := store.FindListing(context, id)
	if err != nil {
		return nil, err
	}

	listing.Products, err = store.ListUnits(context, id, true)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// applyScalars copies the present scalar fields of payload onto listing and
// validates the result.
func applyScalars(listing *Listing, payload Payload) error {
	validator := &validate.Validator{}

	if payload.Name != nil {
		listing.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Description != nil {
		listing.Description = strings.TrimSpace(*payload.Description)
	}
	if payload.Price != nil {
		listing.Price = *payload.Price
	}
	if payload.Weight != nil {
		listing.Weight = *payload.Weight
	}
	if payload.Conservation != nil {
		listing.Conservation = strings.TrimSpace(*payload.Conservation)
	}
	if payload.Kind != nil {
		listing.Kind = *payload.Kind
	}
	if payload.Language != nil {
		normalized, err := validate.NormalizeLanguage(*payload.Language)
		validator.Custom(FieldLanguage, err != nil, "Must be an ISO 639 language code")
		if err == nil {
			listing.Language = normalized
		}
	}

	validator.Required(FieldName, listing.Name).MaxLen(FieldName, listing.Name, maxNameLength)
	validator.NonNegative(FieldPrice, listing.Price)
	validator.Custom(FieldPrice, !listing.Price.Equal(listing.Price.Round(2)), "At most 2 decimal places")
	validator.Custom(FieldWeight, listing.Weight < 0, "Must be zero or more")
	validator.OneOf(FieldKind, string(listing.Kind), string(KindOther), string(KindFood))

	return validator.Err()
}

// normalizeCategoryIDs validates and dedupes category ids. A nil input means
// the categories are left unchanged and yields nil.
func normalizeCategoryIDs(ids *[]string) ([]string, error) {
	if ids == nil {
		return nil, nil
	}

	validator := &validate.Validator{}
	normalized := make([]string, 0, len(*ids))
	seen := make(map[string]struct{}, len(*ids))

	for index, id := range *ids {
		id = strings.ToLower(strings.TrimSpace(id))
		validator.UUID(fmt.Sprintf("%s[%d]", FieldCategories, index), id)
		if _, duplicate := seen[id]; duplicate {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return normalized, nil
}

// attachCategories replaces the categories of a listing. Unknown ids are a
// validation error; categories are never created implicitly.
func attachCategories(context context.Context, store TxStore, listingID string, categoryIDs []string) error {
	missing, err := store.MissingCategories(context, categoryIDs)
	if err != nil {
		return err
	}

	if len(missing) > 0 {
		validator := &validate.Validator{}
		for index, id := range categoryIDs {
			for _, unknown := range missing {
				validator.Custom(fmt.Sprintf("%s[%d]", FieldCategories, index), id == unknown, "Unknown category")
			}
		}
		return validator.Err()
	}

	return store.ReplaceCategories(context, listingID, categoryIDs)
}

func rejectedAll(rejections []Rejection) error {
	details := make([]apperr.FieldError, 0, len(rejections))
	for _, rejection := range rejections {
		details = append(details, apperr.FieldError{Field: rejection.Field, Message: rejection.Reason})
	}
	return apperr.ValidationError("Every option was rejected", details...)
}
