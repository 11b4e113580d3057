// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package manufacturer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/taibuivan/etalage/internal/core/image"
	"github.com/taibuivan/etalage/internal/platform/validate"
	"github.com/taibuivan/etalage/pkg/uuid"
)

type Service struct {
	repo     Repository
	resolver *image.Resolver
	logger   *slog.Logger
}

func NewService(repo Repository, resolver *image.Resolver, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		logger:   logger,
	}
}

func (service *Service) ListManufacturers(context context.Context, filter Filter, limit, offset int) ([]*Manufacturer, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetManufacturer(context context.Context, id string) (*Manufacturer, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateManufacturer persists a manufacturer and its pictures atomically.

Parameters:
  - context: context.Context
  - input: Input (Name required)

Returns:
  - *Manufacturer: The created manufacturer
  - error: Validation, conflict (duplicate name) or persistence errors
*/
func (service *Service) CreateManufacturer(context context.Context, input Input) (*Manufacturer, error) {
	manufacturer := &Manufacturer{
		ID:          uuid.New(),
		PhoneNumber: input.PhoneNumber,
		Description: input.Description,
		Pictures:    []*image.Image{},
	}
	if input.Name != nil {
		manufacturer.Name = strings.TrimSpace(*input.Name)
	}

	if err := validateManufacturer(manufacturer); err != nil {
		return nil, err
	}

	err := service.repo.Transaction(context, func(store TxStore) error {
		if err := store.Create(context, manufacturer); err != nil {
			return err
		}

		if input.Pictures == nil {
			return nil
		}

		pictures, err := service.resolvePictures(context, store, *input.Pictures)
		if err != nil {
			return err
		}
		manufacturer.Pictures = pictures

		return store.ReplacePictures(context, manufacturer.ID, image.IDs(pictures))
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("manufacturer_created",
		slog.String("manufacturer_id", manufacturer.ID),
		slog.String("name", manufacturer.Name),
	)
	return manufacturer, nil
}

/*
UpdateManufacturer applies a partial update.

Description: A present pictures list replaces the previous set. Pictures no
longer referenced anywhere are deleted with their blobs once the transaction
has committed.
*/
func (service *Service) UpdateManufacturer(context context.Context, id string, input Input) (*Manufacturer, error) {
	var manufacturer *Manufacturer
	var purged []string

	err := service.repo.Transaction(context, func(store TxStore) error {
		current, err := store.FindByID(context, id)
		if err != nil {
			return err
		}
		manufacturer = current

		if input.Name != nil {
			manufacturer.Name = strings.TrimSpace(*input.Name)
		}
		if input.PhoneNumber != nil {
			manufacturer.PhoneNumber = input.PhoneNumber
		}
		if input.Description != nil {
			manufacturer.Description = input.Description
		}

		if err := validateManufacturer(manufacturer); err != nil {
			return err
		}

		if err := store.Update(context, manufacturer); err != nil {
			return err
		}

		if input.Pictures == nil {
			return nil
		}

		previous := image.IDs(manufacturer.Pictures)
		pictures, err := service.resolvePictures(context, store, *input.Pictures)
		if err != nil {
			return err
		}

		kept := image.IDs(pictures)
		if err := store.ReplacePictures(context, manufacturer.ID, kept); err != nil {
			return err
		}
		manufacturer.Pictures = pictures

		dropped := slices.DeleteFunc(previous, func(imageID string) bool {
			return slices.Contains(kept, imageID)
		})
		purged, err = store.DeleteUnreferencedImages(context, dropped)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.resolver.Purge(context, purged)
	service.logger.Info("manufacturer_updated", slog.String("manufacturer_id", id))
	return manufacturer, nil
}

// DeleteManufacturer removes a manufacturer. Its listings remain with no
// manufacturer, and pictures nothing else uses are deleted.
func (service *Service) DeleteManufacturer(context context.Context, id string) error {
	var purged []string

	err := service.repo.Transaction(context, func(store TxStore) error {
		current, err := store.FindByID(context, id)
		if err != nil {
			return err
		}

		if err := store.Delete(context, id); err != nil {
			return err
		}

		purged, err = store.DeleteUnreferencedImages(context, image.IDs(current.Pictures))
		return err
	})
	if err != nil {
		return err
	}

	service.resolver.Purge(context, purged)
	service.logger.Warn("manufacturer_deleted", slog.String("manufacturer_id", id))
	return nil
}

func (service *Service) resolvePictures(context context.Context, store image.Store, inputs []image.Input) ([]*image.Image, error) {
	pictures := make([]*image.Image, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for index, input := range inputs {
		picture, err := service.resolver.Resolve(context, store, fmt.Sprintf("%s[%d]", FieldPictures, index), input)
		if err != nil {
			return nil, err
		}
		if _, duplicate := seen[picture.ID]; duplicate {
			continue
		}
		seen[picture.ID] = struct{}{}
		pictures = append(pictures, picture)
	}

	return pictures, nil
}

func validateManufacturer(manufacturer *Manufacturer) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, manufacturer.Name).MaxLen(FieldName, manufacturer.Name, maxNameLength)
	if manufacturer.PhoneNumber != nil {
		validator.MaxLen(FieldPhoneNumber, *manufacturer.PhoneNumber, 32)
	}
	return validator.Err()
}
