package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pujana-systems/stockwatch/pkg/model"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout accepted by ImportCatalog:
//
//	categories:
//	  - name: Switches
//	    description: Wall switches and dimmers
//	items:
//	  - name: 2-gang switch
//	    model_number: SW-210
//	    category: Switches
//	    quantity: 40
type catalogFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Items []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		ModelNumber string `yaml:"model_number"`
		Category    string `yaml:"category"`
		Quantity    int    `yaml:"quantity"`
	} `yaml:"items"`
}

// ImportCatalog loads categories and items from a YAML seed file.
// Entries that already exist are skipped, so the import is idempotent.
// It returns how many categories and items were created.
func (s *Service) ImportCatalog(ctx context.Context, path string) (categories, items int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read catalog file: %w", err)
	}

	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return 0, 0, fmt.Errorf("parse catalog file: %w", err)
	}

	for _, c := range catalog.Categories {
		_, err := s.CreateCategory(ctx, c.Name, c.Description)
		if errors.Is(err, model.ErrConflict) {
			s.logger.Debug("category exists, skipping", "name", c.Name)
			continue
		}
		if err != nil {
			return categories, items, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		categories++
	}

	byName := map[string]int64{}
	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return categories, items, err
	}
	for _, c := range existing {
		byName[c.Name] = c.ID
	}

	for _, i := range catalog.Items {
		item := &model.Item{
			Name:        i.Name,
			Description: i.Description,
			ModelNumber: i.ModelNumber,
			CategoryID:  byName[i.Category],
			Quantity:    i.Quantity,
		}
		_, err := s.CreateItem(ctx, item)
		if errors.Is(err, model.ErrConflict) {
			s.logger.Debug("item exists, skipping", "model_number", i.ModelNumber)
			continue
		}
		if err != nil {
			return categories, items, fmt.Errorf("create item %q: %w", i.Name, err)
		}
		items++
	}

	return categories, items, nil
}
