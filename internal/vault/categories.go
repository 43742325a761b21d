package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/org/passvault/internal/storage"
)

// Categories returns the user's category list in insertion order.
func (s *Store) Categories(ctx context.Context, userID string) ([]string, error) {
	value, err := s.store.Get(ctx, categoriesKey(userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	var categories []string
	if err := json.Unmarshal(value, &categories); err != nil {
		return nil, fmt.Errorf("unmarshaling categories: %w", err)
	}
	return categories, nil
}

// AddCategory appends a category if not already present.
func (s *Store) AddCategory(ctx context.Context, userID, name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		if c == name {
			return categories, nil
		}
	}
	categories = append(categories, name)
	if err := s.putCategories(ctx, userID, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// RemoveCategory deletes a category from the list. Records keep their
// free-text category value; there is no cascade.
func (s *Store) RemoveCategory(ctx context.Context, userID, name string) ([]string, error) {
	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := categories[:0]
	for _, c := range categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	if err := s.putCategories(ctx, userID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Store) putCategories(ctx context.Context, userID string, categories []string) error {
	value, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshaling categories: %w", err)
	}
	return s.store.Put(ctx, categoriesKey(userID), value, 0)
}

func categoriesKey(userID string) string {
	return "categories:" + userID
}
