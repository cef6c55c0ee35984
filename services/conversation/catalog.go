package conversation

import (
	"context"
	"fmt"

	inventoryRepo "sherpa/database/repository/inventory"
	"sherpa/models"
)

// PageSize is the number of listings shown per page while browsing.
const PageSize = 5

// MenuCatalog builds the selectable option lists for the budget, type,
// brand and car-listing steps by querying the inventory repository.
type MenuCatalog struct {
	Inventory inventoryRepo.InventoryRepository
}

// TypesForBudget returns the distinct vehicle types available in the budget
// band. An empty slice is valid and renders as "no types available".
func (c *MenuCatalog) TypesForBudget(ctx context.Context, budgetID string) ([]models.Option, error) {
	price, err := ResolveBudget(budgetID)
	if err != nil {
		return nil, err
	}
	types, err := c.Inventory.DistinctTypes(ctx, price)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return asOptions(types), nil
}

// BrandsForBudgetAndType returns the distinct makes matching the budget band
// and vehicle type.
func (c *MenuCatalog) BrandsForBudgetAndType(ctx context.Context, budgetID, carType string) ([]models.Option, error) {
	price, err := ResolveBudget(budgetID)
	if err != nil {
		return nil, err
	}
	makes, err := c.Inventory.DistinctMakes(ctx, price, carType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return asOptions(makes), nil
}

// ListingsPage returns one page of listings for the chosen filters, ordered
// ascending by price. A short page (fewer than PageSize rows) means the
// catalog is exhausted.
func (c *MenuCatalog) ListingsPage(ctx context.Context, budgetID, carType, brand string, offset int64) ([]models.CarListing, error) {
	price, err := ResolveBudget(budgetID)
	if err != nil {
		return nil, err
	}
	listings, err := c.Inventory.ListingsPage(ctx, price, carType, brand, offset, PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return listings, nil
}

func asOptions(values []string) []models.Option {
	opts := make([]models.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, models.Option{ID: v, Title: v})
	}
	return opts
}
