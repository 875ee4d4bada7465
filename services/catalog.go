package services

import (
	"context"
	"sync"

	"food-ordering/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Catalog holds the food list. It is fetched once per process; later
// Load calls return the cached list.
type Catalog struct {
	api    CatalogAPI
	logger *zap.Logger
	sfg    singleflight.Group

	mu     sync.RWMutex
	loaded bool
	foods  []models.FoodItem
	byID   map[int]models.FoodItem
}

func NewCatalog(api CatalogAPI, logger *zap.Logger) *Catalog {
	return &Catalog{
		api:    api,
		logger: logger,
		byID:   make(map[int]models.FoodItem),
	}
}

func (c *Catalog) Load(ctx context.Context) ([]models.FoodItem, error) {
	if foods, ok := c.cached(); ok {
		return foods, nil
	}

	// concurrent first calls share one request
	_, err, _ := c.sfg.Do("foods", func() (interface{}, error) {
		if _, ok := c.cached(); ok {
			return nil, nil
		}
		foods, err := c.api.ListFoods(ctx)
		if err != nil {
			c.logger.Error("catalog fetch failed", zap.Error(err))
			return nil, err
		}
		c.replace(foods)
		c.logger.Info("catalog loaded", zap.Int("items", len(foods)))
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	foods, _ := c.cached()
	return foods, nil
}

func (c *Catalog) cached() ([]models.FoodItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return nil, false
	}
	out := make([]models.FoodItem, len(c.foods))
	copy(out, c.foods)
	return out, true
}

func (c *Catalog) replace(foods []models.FoodItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.foods = foods
	c.byID = make(map[int]models.FoodItem, len(foods))
	for _, f := range foods {
		c.byID[f.ID] = f
	}
	c.loaded = true
}

func (c *Catalog) Food(id int) (models.FoodItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.byID[id]
	return f, ok
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// ByCategory returns the loaded items of one category, or all of them
// for "All" or "".
func (c *Catalog) ByCategory(category string) []models.FoodItem {
	foods, _ := c.cached()
	if category == "" || category == "All" {
		return foods
	}
	out := []models.FoodItem{}
	for _, f := range foods {
		if f.Category == category {
			out = append(out, f)
		}
	}
	return out
}
