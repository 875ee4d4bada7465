package models

import (
	"strconv"
)

// QuantityMap maps a food id to a positive count.
type QuantityMap map[int]int

func (q QuantityMap) Clone() QuantityMap {
	out := make(QuantityMap, len(q))
	for id, n := range q {
		out[id] = n
	}
	return out
}

func (q QuantityMap) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// Wire converts the map to the string-keyed form used on the wire.
func (q QuantityMap) Wire() map[string]int {
	out := make(map[string]int, len(q))
	for id, n := range q {
		out[strconv.Itoa(id)] = n
	}
	return out
}

// CartSnapshot is the server-side cart record.
type CartSnapshot struct {
	ID     string         `json:"id"`
	UserID string         `json:"userId"`
	Items  map[string]int `json:"items"`
}

// Quantities coerces the snapshot keys to food ids. Keys that are not
// integers and counts that are not positive are returned in skipped.
func (s CartSnapshot) Quantities() (q QuantityMap, skipped []string) {
	q = make(QuantityMap, len(s.Items))
	for key, n := range s.Items {
		id, err := strconv.Atoi(key)
		if err != nil || n <= 0 {
			skipped = append(skipped, key)
			continue
		}
		q[id] = n
	}
	return q, skipped
}

type SaveCartRequest struct {
	Items map[string]int `json:"items" binding:"required"`
}

type RemoveCartItemRequest struct {
	FoodID int `json:"foodId" binding:"required"`
}
