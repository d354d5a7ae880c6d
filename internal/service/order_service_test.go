package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"marketplace/internal/models"
)

func TestCalculateTotal(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	items := []OrderItemRequest{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
	}

	products := map[uuid.UUID]*models.Product{
		p1: {ID: p1, Price: 1000},
		p2: {ID: p2, Price: 500},
	}

	total := calculateTotal(items, products)

	expected := int64(2*1000 + 1*500) // 2500
	assert.Equal(t, expected, total)
}

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		total      int64
		percentage int
		expected   int64
	}{
		{1000, 0, 1000},
		{1000, 10, 900},
		{1000, 100, 0},
		{999, 50, 500},  // integer division rounds the discount down
		{1, 50, 1},      // sub-unit discounts vanish
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, applyDiscount(tc.total, tc.percentage),
			"total=%d pct=%d", tc.total, tc.percentage)
	}
}
