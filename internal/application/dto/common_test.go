package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

func TestTrimPage(t *testing.T) {
	p := dto.PageRequest{Limit: 2, Offset: 4}
	assert.Equal(t, 3, p.FetchLimit())

	items, page := dto.TrimPage(p, []string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b"}, items)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 4, Count: 2, HasMore: true}, page)

	items, page = dto.TrimPage(p, []string{"a"})
	assert.Equal(t, []string{"a"}, items)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 4, Count: 1}, page)
}

func TestDefaultPage(t *testing.T) {
	var p dto.PageRequest
	p.DefaultPage()
	assert.Equal(t, 20, p.Limit)
	assert.Zero(t, p.Offset)
}
