package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, NewID().Validate())
	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 0}.Normalize(20, 100)
	assert.Equal(t, Pagination{Page: 1, PageSize: 20}, p)

	p = Pagination{Page: 3, PageSize: 500}.Normalize(20, 100)
	assert.Equal(t, Pagination{Page: 3, PageSize: 100}, p)
}

func TestPagination_Offset(t *testing.T) {
	assert.Equal(t, 0, Pagination{Page: 1, PageSize: 25}.Offset())
	assert.Equal(t, 50, Pagination{Page: 3, PageSize: 25}.Offset())
	assert.Equal(t, 0, Pagination{Page: -1, PageSize: 25}.Offset())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]string{"a", "b"}, 41, Pagination{Page: 2, PageSize: 20})
	assert.Equal(t, int64(41), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.Page)
}

func TestBaseEntity_Touch(t *testing.T) {
	e := BaseEntity{Version: 1}
	now := time.Now().UTC()
	e.Touch(now)
	assert.Equal(t, 2, e.Version)
	assert.Equal(t, now, e.UpdatedAt)
}
