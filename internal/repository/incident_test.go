package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain term", "collision", "collision"},
		{"percent", "100%", `100\%`},
		{"underscore", "in_progress", `in\_progress`},
		{"backslash", `C:\road`, `C:\\road`},
		{"all together", `50%_\`, `50\%\_\\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestBuildIncidentWhere_NoSearch(t *testing.T) {
	where, args := buildIncidentWhere("")
	assert.Equal(t, "WHERE 1=1", where)
	assert.Empty(t, args)

	// Пробельный терм эквивалентен пустому
	where, args = buildIncidentWhere("   ")
	assert.Equal(t, "WHERE 1=1", where)
	assert.Empty(t, args)
}

func TestBuildIncidentWhere_Search(t *testing.T) {
	where, args := buildIncidentWhere("collision")

	// Дизъюнкция по четырем полям с одним позиционным аргументом
	assert.Contains(t, where, "title ILIKE $1")
	assert.Contains(t, where, "description ILIKE $1")
	assert.Contains(t, where, "location_address ILIKE $1")
	assert.Contains(t, where, "type ILIKE $1")
	assert.Equal(t, []any{"%collision%"}, args)
}

func TestBuildIncidentWhere_EscapesMetacharacters(t *testing.T) {
	_, args := buildIncidentWhere("50%_off")
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}
