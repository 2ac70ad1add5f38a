package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type row struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Skipped string `db:"-"`
	Plain   string
	hidden  string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, StructTagValues(row{}))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(&row{}))
}

func TestStructToMap(t *testing.T) {
	r := &row{ID: "a", Name: "b", hidden: "c"}

	assert.Equal(t, map[string]any{"id": "a", "name": "b"}, StructToMap(r))
	assert.Equal(t, map[string]any{"name": "b"}, StructToMap(r, "id"))
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
}

func TestNanoID(t *testing.T) {
	assert.Len(t, NanoID(), NanoidSize)
	assert.Len(t, NanoIDSize(12), 12)
	assert.Len(t, NanoIDSize(-1), NanoidSize)
	assert.Regexp(t, `^[0-9a-zA-Z]+$`, NanoID())
	assert.NotEqual(t, NanoID(), NanoID())
}
