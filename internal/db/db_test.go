package db

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/models"
)

func tableIndex(t *testing.T, model interface{}) int {
	t.Helper()
	want := reflect.TypeOf(model)
	for i, m := range Tables {
		if reflect.TypeOf(m) == want {
			return i
		}
	}
	t.Fatalf("%T is not migrated", model)
	return -1
}

func TestTablesMigrateParentsFirst(t *testing.T) {
	assert.Less(t, tableIndex(t, &models.Permission{}), tableIndex(t, &models.Role{}))
	assert.Less(t, tableIndex(t, &models.Facility{}), tableIndex(t, &models.User{}))
	assert.Less(t, tableIndex(t, &models.User{}), tableIndex(t, &models.AuthSession{}))
	assert.Less(t, tableIndex(t, &models.Quiz{}), tableIndex(t, &models.QuizQuestion{}))
	tableIndex(t, &models.Book{})
}

func TestPingWithoutConnection(t *testing.T) {
	prev := DB
	DB = nil
	t.Cleanup(func() { DB = prev })

	err := Ping(context.Background())
	require.Error(t, err)
	assert.NoError(t, Close())
}
