package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations", MigrationSourceURL(""))
	assert.Equal(t, "file://migrations", MigrationSourceURL("migrations"))
	assert.Equal(t, "file:///srv/edu/migrations", MigrationSourceURL("/srv/edu/migrations"))
	assert.Equal(t, "file://custom", MigrationSourceURL("file://custom"))
}
