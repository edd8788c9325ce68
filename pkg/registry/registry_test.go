// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_ShippedCatalog(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 9)

	ql := reg.Find("qualify-lead")
	require.NotNil(t, ql)
	assert.Equal(t, "qualify-lead", ql.TaskType)
	assert.Equal(t, "lead", ql.Category)
	assert.Contains(t, ql.ErrorCodes, "VALIDATION_FAILED")
}

func TestFind_MissingActivity(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{{ID: "qualify-lead"}}}
	assert.Nil(t, reg.Find("no-such-task"))
}

func TestValidate_DuplicateID(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "qualify-lead", DisplayName: "Qualify Lead", TaskType: "qualify-lead", Category: "lead"},
		{ID: "qualify-lead", DisplayName: "Qualify Lead", TaskType: "qualify-lead", Category: "lead"},
	}}
	assert.Error(t, reg.Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "review-application", DisplayName: "Review Application", TaskType: "review-application"},
	}}
	assert.Error(t, reg.Validate())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	orig := &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-28T09:00:00Z",
		Activities: []Activity{
			{ID: "count-available-slots", DisplayName: "Count Available Slots",
				TaskType: "count-available-slots", Category: "application"},
		},
	}
	require.NoError(t, SaveRegistry(orig, path))

	reloaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, orig.Version, reloaded.Version)
	require.NotNil(t, reloaded.Find("count-available-slots"))
}
