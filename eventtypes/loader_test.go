package eventtypes_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/marcelsud/artemis-inbox/eventtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event-types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid event types file", func(t *testing.T) {
		path := writeFile(t, `
event_types:
  - code: 131329
    name: "area intrusion"
  - code: 1644175361
    name: "face capture"
`)

		table := eventtypes.NewTable()
		loader := eventtypes.NewLoader(table)
		err := loader.Load(path)

		require.NoError(t, err)
		assert.Equal(t, "area intrusion", table.Name(131329))
		assert.Equal(t, "face capture", table.Name(1644175361))
		// defaults not in the file are kept
		assert.Equal(t, "intelligent analysis event", table.Name(196893))
		assert.Len(t, loader.Table().List(), 4)
	})

	t.Run("error - file not found", func(t *testing.T) {
		loader := eventtypes.NewLoader(eventtypes.NewTable())
		err := loader.Load("nonexistent.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading event types file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		path := writeFile(t, `invalid yaml content: [[[`)

		loader := eventtypes.NewLoader(eventtypes.NewTable())
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing event types YAML")
	})

	t.Run("error - duplicate code leaves table untouched", func(t *testing.T) {
		path := writeFile(t, `
event_types:
  - code: 131329
    name: "first"
  - code: 131329
    name: "second"
`)

		table := eventtypes.NewTable()
		err := eventtypes.NewLoader(table).Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate event type code 131329")
		assert.Equal(t, "intelligent analysis event", table.Name(131329))
	})

	t.Run("error - empty name", func(t *testing.T) {
		path := writeFile(t, `
event_types:
  - code: 5
    name: "  "
`)

		err := eventtypes.NewLoader(eventtypes.NewTable()).Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})
}

func TestTable(t *testing.T) {
	table := eventtypes.NewTable()

	t.Run("known codes", func(t *testing.T) {
		for _, code := range []int64{131329, 131331, 196893} {
			assert.True(t, table.Exists(code))
			assert.Equal(t, "intelligent analysis event", table.Name(code))
		}
	})

	t.Run("unknown code embeds the code", func(t *testing.T) {
		assert.False(t, table.Exists(999999))
		assert.Equal(t, "unknown event type (999999)", table.Name(999999))
	})

	t.Run("list is sorted by code", func(t *testing.T) {
		list := table.List()
		require.Len(t, list, 3)
		assert.Equal(t, int64(131329), list[0].Code)
		assert.Equal(t, int64(196893), list[2].Code)
	})

	t.Run("concurrent reads and writes", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := int64(1); i <= 20; i++ {
			wg.Add(2)
			go func(code int64) {
				defer wg.Done()
				_ = table.Set(eventtypes.EventType{Code: code, Name: "custom"})
			}(i)
			go func(code int64) {
				defer wg.Done()
				_ = table.Name(code)
			}(i)
		}
		wg.Wait()
		assert.Equal(t, "custom", table.Name(20))
	})
}

func TestEventType_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, eventtypes.EventType{Code: 1, Name: "x"}.Validate())
	})

	t.Run("error - non-positive code", func(t *testing.T) {
		err := eventtypes.EventType{Code: 0, Name: "x"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "code must be positive")
	})
}
