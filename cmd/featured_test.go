package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

func TestRenderItems(t *testing.T) {
	var buf bytes.Buffer
	renderItems(&buf, models.ItemPage{
		Items: []models.Item{{
			ID:          42,
			ContentType: "post",
			Title:       "Launch notes",
			Status:      models.StatusPublish,
			CreatedAt:   time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
		}},
		Total: 1,
	})

	out := buf.String()
	for _, want := range []string{"ID", "Launch notes", "post", "2024-03-09", "TOTAL"} {
		assert.Contains(t, out, want)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"serve", "migrate", "upgrade", "featured", "settings", "content-types", "token", "version"} {
		cmd, _, err := root.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, cmd.Name())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	assert.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "data version 2.0.0")
}
