package service_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipedia/backend/internal/service"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

// pngDataURI returns a data URI whose payload sniffs as image/png.
func pngDataURI() string {
	payload := append(append([]byte{}, pngHeader...), make([]byte, 24)...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)
}

func newRecipeService(t *testing.T, db *gorm.DB) (*service.RecipeService, string) {
	t.Helper()
	dir := t.TempDir()
	return service.NewRecipeService(db, service.NewLocalImageStore(dir, "/media"), 6), dir
}

// storedImages lists the files the local store has written below dir.
func storedImages(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "recipes", "images", "*"))
	require.NoError(t, err)
	return files
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
