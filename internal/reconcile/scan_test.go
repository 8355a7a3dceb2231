package reconcile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(filepath.Join(root, p), 0o755))
	}
}

func TestScanFindsProductFolders(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"Coffee_Mug_12oz_FILES",
		"Spring_Projects/Garden_Gnome_SVG_FILES",
		"Spring_Projects/notes",
		"too/deep/Buried_FILES",
	)

	folders, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, folders, 2, "folders below the search depth are not candidates")

	assert.Equal(t, "Coffee Mug 12oz", folders[0].Name)
	assert.Equal(t, filepath.Join(root, "Coffee_Mug_12oz_FILES"), folders[0].Path)
	assert.Equal(t, "Garden Gnome SVG", folders[1].Name)
}

func TestScanRootIsProductFolder(t *testing.T) {
	root := t.TempDir()
	product := filepath.Join(root, "Coffee_Mug_12oz_FILES")
	mkdirs(t, root, "Coffee_Mug_12oz_FILES")

	folders, err := Scan(product)
	require.NoError(t, err)
	require.Len(t, folders, 1)
	assert.Equal(t, product, folders[0].Path)
	assert.Equal(t, "Coffee Mug 12oz", folders[0].Name)
}

func TestScanEmptyWorkspace(t *testing.T) {
	folders, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestArtifactPath(t *testing.T) {
	f := Folder{Path: "/ws/project/Coffee_Mug_12oz_FILES", Name: "Coffee Mug 12oz"}
	assert.Equal(t, filepath.Join("/ws/project", "Coffee_Mug_12oz.zip"), f.ArtifactPath())
}

func TestProductName(t *testing.T) {
	assert.Equal(t, "Coffee Mug 12oz", ProductName("/ws/Coffee_Mug_12oz_FILES"))
	assert.Equal(t, "Plain", ProductName("Plain_FILES"))
	assert.Equal(t, "No Suffix Dir", ProductName("/x/No_Suffix_Dir"))
}
