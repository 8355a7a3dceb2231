package reconcile

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/dkstudio/shopsync/pkg/errors"
)

// FolderSuffix is the directory-naming convention marking a product folder.
const FolderSuffix = "_FILES"

// scanDepth bounds how far below the workspace root product folders are
// searched for: directly under the root, or one project directory down.
const scanDepth = 2

// Folder is one candidate product folder found in a workspace.
type Folder struct {
	// Path is the product folder itself (the *_FILES directory).
	Path string

	// Name is the derived human-readable product name: the folder base
	// name without its suffix, underscores replaced with spaces.
	Name string
}

// ArtifactPath is where the packaged zip for this product is expected:
// beside the product folder, named after it without the suffix.
func (f Folder) ArtifactPath() string {
	base := strings.TrimSuffix(filepath.Base(f.Path), FolderSuffix)
	return filepath.Join(filepath.Dir(f.Path), base+".zip")
}

// ProductName derives the display name for a product folder path.
func ProductName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), FolderSuffix)
	return strings.ReplaceAll(base, "_", " ")
}

// Scan locates product folders under root: any directory named with the
// suffix marker, at most scanDepth levels down. When the root itself is a
// product folder it is the only result. Results are sorted by path so runs
// are deterministic.
func Scan(root string) ([]Folder, error) {
	if strings.HasSuffix(filepath.Base(root), FolderSuffix) {
		return []Folder{{Path: root, Name: ProductName(root)}}, nil
	}

	var folders []Folder
	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() || path == root {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			depth := len(strings.Split(rel, string(filepath.Separator)))
			if strings.HasSuffix(de.Name(), FolderSuffix) {
				folders = append(folders, Folder{Path: path, Name: ProductName(path)})
				return filepath.SkipDir
			}
			if depth >= scanDepth {
				return filepath.SkipDir
			}
			return nil
		},
	})
	if err != nil {
		return nil, errors.WrapIO("scan", root, err)
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	return folders, nil
}
