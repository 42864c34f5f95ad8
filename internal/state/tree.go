package state

import (
	"sync"

	"github.com/MaikFakir/wIsper-notes-local/pkg/models"
)

// Tree is the in-memory folder hierarchy, rebuilt wholesale from server
// snapshots. The root is the sentinel path "." for the top-level
// collection; the client never patches descendants locally.
type Tree struct {
	mu   sync.RWMutex
	root *models.Folder
}

// NewTree creates a tree holding only the root sentinel.
func NewTree() *Tree {
	return &Tree{
		root: &models.Folder{Path: models.RootPath, Name: models.RootPath},
	}
}

// Replace swaps in a fresh snapshot of top-level folders.
func (t *Tree) Replace(folders []*models.Folder) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root = &models.Folder{
		Path:     models.RootPath,
		Name:     models.RootPath,
		Children: folders,
	}
}

// Root returns the current root node.
func (t *Tree) Root() *models.Folder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Find resolves a folder path in the tree (recursive).
func (t *Tree) Find(path string) *models.Folder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return findFolder(t.root, path)
}

func findFolder(node *models.Folder, path string) *models.Folder {
	if node == nil {
		return nil
	}
	if node.Path == path {
		return node
	}
	for _, child := range node.Children {
		if found := findFolder(child, path); found != nil {
			return found
		}
	}
	return nil
}

// Flatten returns all folders in a flat map keyed by path, including
// the root sentinel.
func (t *Tree) Flatten() map[string]*models.Folder {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make(map[string]*models.Folder)
	flattenFolder(t.root, result)
	return result
}

func flattenFolder(node *models.Folder, result map[string]*models.Folder) {
	if node == nil {
		return
	}
	result[node.Path] = node
	for _, child := range node.Children {
		flattenFolder(child, result)
	}
}

// Count returns the number of folders in the tree, root included.
func (t *Tree) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return countFolders(t.root)
}

func countFolders(node *models.Folder) int {
	if node == nil {
		return 0
	}
	count := 1
	for _, child := range node.Children {
		count += countFolders(child)
	}
	return count
}
