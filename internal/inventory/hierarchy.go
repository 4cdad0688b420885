package inventory

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"construction-backoffice/internal/models"
)

// ErrPathTooDeep signals a navigation path deeper than Building/Floor. The
// navigator's own transitions never produce one; hitting this means a caller
// bypassed it.
var ErrPathTooDeep = errors.New("hierarchy path deeper than two levels")

// Folder is one entry in the derived folder tree.
type Folder struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Folders projects the folder tree from the flat list at the given path. The
// tree is never persisted; it is recomputed from the list on every call.
//
//	path []            → distinct blocks, "Tower {block}"
//	path [block]       → distinct floors of that block, "Floor {floor}"
func Folders(flats []models.Flat, path []string) ([]Folder, error) {
	switch len(path) {
	case 0:
		return distinctFolders(flats, func(f *models.Flat) (string, bool) {
			return f.Block, true
		}, "Tower %s"), nil
	case 1:
		block := path[0]
		return distinctFolders(flats, func(f *models.Flat) (string, bool) {
			return f.Floor, f.Block == block
		}, "Floor %s"), nil
	default:
		return nil, ErrPathTooDeep
	}
}

// FlatsAt returns the flats at (block, floor), sorted by flat number with
// numeric-aware comparison.
func FlatsAt(flats []models.Flat, block, floor string) []models.Flat {
	var out []models.Flat
	for _, f := range flats {
		if f.Block == block && f.Floor == floor {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessNumericAware(out[i].FlatNumber, out[j].FlatNumber)
	})
	return out
}

func distinctFolders(flats []models.Flat, key func(*models.Flat) (string, bool), labelFmt string) []Folder {
	counts := make(map[string]int)
	for i := range flats {
		if k, ok := key(&flats[i]); ok {
			counts[k]++
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessNumericAware(keys[i], keys[j])
	})

	folders := make([]Folder, 0, len(keys))
	for _, k := range keys {
		folders = append(folders, Folder{
			Key:   k,
			Label: fmt.Sprintf(labelFmt, k),
			Count: counts[k],
		})
	}
	return folders
}

// lessNumericAware orders integer-looking strings numerically ("2" before
// "10") and everything else lexicographically, with numbers sorting before
// free-text keys.
func lessNumericAware(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		if na != nb {
			return na < nb
		}
		return a < b
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
