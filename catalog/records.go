// Package catalog searches the image catalog, downloads crops and resolves
// image filenames to acquisition records.
package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"s1-forestry/rasterio"
	"s1-forestry/tableio"
)

// Polarisations are the two channels of every acquisition.
var Polarisations = []string{"vv", "vh"}

// ErrCatalogMismatch is returned when a filename does not resolve to exactly
// one catalog record.
var ErrCatalogMismatch = errors.New("catalog: filename does not match exactly one record")

// Scene is one acquisition returned by a catalog search.
type Scene struct {
	ID string
	// Filename is the crop name without polarisation suffix or extension.
	Filename  string
	Date      tableio.Date
	URL       string
	Footprint orb.Ring
}

// Record is one image file of one polarisation.
type Record struct {
	ID           string       `csv:"id"`
	Filename     string       `csv:"filename"`
	Date         tableio.Date `csv:"date"`
	Polarisation string       `csv:"polarisation"`
	Exists       bool         `csv:"exists"`
}

// PolarisationOf returns the polarisation encoded in the last two characters
// of an image filename.
func PolarisationOf(filename string) (string, error) {
	if len(filename) >= 2 {
		suffix := strings.ToLower(filename[len(filename)-2:])
		if slices.Contains(Polarisations, suffix) {
			return suffix, nil
		}
	}
	return "", fmt.Errorf("catalog: no polarisation suffix in %q", filename)
}

// SceneFilename is the crop name of an acquisition.
func SceneFilename(date tableio.Date, id string) string {
	return date.String() + "_" + id
}

// KeepIDs drops the scenes whose ID is not in ids.
func KeepIDs(scenes []Scene, ids []string) []Scene {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	var out []Scene
	for _, s := range scenes {
		if _, ok := keep[s.ID]; ok {
			out = append(out, s)
		}
	}
	logrus.Infof("Kept %d of %d scenes by id", len(out), len(scenes))
	return out
}

// Expand turns scenes into one record per polarisation, flags the records
// whose image exists in imageDir and sorts them by filename.
func Expand(scenes []Scene, imageDir string) *Catalog {
	records := make([]Record, 0, 2*len(scenes))
	for _, pol := range Polarisations {
		for _, s := range scenes {
			name := s.Filename + "_" + pol
			_, err := os.Stat(rasterio.ImagePath(imageDir, name))
			records = append(records, Record{
				ID:           s.ID,
				Filename:     name,
				Date:         s.Date,
				Polarisation: pol,
				Exists:       err == nil,
			})
		}
	}
	return New(records)
}

// EqualRange returns the half-open range [lo, hi) of positions in sorted
// that hold v. sorted must be in ascending order; this is not checked.
func EqualRange[T cmp.Ordered](sorted []T, v T) (lo, hi int) {
	lo = sort.Search(len(sorted), func(i int) bool { return sorted[i] >= v })
	hi = sort.Search(len(sorted), func(i int) bool { return sorted[i] > v })
	return lo, hi
}

// RangeIndices lists the positions of v in sorted.
func RangeIndices[T cmp.Ordered](sorted []T, v T) []int {
	lo, hi := EqualRange(sorted, v)
	out := make([]int, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, i)
	}
	return out
}

// Catalog holds records sorted by filename.
type Catalog struct {
	records   []Record
	filenames []string
}

// New stable-sorts records by filename.
func New(records []Record) *Catalog {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return cmp.Compare(a.Filename, b.Filename)
	})
	filenames := make([]string, len(sorted))
	for i, r := range sorted {
		filenames[i] = r.Filename
	}
	return &Catalog{records: sorted, filenames: filenames}
}

// Records returns the sorted records.
func (c *Catalog) Records() []Record {
	return c.records
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Lookup returns every record whose filename equals filename.
func (c *Catalog) Lookup(filename string) []Record {
	lo, hi := EqualRange(c.filenames, filename)
	return c.records[lo:hi]
}

// Resolve returns the single record of filename.
func (c *Catalog) Resolve(filename string) (Record, error) {
	matches := c.Lookup(filename)
	if len(matches) != 1 {
		return Record{}, fmt.Errorf("%w: %q has %d records", ErrCatalogMismatch, filename, len(matches))
	}
	return matches[0], nil
}

// Read loads a catalog table written by Write.
func Read(path string) (*Catalog, error) {
	var records []Record
	if err := tableio.ReadCSV(path, &records); err != nil {
		return nil, err
	}
	return New(records), nil
}

// Write stores the catalog as csv.
func (c *Catalog) Write(path string) error {
	return tableio.WriteCSV(path, c.records)
}
