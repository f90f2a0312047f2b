// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

// Package gazetteer holds a read-only index of countries and cities used to
// anchor free-text addresses to real places. The index is built once and
// never mutated afterwards, so it is safe for concurrent readers.
package gazetteer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/uber/h3-go/v4"

	"github.com/smerlo/addrgrade/spatial"
)

// cellResolution is the H3 resolution used to bucket cities for
// nearest-city lookups. Resolution 5 cells are ~250 km² which keeps buckets
// small while a one-ring disk still covers neighboring cities.
const cellResolution = 5

// Country is a canonical country record.
type Country struct {
	Name string // canonical name, folded lowercase
	Code string // ISO-3166 alpha-2, uppercase
}

// City is a populated place tied to a country.
type City struct {
	Name       string // folded lowercase
	Country    string // ISO-3166 alpha-2, uppercase
	Population int64
	Point      spatial.Point
}

// Index is the in-memory gazetteer. Build it with NewIndex or LoadFiles and
// share the same instance across all consumers.
type Index struct {
	countries map[string]Country          // folded name -> country
	countryOf map[string]string           // code -> folded name
	cities    map[string]map[string]*City // folded country name -> folded city name -> city
	cityNames map[string][]string         // folded country name -> city names, dataset order
	cells     map[h3.Cell][]*City
}

// NewIndex builds an Index from in-memory records. Tests use this to stand
// up small fake gazetteers.
func NewIndex(countries []Country, cities []City) (*Index, error) {
	idx := &Index{
		countries: make(map[string]Country, len(countries)),
		countryOf: make(map[string]string, len(countries)),
		cities:    make(map[string]map[string]*City),
		cityNames: make(map[string][]string),
		cells:     make(map[h3.Cell][]*City),
	}

	for _, c := range countries {
		name := Fold(c.Name)
		c.Name = name
		c.Code = strings.ToUpper(c.Code)
		idx.countries[name] = c
		idx.countryOf[c.Code] = name
	}

	for i := range cities {
		city := cities[i]
		city.Name = Fold(city.Name)
		city.Country = strings.ToUpper(city.Country)

		countryName, ok := idx.countryOf[city.Country]
		if !ok {
			// Cities for unknown countries are silently skipped; the city
			// dataset trails the country dataset on territory changes.
			continue
		}

		byName, ok := idx.cities[countryName]
		if !ok {
			byName = make(map[string]*City)
			idx.cities[countryName] = byName
		}

		if _, dup := byName[city.Name]; dup {
			continue
		}

		byName[city.Name] = &city
		idx.cityNames[countryName] = append(idx.cityNames[countryName], city.Name)

		cell, err := h3.LatLngToCell(h3.NewLatLng(city.Point.Lat, city.Point.Lng), cellResolution)
		if err != nil {
			return nil, fmt.Errorf("indexing city %q: %w", city.Name, err)
		}

		idx.cells[cell] = append(idx.cells[cell], &city)
	}

	return idx, nil
}

// HasCountry reports whether a folded name is a canonical country.
func (idx *Index) HasCountry(name string) bool {
	_, ok := idx.countries[name]

	return ok
}

// NormalizeCountry resolves a raw candidate to a canonical country name:
// fold, alias, then canonical lookup. Returns "" when the candidate is not
// a known country.
func (idx *Index) NormalizeCountry(candidate string) string {
	name := Alias(Fold(candidate))
	if idx.HasCountry(name) {
		return name
	}

	return ""
}

// HasCity reports whether the folded city name exists for the given
// canonical country name.
func (idx *Index) HasCity(country, city string) bool {
	_, ok := idx.cities[country][city]

	return ok
}

// City returns the record for an exact folded city name within a country.
func (idx *Index) City(country, city string) (*City, bool) {
	c, ok := idx.cities[country][city]

	return c, ok
}

// FindCityFuzzy scans the cities of a country for a two-word candidate:
// a city matches when the first word is a prefix of its name, or the second
// word is a substring of it. Returns the gazetteer city name of the first
// match in dataset order.
func (idx *Index) FindCityFuzzy(country, first, second string) (string, bool) {
	for _, name := range idx.cityNames[country] {
		if strings.HasPrefix(name, first) || strings.Contains(name, second) {
			return name, true
		}
	}

	return "", false
}

// CountryCount returns the number of indexed countries.
func (idx *Index) CountryCount() int {
	return len(idx.countries)
}

// CityCount returns the number of indexed cities.
func (idx *Index) CityCount() int {
	n := 0
	for _, byName := range idx.cities {
		n += len(byName)
	}

	return n
}

// Nearest returns the indexed city closest to p, searching the H3 cell of p
// and its immediate neighbors. ok is false when no city falls in that disk.
func (idx *Index) Nearest(p spatial.Point) (*City, bool) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), cellResolution)
	if err != nil {
		return nil, false
	}

	disk, err := h3.GridDisk(cell, 1)
	if err != nil {
		disk = []h3.Cell{cell}
	}

	var best *City

	bestDistance := 0.0

	for _, c := range disk {
		for _, city := range idx.cells[c] {
			d := p.HaversineDistance(&city.Point)
			if best == nil || d < bestDistance {
				best = city
				bestDistance = d
			}
		}
	}

	return best, best != nil
}

// Lazy wraps a one-time index load. Concurrent callers share the same load;
// the error, if any, is sticky.
type Lazy struct {
	countriesPath string
	citiesPath    string

	once sync.Once
	idx  *Index
	err  error
}

// NewLazy prepares a lazy loader over geonames-format files. Nothing is read
// until Index is called.
func NewLazy(countriesPath, citiesPath string) *Lazy {
	return &Lazy{countriesPath: countriesPath, citiesPath: citiesPath}
}

// Index loads the gazetteer on first use and returns the shared instance.
func (l *Lazy) Index() (*Index, error) {
	l.once.Do(func() {
		l.idx, l.err = LoadFiles(l.countriesPath, l.citiesPath)
	})

	return l.idx, l.err
}
