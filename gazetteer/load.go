// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package gazetteer

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/smerlo/addrgrade/spatial"
)

// Column offsets in the geonames dumps. Countries come from countryInfo.txt,
// cities from the cities1000 dump. Downloading and unpacking the dumps is
// the operator's problem; we only parse prepared files.
const (
	countryColCode = 0
	countryColName = 4
	countryColMin  = 5

	cityColName       = 1
	cityColLat        = 4
	cityColLng        = 5
	cityColCountry    = 8
	cityColPopulation = 14
	cityColMin        = 15
)

// LoadFiles reads geonames-format country and city files and builds the
// index. Loading ~150k cities takes a moment, so callers normally go through
// Lazy and share one instance.
func LoadFiles(countriesPath, citiesPath string) (*Index, error) {
	cf, err := os.Open(countriesPath) // #nosec G304 - path is provided by operator
	if err != nil {
		return nil, fmt.Errorf("opening countries file: %w", err)
	}
	defer cf.Close()

	countries, err := parseCountries(cf)
	if err != nil {
		return nil, fmt.Errorf("parsing countries: %w", err)
	}

	zf, err := os.Open(citiesPath) // #nosec G304 - path is provided by operator
	if err != nil {
		return nil, fmt.Errorf("opening cities file: %w", err)
	}
	defer zf.Close()

	cities, err := parseCities(zf)
	if err != nil {
		return nil, fmt.Errorf("parsing cities: %w", err)
	}

	idx, err := NewIndex(countries, cities)
	if err != nil {
		return nil, err
	}

	log.Printf("Gazetteer loaded: %d countries, %d cities", idx.CountryCount(), idx.CityCount())

	return idx, nil
}

func parseCountries(r io.Reader) ([]Country, error) {
	var countries []Country

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < countryColMin {
			continue
		}

		countries = append(countries, Country{
			Code: fields[countryColCode],
			Name: fields[countryColName],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return countries, nil
}

func parseCities(r io.Reader) ([]City, error) {
	var cities []City

	scanner := bufio.NewScanner(r)
	// Some alternate-name fields exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < cityColMin {
			continue
		}

		lat, err := strconv.ParseFloat(fields[cityColLat], 64)
		if err != nil {
			continue
		}

		lng, err := strconv.ParseFloat(fields[cityColLng], 64)
		if err != nil {
			continue
		}

		population, _ := strconv.ParseInt(fields[cityColPopulation], 10, 64)

		cities = append(cities, City{
			Name:       fields[cityColName],
			Country:    fields[cityColCountry],
			Population: population,
			Point:      spatial.Point{Lat: lat, Lng: lng},
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cities, nil
}
