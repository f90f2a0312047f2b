// Copyright 2026 The addrgrade Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import (
	"fmt"
	"math"
)

const earthRadius = 6371e3 // meters

// metersPerDegree is the approximate length of one degree of latitude.
// Longitude degrees shrink with the cosine of the latitude.
const metersPerDegree = 111000.0

// Point represents a geographical point with latitude and longitude.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns a string representation of the Point.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// HaversineDistance calculates the distance between two points on Earth in meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// BoundingBox is a rectangle in degrees as returned by geocoding providers:
// south and north latitudes, west and east longitudes.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Point {
	return Point{
		Lat: (b.South + b.North) / 2,
		Lng: (b.West + b.East) / 2,
	}
}

// WidthM returns the east-west extent in meters, measured at the mean
// latitude of the box.
func (b BoundingBox) WidthM() float64 {
	meanLat := (b.South + b.North) / 2 * math.Pi / 180

	return (b.East - b.West) * metersPerDegree * math.Cos(meanLat)
}

// HeightM returns the north-south extent in meters.
func (b BoundingBox) HeightM() float64 {
	return (b.North - b.South) * metersPerDegree
}

// AreaM2 returns the planar area of the box in square meters. The flat-earth
// approximation is fine at the scales geocoders return (buildings to
// regions); it is monotone with box size, which is all scoring needs.
func (b BoundingBox) AreaM2() float64 {
	return b.WidthM() * b.HeightM()
}
