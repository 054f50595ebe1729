// Package ingest decodes raw uploaded bytes into feature collections and
// record tables. It performs no validation beyond well-formedness.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

const featureCollectionType = "FeatureCollection"

// FeatureCollection is a decoded GeoJSON collection plus its declared CRS.
type FeatureCollection struct {
	Features []*geojson.Feature
	// CRS is the legacy "crs" member name, e.g. "urn:ogc:def:crs:EPSG::3857".
	// Empty when the collection declares none.
	CRS string
}

type crsMember struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// DecodeFeatureCollection parses a GeoJSON FeatureCollection.
func DecodeFeatureCollection(data []byte) (*FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: feature collection: %v", ErrDecode, err)
	}
	if fc.Type != featureCollectionType {
		return nil, fmt.Errorf("%w: expected %s, got %q", ErrDecode, featureCollectionType, fc.Type)
	}

	var m crsMember
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: crs member: %v", ErrDecode, err)
	}

	out := &FeatureCollection{Features: fc.Features}
	if m.CRS != nil {
		out.CRS = m.CRS.Properties.Name
	}
	return out, nil
}
