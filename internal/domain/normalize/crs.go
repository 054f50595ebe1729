package normalize

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// resolveCRS maps a declared CRS name to a projection into WGS84. A nil
// projection means the coordinates are already geographic.
func resolveCRS(name string) (orb.Projection, error) {
	u := strings.ToUpper(strings.TrimSpace(name))
	if u == "" || strings.HasSuffix(u, "CRS84") || strings.HasSuffix(u, "CRS:84") {
		return nil, nil
	}

	code := u
	if i := strings.LastIndexAny(u, ":/"); i >= 0 {
		code = u[i+1:]
	}
	switch code {
	case "4326":
		return nil, nil
	case "3857", "900913", "3785", "102100", "102113":
		return project.Mercator.ToWGS84, nil
	}
	return nil, &CRSError{Name: name}
}
