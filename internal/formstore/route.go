package formstore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	Scheme    = "content"
	Authority = "formstore"

	CollectionPath = "/forms"
	LatestPath     = "/newest_forms_by_formid"
)

type RouteKind int

const (
	Collection RouteKind = iota + 1
	ByID
	LatestPerFormID
)

func (k RouteKind) String() string {
	switch k {
	case Collection:
		return "collection"
	case ByID:
		return "by_id"
	case LatestPerFormID:
		return "latest"
	default:
		return "unknown"
	}
}

// Route is a classified address. ID is only meaningful for ByID.
type Route struct {
	Kind RouteKind
	ID   int64
}

func CollectionRoute() Route       { return Route{Kind: Collection} }
func FormRoute(id int64) Route     { return Route{Kind: ByID, ID: id} }
func LatestRoute() Route           { return Route{Kind: LatestPerFormID} }
func (r Route) String() string     { return r.URI() }
func (r Route) ContentURI() string { return Scheme + "://" + Authority + r.URI() }

// URI renders the canonical path of the route.
func (r Route) URI() string {
	switch r.Kind {
	case Collection:
		return CollectionPath
	case ByID:
		return CollectionPath + "/" + strconv.FormatInt(r.ID, 10)
	case LatestPerFormID:
		return LatestPath
	default:
		return ""
	}
}

// Resolve classifies a content URI (content://formstore/forms/3) or a bare
// path (/forms/3).
func Resolve(uri string) (Route, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Route{}, fmt.Errorf("%w: %q", ErrUnrecognizedAddress, uri)
	}
	if u.Scheme != "" || u.Host != "" {
		if u.Scheme != Scheme || u.Host != Authority {
			return Route{}, fmt.Errorf("%w: %q", ErrUnrecognizedAddress, uri)
		}
	}

	p := u.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	switch {
	case p == CollectionPath:
		return CollectionRoute(), nil
	case p == LatestPath:
		return LatestRoute(), nil
	case strings.HasPrefix(p, CollectionPath+"/"):
		seg := strings.TrimPrefix(p, CollectionPath+"/")
		if !isDigits(seg) {
			break
		}
		id, err := strconv.ParseInt(seg, 10, 64)
		if err != nil {
			break
		}
		return FormRoute(id), nil
	}
	return Route{}, fmt.Errorf("%w: %q", ErrUnrecognizedAddress, uri)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
