package server

import (
	"strings"
)

// Endpoint identifies a route of the server.
type Endpoint int

const (
	EndpointHome Endpoint = iota
	EndpointIndex
	EndpointView
	EndpointPlainIndex
	EndpointPlain
	EndpointText
	EndpointTree
	EndpointSearch
	EndpointFeed
	EndpointStatic

	endpointCount
)

var endpointNames = [endpointCount]string{
	EndpointHome:       "home",
	EndpointIndex:      "index",
	EndpointView:       "view",
	EndpointPlainIndex: "index_plain",
	EndpointPlain:      "plain",
	EndpointText:       "text",
	EndpointTree:       "tree",
	EndpointSearch:     "search",
	EndpointFeed:       "feed",
	EndpointStatic:     "static",
}

func (e Endpoint) String() string {
	if e < 0 || e >= endpointCount {
		return "unknown"
	}
	return endpointNames[e]
}

// Endpoints returns all declared endpoints.
func Endpoints() []Endpoint {
	endpoints := make([]Endpoint, 0, endpointCount)
	for e := Endpoint(0); e < endpointCount; e++ {
		endpoints = append(endpoints, e)
	}

	return endpoints
}

// redirects answer paths of prefixed routes that lack the trailing slash.
var redirects = map[string]string{
	"/v":    "/v/",
	"/m":    "/m/",
	"/feed": "/feed/",
}

// Match returns the endpoint of urlPath and its path parameter.
// Paths of the routes below /v/, /m/, /t/ and /static/ are not empty.
func Match(urlPath string) (endpoint Endpoint, param string, ok bool) {
	switch urlPath {
	case "/":
		return EndpointHome, "", true
	case "/v/":
		return EndpointIndex, "", true
	case "/m/":
		return EndpointPlainIndex, "", true
	case "/api/tree":
		return EndpointTree, "", true
	case "/api/search":
		return EndpointSearch, "", true
	case "/feed/":
		return EndpointFeed, "", true
	}

	prefixed := []struct {
		prefix   string
		endpoint Endpoint
	}{
		{"/v/", EndpointView},
		{"/m/", EndpointPlain},
		{"/t/", EndpointText},
		{"/feed/", EndpointFeed},
		{"/static/", EndpointStatic},
	}
	for _, route := range prefixed {
		param, found := strings.CutPrefix(urlPath, route.prefix)
		if found && param != "" {
			return route.endpoint, param, true
		}
	}

	return 0, "", false
}
