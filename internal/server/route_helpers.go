package server

import (
	"net/http"
	"slices"
	"strings"
)

// RouteHandler is a plain handler function.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps an HTTP method to its handler.
type MethodRouter map[string]RouteHandler

// allowed lists the router's methods in a stable order for the Allow header.
func (m MethodRouter) allowed() string {
	methods := make([]string, 0, len(m))
	for method := range m {
		methods = append(methods, method)
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

// RouteByMethod dispatches on r.Method and answers 405 with an Allow header
// when no handler matches.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	if handler, ok := routes[r.Method]; ok {
		handler(w, r)
		return
	}
	w.Header().Set("Allow", routes.allowed())
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// with returns a copy of m that also routes method to h, unless h is nil.
func (m MethodRouter) with(method string, h RouteHandler) MethodRouter {
	out := make(MethodRouter, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if h != nil {
		out[method] = h
	}
	return out
}

// RouteResourceCollection serves a collection: GET lists, POST creates.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	RouteByMethod(w, r, MethodRouter{}.with(http.MethodGet, list).with(http.MethodPost, create))
}

// RouteResourceItem serves one resource: GET reads, PUT updates, DELETE removes.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, del RouteHandler) {
	routes := MethodRouter{}.
		with(http.MethodGet, get).
		with(http.MethodPut, update).
		with(http.MethodDelete, del)
	RouteByMethod(w, r, routes)
}
