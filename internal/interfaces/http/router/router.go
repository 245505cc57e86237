package router

import (
	"github.com/gin-gonic/gin"
)

// DefaultVersion is the path segment of the current API
const DefaultVersion = "v1"

// Area is one part of the API mounted under its own prefix, e.g. /admin.
// Guards run before every route of the area.
type Area struct {
	Name   string
	Prefix string
	Guards []gin.HandlerFunc
	Routes func(rg *gin.RouterGroup)
}

// API collects areas and mounts them below /api/<version>
type API struct {
	version string
	common  []gin.HandlerFunc
	areas   []Area
}

// Option configures an API
type Option func(*API)

// WithVersion replaces DefaultVersion
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithCommon adds middleware applied to every area
func WithCommon(mw ...gin.HandlerFunc) Option {
	return func(a *API) { a.common = append(a.common, chain(mw...)...) }
}

// NewAPI returns an empty API
func NewAPI(opts ...Option) *API {
	a := &API{version: DefaultVersion}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prefix is the path all areas share
func (a *API) Prefix() string { return "/api/" + a.version }

// Add queues areas for Mount
func (a *API) Add(areas ...Area) *API {
	a.areas = append(a.areas, areas...)
	return a
}

// Mount registers every area on engine
func (a *API) Mount(engine *gin.Engine) {
	root := engine.Group(a.Prefix(), a.common...)
	for _, area := range a.areas {
		rg := root.Group(area.Prefix, chain(area.Guards...)...)
		if area.Routes != nil {
			area.Routes(rg)
		}
	}
}

// chain drops nil handlers so disabled guards can be listed unconditionally
func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
