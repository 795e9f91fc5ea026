package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/weddinggallery/internal/handler"
)

// Function names, also used as route prefixes by the combined server.
const (
	FunctionPhotos        = "photos"
	FunctionVideos        = "videos"
	FunctionAuth          = "auth"
	FunctionMigratePhotos = "migrate-photos"
)

var standardMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Route binds one HTTP method to a handler.
type Route struct {
	Method  string
	Handler gin.HandlerFunc
}

// Function is one independently deployable route group.
type Function struct {
	Name   string
	CORS   handler.CORSPolicy
	Routes []Route
}

// Policies returns the CORS policy of every function by name.
// It needs no API, so preflight responses can be built without a datastore.
func Policies() map[string]handler.CORSPolicy {
	return map[string]handler.CORSPolicy{
		FunctionPhotos: {
			Methods:      []string{"GET", "POST", "DELETE", "PUT", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
		},
		FunctionVideos: {
			Methods:      []string{"GET", "PUT", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
		},
		FunctionAuth: {
			Methods:      []string{"POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type"},
		},
		FunctionMigratePhotos: {
			Methods:      []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Content-Type", handler.APIKeyHeader},
		},
	}
}

// Functions lists every function served by api.
func Functions(api *handler.API) []Function {
	policies := Policies()
	return []Function{
		{
			Name: FunctionPhotos,
			CORS: policies[FunctionPhotos],
			Routes: []Route{
				{Method: http.MethodGet, Handler: api.GetPhotos},
				{Method: http.MethodPost, Handler: api.CreatePhoto},
				{Method: http.MethodPut, Handler: api.ReorderPhotos},
				{Method: http.MethodDelete, Handler: api.DeletePhoto},
			},
		},
		{
			Name: FunctionVideos,
			CORS: policies[FunctionVideos],
			Routes: []Route{
				{Method: http.MethodGet, Handler: api.ListVideos},
				{Method: http.MethodPut, Handler: api.UpdateVideo},
			},
		},
		{
			Name: FunctionAuth,
			CORS: policies[FunctionAuth],
			Routes: []Route{
				{Method: http.MethodPost, Handler: api.CheckPassword},
			},
		},
		{
			Name: FunctionMigratePhotos,
			CORS: policies[FunctionMigratePhotos],
			Routes: []Route{
				{Method: http.MethodGet, Handler: api.ListPendingMigrations},
				{Method: http.MethodPost, Handler: api.MigratePhoto},
			},
		},
	}
}

// Lookup finds a function by name.
func Lookup(api *handler.API, name string) (Function, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, fn := range Functions(api) {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// Mount registers fn on r at relativePath. Standard methods fn does not serve answer 405;
// the engines built here also answer 405 for any other method.
func Mount(r gin.IRouter, relativePath string, fn Function) {
	group := r.Group(relativePath, fn.CORS.Middleware())

	served := make(map[string]bool, len(fn.Routes))
	for _, route := range fn.Routes {
		group.Handle(route.Method, "", route.Handler)
		served[route.Method] = true
	}
	for _, method := range standardMethods {
		if !served[method] {
			group.Handle(method, "", handler.MethodNotAllowed)
		}
	}
}

// NewFunctionEngine builds a gin engine serving only fn at "/".
func NewFunctionEngine(fn Function, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log))
	Mount(r, "/", fn)

	r.HandleMethodNotAllowed = true
	reject := []gin.HandlerFunc{corsHeaders(fn.CORS), handler.MethodNotAllowed}
	r.NoMethod(reject...)
	r.NoRoute(reject...)
	return r
}

// SetupRouter 配置 Gin 引擎和路由，所有函数挂载在 /<name> 下。
func SetupRouter(api *handler.API, log zerolog.Logger, metrics *Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	for _, fn := range Functions(api) {
		group := r.Group("/")
		if metrics != nil {
			group.Use(metrics.Middleware(fn.Name))
		}
		Mount(group, "/"+fn.Name, fn)
	}
	rejectOtherMethods(r, Policies())

	return r
}

// rejectOtherMethods answers 405 with the function's CORS headers for methods outside standardMethods.
func rejectOtherMethods(r *gin.Engine, policies map[string]handler.CORSPolicy) {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		name, _, _ := strings.Cut(strings.TrimPrefix(c.Request.URL.Path, "/"), "/")
		if policy, ok := policies[name]; ok {
			corsHeaders(policy)(c)
		}
		handler.MethodNotAllowed(c)
	})
}

// corsHeaders writes the policy headers without the preflight short-circuit.
func corsHeaders(policy handler.CORSPolicy) gin.HandlerFunc {
	headers := policy.Headers()
	return func(c *gin.Context) {
		for key, value := range headers {
			c.Header(key, value)
		}
	}
}
