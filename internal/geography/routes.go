package geography

import (
	"net/http"
	"net/url"

	"github.com/RobertDurfee/Gerrymandering/internal/query"
	"github.com/go-chi/chi/v5"
	"golang.org/x/text/unicode/norm"
)

// SetupRoutes mounts every resource under one router. The paths are
// relative to wherever the router is mounted.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/states", h.List("states", listEntity(query.LevelState)))
	r.Get("/states/{state}", h.Get("states", getEntity(query.LevelState, "state")))

	r.Get("/states/{state}/counties", h.List("counties", listEntity(query.LevelCounty)))
	r.Get("/states/{state}/counties/{county}", h.Get("counties", getEntity(query.LevelCounty, "county")))

	for _, l := range []query.Level{query.LevelAssembly, query.LevelSenate, query.LevelCongressional, query.LevelWard} {
		resource := l.Segment()
		r.Get("/states/{state}/years/{year}/"+resource, h.List(resource, listEntity(l)))
		r.Get("/states/{state}/years/{year}/"+resource+"/{name}", h.Get(resource, getEntity(l, "name")))
	}

	r.Get("/states/{state}/races/{race}/years/{year}/votes", h.List("votes", listAggregate(query.ListVotes)))
	r.Get("/states/{state}/years/{year}/populations", h.List("populations", listAggregate(query.ListPopulations)))

	return r
}

// pathKeys reads the path keys present on r's route. The terminal key of a
// get lands in Name.
func pathKeys(r *http.Request, terminal string) query.Keys {
	keys := query.Keys{
		State: param(r, "state"),
		Race:  param(r, "race"),
		Year:  param(r, "year"),
	}
	if terminal != "" {
		keys.Name = param(r, terminal)
	}
	return keys
}

// param reads a path key. chi matches against RawPath when the request
// carries one, and only then is the key still escaped.
func param(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if u, err := url.PathUnescape(v); err == nil {
			v = u
		}
	}
	return norm.NFC.String(v)
}

func getEntity(l query.Level, terminal string) Builder {
	return func(r *http.Request) (query.Statement, error) {
		return query.GetEntity(l, pathKeys(r, terminal))
	}
}

func listEntity(l query.Level) Builder {
	return func(r *http.Request) (query.Statement, error) {
		filters, err := query.ParseFilters(r.URL.Query(), query.EntityFilters(l))
		if err != nil {
			return query.Statement{}, err
		}
		return query.ListEntity(l, pathKeys(r, ""), filters)
	}
}

func listAggregate(compile func(query.Keys, query.Level, query.Filters) (query.Statement, error)) Builder {
	return func(r *http.Request) (query.Statement, error) {
		values := r.URL.Query()
		group, err := query.GroupFromQuery(values)
		if err != nil {
			return query.Statement{}, err
		}
		filters, err := query.ParseFilters(values, query.AggregateFilters)
		if err != nil {
			return query.Statement{}, err
		}
		return compile(pathKeys(r, ""), group, filters)
	}
}
