package core

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type SortIndex string

const (
	SortRelevance SortIndex = "relevance"
	SortDownloads SortIndex = "downloads"
	SortFollows   SortIndex = "follows"
	SortNewest    SortIndex = "newest"
	SortUpdated   SortIndex = "updated"
)

var SortIndexes = []SortIndex{SortRelevance, SortDownloads, SortFollows, SortNewest, SortUpdated}

func ParseSortIndex(s string) (SortIndex, error) {
	for _, idx := range SortIndexes {
		if string(idx) == s {
			return idx, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

type ProjectType string

const (
	ProjectTypeMod          ProjectType = "mod"
	ProjectTypeModpack      ProjectType = "modpack"
	ProjectTypeResourcePack ProjectType = "resourcepack"
	ProjectTypeShader       ProjectType = "shader"
)

// SearchRequest holds the user facing search criteria
type SearchRequest struct {
	Query        string
	GameVersions []string
	Categories   []string
	Loaders      []string
	ProjectType  ProjectType
	Sort         SortIndex
	Limit        int
	Offset       int
}

// CompiledQuery is the registry search request derived from a SearchRequest.
// Facets is a conjunction of groups; the values inside one group are alternatives.
type CompiledQuery struct {
	Query  string
	Index  SortIndex
	Limit  int
	Offset int
	Facets [][]string
}

// CompileQuery builds the registry query. Each facet group is only present when its input is non-empty,
// in the order categories, loaders, game versions, project type.
func CompileQuery(req SearchRequest) CompiledQuery {
	q := CompiledQuery{
		Query:  strings.TrimSpace(req.Query),
		Index:  req.Sort,
		Limit:  max(req.Limit, 0),
		Offset: max(req.Offset, 0),
	}

	if group := facetGroup("categories", req.Categories); group != nil {
		q.Facets = append(q.Facets, group)
	}
	// loaders are exposed by the registry as categories
	if group := facetGroup("categories", req.Loaders); group != nil {
		q.Facets = append(q.Facets, group)
	}
	if group := facetGroup("versions", req.GameVersions); group != nil {
		q.Facets = append(q.Facets, group)
	}
	if group := facetGroup("project_type", []string{string(req.ProjectType)}); group != nil {
		q.Facets = append(q.Facets, group)
	}

	return q
}

func facetGroup(key string, values []string) []string {
	var group []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		group = append(group, key+":"+v)
	}
	return group
}

func (q CompiledQuery) HasFacets() bool {
	return len(q.Facets) > 0
}

// FacetsJSON renders the facets as the registry expects them, e.g. [["versions:1.20.1"],["project_type:mod"]]
func (q CompiledQuery) FacetsJSON() string {
	if len(q.Facets) == 0 {
		return ""
	}
	data, err := json.Marshal(q.Facets)
	if err != nil {
		// [][]string always marshals
		panic(err)
	}
	return string(data)
}

// Values renders the query parameters, leaving out every absent field
func (q CompiledQuery) Values() url.Values {
	values := url.Values{}
	if q.Query != "" {
		values.Set("query", q.Query)
	}
	if q.Index != "" {
		values.Set("index", string(q.Index))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if facets := q.FacetsJSON(); facets != "" {
		values.Set("facets", facets)
	}
	return values
}

func (q CompiledQuery) Encode() string {
	return q.Values().Encode()
}
