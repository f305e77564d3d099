package models

// Meta clause comparisons. An empty Compare behaves like CompareExists.
const (
	CompareExists    = "EXISTS"
	CompareNotExists = "NOT EXISTS"
	CompareEquals    = "="
)

// Tax clause operators. An empty Operator behaves like OperatorIn.
const (
	OperatorIn    = "IN"
	OperatorNotIn = "NOT IN"
)

// FieldSlug matches terms by slug.
const FieldSlug = "slug"

// MetaClause filters items by a metadata key. Value is ignored for
// presence comparisons.
type MetaClause struct {
	Key     string `json:"key"`
	Value   string `json:"value,omitempty"`
	Compare string `json:"compare,omitempty"`
}

// TaxClause filters items by membership in classification terms.
type TaxClause struct {
	Taxonomy string   `json:"taxonomy"`
	Field    string   `json:"field"`
	Terms    []string `json:"terms"`
	Operator string   `json:"operator,omitempty"`
}

// ItemQuery specifies an item lookup. Meta and Tax clauses are conjunctive.
//
// An empty ContentTypes matches every type. An empty Statuses matches only
// published items. A Limit of zero or less returns every match.
type ItemQuery struct {
	ContentTypes []string     `json:"content_types,omitempty"`
	Statuses     []string     `json:"statuses,omitempty"`
	Meta         []MetaClause `json:"meta_query,omitempty"`
	Tax          []TaxClause  `json:"tax_query,omitempty"`
	Limit        int          `json:"limit,omitempty"`
	Offset       int          `json:"offset,omitempty"`

	// QueryVars holds request-level filters such as pts_feature_tax=featured.
	// They are resolved into Tax clauses by the query pipeline.
	QueryVars map[string]string `json:"query_vars,omitempty"`

	// NoCache bypasses any result cache sitting in front of the store.
	NoCache bool `json:"no_cache,omitempty"`
}

// ItemPage is one page of query results plus the total number of matches.
type ItemPage struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// Clone returns a deep copy so pipeline stages never alias caller slices.
func (q ItemQuery) Clone() ItemQuery {
	out := q
	out.ContentTypes = append([]string(nil), q.ContentTypes...)
	out.Statuses = append([]string(nil), q.Statuses...)
	out.Meta = append([]MetaClause(nil), q.Meta...)

	out.Tax = nil
	for _, clause := range q.Tax {
		clause.Terms = append([]string(nil), clause.Terms...)
		out.Tax = append(out.Tax, clause)
	}

	if q.QueryVars != nil {
		out.QueryVars = make(map[string]string, len(q.QueryVars))
		for k, v := range q.QueryVars {
			out.QueryVars[k] = v
		}
	}
	return out
}

// AllStatuses reports whether the query matches items in any status.
func (q ItemQuery) AllStatuses() bool {
	for _, s := range q.Statuses {
		if s == StatusAny {
			return true
		}
	}
	return false
}

// EffectiveStatuses returns the statuses a store should filter on, or nil
// when every status matches.
func (q ItemQuery) EffectiveStatuses() []string {
	if q.AllStatuses() {
		return nil
	}
	if len(q.Statuses) == 0 {
		return []string{StatusPublish}
	}
	return q.Statuses
}
