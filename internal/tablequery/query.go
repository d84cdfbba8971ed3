package tablequery

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidParam = errors.New("invalid query parameter")

// ParseQuery decodes list parameters from a URL query:
//
//	?page=2&page_size=20&sort=created_at&order=desc
//	&search=go&search_columns=role,position
//	&filter[job_status]=new&filter[exp_min]=gte:3
//
// A filter value prefixed with a known operator and a colon uses that
// operator; anything else is an equality match on the whole value.
func ParseQuery(values url.Values) (Params, error) {
	var p Params

	var err error
	if p.Page, err = intParam(values, "page"); err != nil {
		return p, err
	}
	if p.Page > MaxPage {
		return p, fmt.Errorf("%w: page %d is past the last allowed page", ErrInvalidParam, p.Page)
	}
	if p.PageSize, err = intParam(values, "page_size"); err != nil {
		return p, err
	}

	p.SortColumn = values.Get("sort")
	switch order := strings.ToLower(values.Get("order")); order {
	case "", SortAsc, SortDesc:
		p.SortDirection = order
	default:
		return p, fmt.Errorf("%w: order %q", ErrInvalidParam, order)
	}

	p.SearchTerm = values.Get("search")
	if cols := values.Get("search_columns"); cols != "" {
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.SearchColumns = append(p.SearchColumns, c)
			}
		}
	}

	for key, vals := range values {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") || len(vals) == 0 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, "filter["), "]")
		if name == "" {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]Filter)
		}
		p.Filters[name] = ParseFilter(vals[0])
	}

	return p, nil
}

// ParseFilter splits "op:value" into a Filter.
func ParseFilter(raw string) Filter {
	if op, value, ok := strings.Cut(raw, ":"); ok {
		switch Operator(op) {
		case OpEq, OpGt, OpGte, OpLt, OpLte, OpNe, OpILike:
			return Filter{Operator: Operator(op), Value: value}
		}
	}
	return Filter{Operator: OpEq, Value: raw}
}

func intParam(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, raw)
	}
	return n, nil
}
