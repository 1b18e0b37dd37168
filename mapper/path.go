package mapper

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

// placeholderPattern matches {name} segments in a path template.
var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// interpolatePath substitutes {name} placeholders from params and appends
// every param that was not consumed as a query string, in params order.
func interpolatePath(template string, params Params) (string, error) {
	path := "/" + strings.TrimLeft(template, "/")

	var missing error
	consumed := make([]string, 0, 2)
	path = placeholderPattern.ReplaceAllStringFunc(path, func(match string) string {
		if missing != nil {
			return match
		}
		key := match[1 : len(match)-1]
		value, ok := params.Get(key)
		if !ok || isNil(value) {
			missing = &MissingParameterError{Key: key, Template: template}
			return match
		}
		consumed = append(consumed, key)
		return url.PathEscape(stringify(value))
	})
	if missing != nil {
		return "", missing
	}

	query := encodeQuery(params.Without(consumed...))
	if query == "" {
		return path, nil
	}
	if strings.Contains(path, "?") {
		return path + "&" + query, nil
	}
	return path + "?" + query, nil
}

// encodeQuery renders params as key=value pairs joined by &.
//
// Scalars use their fmt form and nil values are skipped. Slices and arrays
// expand to key[]=item for each item, maps and nested Params to
// key[sub]=value. Keys and values are query-escaped.
func encodeQuery(params Params) string {
	pairs := make([]string, 0, params.Len())
	params.Each(func(key string, value interface{}) {
		pairs = appendQueryPairs(pairs, key, value)
	})
	return strings.Join(pairs, "&")
}

func appendQueryPairs(pairs []string, key string, value interface{}) []string {
	if value == nil {
		return pairs
	}

	switch v := value.(type) {
	case string, []byte, fmt.Stringer:
		return append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(stringify(v)))
	case Params:
		v.Each(func(sub string, item interface{}) {
			pairs = appendQueryPairs(pairs, key+"["+sub+"]", item)
		})
		return pairs
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			pairs = appendQueryPairs(pairs, key+"[]", rv.Index(i).Interface())
		}
		return pairs
	case reflect.Map:
		subs := make([]string, 0, rv.Len())
		items := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			sub := fmt.Sprint(iter.Key().Interface())
			subs = append(subs, sub)
			items[sub] = iter.Value().Interface()
		}
		sort.Strings(subs)
		for _, sub := range subs {
			pairs = appendQueryPairs(pairs, key+"["+sub+"]", items[sub])
		}
		return pairs
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return pairs
		}
		return appendQueryPairs(pairs, key, rv.Elem().Interface())
	}

	return append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(stringify(value)))
}

// isNil reports whether value is nil or a nil pointer or interface.
func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
