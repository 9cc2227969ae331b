// Package querystring builds provider query strings from ordered parameters.
package querystring

import (
	"strconv"
	"strings"
)

type pair struct {
	key   string
	value string
}

// Params is an ordered list of query parameters. Unlike url.Values it preserves
// insertion order and performs no escaping: the upstream providers accept the
// values we send verbatim, and callers must supply already-safe input.
type Params struct {
	pairs []pair
}

// New creates an empty parameter list.
func New() *Params {
	return &Params{}
}

// Add appends a string parameter and returns the list for chaining.
func (p *Params) Add(key, value string) *Params {
	p.pairs = append(p.pairs, pair{key: key, value: value})
	return p
}

// AddFloat appends a float parameter using the shortest exact representation.
func (p *Params) AddFloat(key string, value float64) *Params {
	return p.Add(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Encode serializes the parameters as key=value pairs joined by "&",
// in insertion order. The same input always yields the same string.
func (p *Params) Encode() string {
	var b strings.Builder
	for i, kv := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(kv.key)
		b.WriteByte('=')
		b.WriteString(kv.value)
	}
	return b.String()
}
