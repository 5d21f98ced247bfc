package endpoint

import (
	"net/url"
	"strings"
	"time"
)

// Wire layouts. Values are formatted in whatever location they carry; no
// timezone conversion happens here.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

func Date(t time.Time) string     { return t.Format(DateLayout) }
func DateTime(t time.Time) string { return t.Format(DateTimeLayout) }

// ParseTimestamp reads a vendor date or date-time string.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) == len(DateLayout) {
		return time.Parse(DateLayout, s)
	}
	return time.Parse(DateTimeLayout, s)
}

// Params is an insertion-ordered set of query parameters. The zero value is
// ready to use.
type Params struct {
	keys   []string
	values map[string]string
}

func NewParams() *Params {
	return &Params{}
}

// Set stores value under name. Re-setting a name keeps its original position.
func (p *Params) Set(name, value string) *Params {
	if p.values == nil {
		p.values = make(map[string]string)
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
	return p
}

func (p *Params) Get(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[name]
	return v, ok
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

func (p *Params) Clone() *Params {
	c := &Params{}
	for _, k := range p.Keys() {
		c.Set(k, p.values[k])
	}
	return c
}

// Encode serializes the parameters in insertion order with percent-encoded
// values.
func (p *Params) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}
