package cache

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Key builds deterministic cache keys. Parameter order does not matter and
// multi-value parameters are sorted and deduplicated, so logically equal
// requests map to the same key.
type Key struct {
	namespace string
	params    map[string]string
}

func NewKey(namespace string) *Key {
	return &Key{namespace: namespace, params: make(map[string]string)}
}

func (k *Key) Str(name, v string) *Key {
	k.params[name] = v
	return k
}

func (k *Key) Int(name string, v int64) *Key {
	k.params[name] = strconv.FormatInt(v, 10)
	return k
}

// Float records v in its shortest form. Negative zero is recorded as 0.
func (k *Key) Float(name string, v float64) *Key {
	if v == 0 {
		v = 0
	}
	k.params[name] = strconv.FormatFloat(v, 'f', -1, 64)
	return k
}

// Date records t at day granularity in UTC. A zero time is recorded as empty.
func (k *Key) Date(name string, t time.Time) *Key {
	if t.IsZero() {
		k.params[name] = ""
		return k
	}
	k.params[name] = t.UTC().Format(time.DateOnly)
	return k
}

func (k *Key) Ints(name string, vs []int64) *Key {
	sorted := append([]int64(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, 0, len(sorted))
	for i, v := range sorted {
		if i > 0 && v == sorted[i-1] {
			continue
		}
		parts = append(parts, strconv.FormatInt(v, 10))
	}
	k.params[name] = strings.Join(parts, ",")
	return k
}

func (k *Key) String() string {
	names := make([]string, 0, len(k.params))
	for name := range k.params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(k.namespace)
	for _, name := range names {
		b.WriteByte('|')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(k.params[name])
	}
	return b.String()
}
