// Package jsonvalue is a closed JSON value model with order-preserving
// objects.
//
// Every value is one of Null, Bool, Number, Text, *Object or Array. Objects
// keep keys in insertion order so a decoded document re-marshals with its
// original key order.
package jsonvalue

import (
	"math"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is implemented only by the types in this package.
type Value interface {
	Kind() Kind
	isValue()
}

type Null struct{}

type Bool bool

// Number holds the literal text of a JSON number.
type Number string

type Text string

type Array []Value

// Object is an ordered string-keyed map.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (Text) Kind() Kind    { return KindText }
func (*Object) Kind() Kind { return KindObject }
func (Array) Kind() Kind   { return KindArray }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (Text) isValue()    {}
func (*Object) isValue() {}
func (Array) isValue()   {}

// Int returns the number literal for v.
func Int(v int64) Number {
	return Number(strconv.FormatInt(v, 10))
}

// Int64 converts n to an integer. Fractional and exponent forms are
// truncated toward zero; values outside the int64 range saturate.
func (n Number) Int64() (int64, error) {
	if v, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	switch {
	case math.IsNaN(f):
		return 0, nil
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(f), nil
}

func NewObject() *Object {
	return &Object{m: orderedmap.NewOrderedMap[string, Value]()}
}

// Set inserts or replaces key. A replaced key keeps its original position.
func (o *Object) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	o.m.Set(key, v)
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	return o.m.Get(key)
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

func (o *Object) Delete(key string) {
	o.m.Delete(key)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(k string, _ Value) {
		keys = append(keys, k)
	})
	return keys
}

// Each calls fn for every entry in insertion order.
func (o *Object) Each(fn func(key string, v Value)) {
	if o == nil {
		return
	}
	for el := o.m.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// Equal reports deep equality, including object key order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Number:
		return av == b.(Number)
	case Text:
		return av == b.(Text)
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		ak, bk := av.Keys(), bv.Keys()
		for i := range ak {
			if ak[i] != bk[i] {
				return false
			}
			x, _ := av.Get(ak[i])
			y, _ := bv.Get(bk[i])
			if !Equal(x, y) {
				return false
			}
		}
		return true
	}
	return false
}
