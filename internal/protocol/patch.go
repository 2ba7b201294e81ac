package protocol

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
)

// ApplyView patches m toward the desired state in patch, an object in the
// ToJSON shape, and returns the number of elementary changes.
//
//   - deleteMissing removes every field number absent from patch, and
//     makes a null value remove all occurrences of its number.
//   - An array pairs its elements with the existing occurrences in order.
//     It never adds occurrences; with deleteMissing, occurrences past the
//     end of the array are removed.
//   - Any other value applies to occurrence 0 only.
//   - An object forces the nested-message view and recurses.
//   - Values of the wrong shape for a field's wire type are ignored.
func (m *Message) ApplyView(patch *jsonvalue.Object, deleteMissing bool) int {
	if m == nil || patch == nil {
		return 0
	}
	changes := 0

	if deleteMissing {
		wanted := make(map[protowire.Number]struct{}, patch.Len())
		for _, key := range patch.Keys() {
			if num, ok := parseFieldNumber(key); ok {
				wanted[num] = struct{}{}
			}
		}
		for _, num := range m.numbers() {
			if _, ok := wanted[num]; !ok {
				changes += m.RemoveAll(num)
			}
		}
	}

	patch.Each(func(key string, v jsonvalue.Value) {
		num, ok := parseFieldNumber(key)
		if !ok {
			logging.Debugf("protocol.Message.ApplyView skip key=%q", key)
			return
		}
		switch t := v.(type) {
		case jsonvalue.Null:
			if deleteMissing {
				changes += m.RemoveAll(num)
			}
		case jsonvalue.Array:
			changes += m.applyArray(num, t, deleteMissing)
		default:
			if f, ok := m.Find(num, 0); ok {
				changes += f.apply(v, deleteMissing)
			}
		}
	})
	return changes
}

func (m *Message) applyArray(num protowire.Number, arr jsonvalue.Array, deleteMissing bool) int {
	idxs := m.indices(num)
	changes := 0
	for i := 0; i < min(len(arr), len(idxs)); i++ {
		if arr[i].Kind() == jsonvalue.KindNull {
			continue
		}
		changes += m.fields[idxs[i]].apply(arr[i], deleteMissing)
	}
	if deleteMissing && len(idxs) > len(arr) {
		for i := len(idxs) - 1; i >= len(arr); i-- {
			m.removeAt(idxs[i])
			changes++
		}
	}
	return changes
}

func (f *Field) apply(v jsonvalue.Value, deleteMissing bool) int {
	switch f.Type {
	case Varint, Fixed64:
		n, ok := integerFromJSON(v, 64)
		if !ok {
			return 0
		}
		f.value = n
		return 1
	case Fixed32:
		n, ok := integerFromJSON(v, 32)
		if !ok {
			return 0
		}
		f.value = int64(int32(n))
		return 1
	case Bytes:
		if f.lv == nil {
			f.lv = newLenValue(nil)
		}
		switch t := v.(type) {
		case *jsonvalue.Object:
			sub, ok := f.lv.subMessage()
			if !ok {
				sub = NewMessage()
			}
			c := sub.ApplyView(t, deleteMissing)
			f.lv.setMessage(sub)
			return max(1, c)
		case jsonvalue.Text:
			f.lv.setString(string(t))
			return 1
		}
	}
	return 0
}

// integerFromJSON accepts a number, truncated to bitSize, or a string
// holding a base-10 integer that fits in bitSize.
func integerFromJSON(v jsonvalue.Value, bitSize int) (int64, bool) {
	switch t := v.(type) {
	case jsonvalue.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		if bitSize == 32 {
			n = int64(int32(n))
		}
		return n, true
	case jsonvalue.Text:
		n, err := strconv.ParseInt(string(t), 10, bitSize)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
