package dbusx

import (
	"github.com/godbus/dbus/v5"
	"github.com/jy1655/BzPeri/bzpath"
	"github.com/jy1655/BzPeri/gatt"
)

// toRaw converts a gatt.Value to the native Go value godbus expects on
// the wire, recursing through arrays/dicts/variants. Object paths
// convert to dbus.ObjectPath so godbus marshals them with signature
// "o" rather than "s".
func toRaw(v gatt.Value) interface{} {
	if p, ok := v.AsObjectPath(); ok {
		return dbus.ObjectPath(p)
	}
	if inner, ok := v.AsVariant(); ok {
		return dbus.MakeVariant(toRaw(inner))
	}
	if arr, ok := v.AsArray(); ok {
		out := make([]interface{}, len(arr))
		for i, e := range arr {
			out[i] = toRaw(e)
		}
		return out
	}
	if d, ok := v.AsDict(); ok {
		out := make(map[string]interface{}, len(d))
		for k, e := range d {
			out[k] = toRaw(e)
		}
		return out
	}
	return v.Raw()
}

// fromRaw converts a Go value already unmarshalled by godbus (from an
// inbound method call argument) into a gatt.Value. It is intentionally
// narrow: it only covers the shapes BzPeri's exported method
// signatures (see export.go) actually produce.
func fromRaw(raw interface{}) gatt.Value {
	switch x := raw.(type) {
	case bool:
		return gatt.Bool(x)
	case byte:
		return gatt.Byte(x)
	case uint16:
		return gatt.Uint16(x)
	case uint32:
		return gatt.Uint32(x)
	case int16:
		return gatt.Int16(x)
	case int32:
		return gatt.Int32(x)
	case uint64:
		return gatt.Uint64(x)
	case int64:
		return gatt.Int64(x)
	case float64:
		return gatt.Float64(x)
	case string:
		return gatt.String(x)
	case dbus.ObjectPath:
		return gatt.ObjectPath(bzpath.ObjectPath(x))
	case []byte:
		return gatt.Bytes(x)
	case dbus.Variant:
		return gatt.Variant(fromRaw(x.Value()))
	case map[string]dbus.Variant:
		out := make(map[string]gatt.Value, len(x))
		for k, val := range x {
			out[k] = gatt.Variant(fromRaw(val.Value()))
		}
		return gatt.Dict(out)
	default:
		return gatt.Invalid()
	}
}
