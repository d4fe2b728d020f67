// ABOUTME: Order-preserving JSON payload helpers built on gjson
// ABOUTME: Shared by the login flow, identity validation, and the query console

package payload

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Parse decodes body as a JSON document. The second return value is false
// when the body is empty or not valid JSON; callers treat that as "no payload".
func Parse(body []byte) (gjson.Result, bool) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(body), true
}

// Field returns the named top-level field of an object payload. Non-object
// payloads never have fields.
func Field(doc gjson.Result, name string) gjson.Result {
	if !doc.IsObject() {
		return gjson.Result{}
	}
	var found gjson.Result
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == name {
			// later duplicates win, like a JS object literal
			found = value
		}
		return true
	})
	return found
}

// Truthy reports whether v would pass a JavaScript truthiness test.
func Truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}

// Text renders v as display text: strings verbatim, numbers as their literal,
// booleans as true/false, nested objects and arrays as compact JSON, and
// null or missing values as the empty string.
func Text(v gjson.Result) string {
	if !v.Exists() {
		return ""
	}
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		return v.Raw
	default:
		return string(pretty.Ugly([]byte(v.Raw)))
	}
}

// ErrorMessage returns the "error" field of a decoded payload when it is
// truthy, otherwise fallback.
func ErrorMessage(doc gjson.Result, ok bool, fallback string) string {
	if !ok {
		return fallback
	}
	if msg := Field(doc, "error"); Truthy(msg) {
		return Text(msg)
	}
	return fallback
}

// Data returns the truthy "data" field of a decoded payload.
func Data(doc gjson.Result, ok bool) (gjson.Result, bool) {
	if !ok {
		return gjson.Result{}, false
	}
	data := Field(doc, "data")
	if !Truthy(data) {
		return gjson.Result{}, false
	}
	return data, true
}
