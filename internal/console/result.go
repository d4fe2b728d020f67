// ABOUTME: Query results decoded from database proxy frames
// ABOUTME: Each frame becomes either tabular Rows or a Status message, decided once at decode time

package console

import (
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/2389/gatehouse/internal/payload"
)

// UnknownResponse is shown for a non-tabular frame without a usable data field.
const UnknownResponse = "unknown response"

// Decode errors. Both indicate the proxy broke the wire contract.
var (
	ErrNotText        = errors.New("frame is not text")
	ErrMalformedFrame = errors.New("frame is not valid JSON")
)

// Result is a decoded proxy frame: either Rows or Status.
type Result interface {
	isResult()
}

// Rows is a tabular result. Columns come from the first record's keys in
// document order; later records are read against those columns.
type Rows struct {
	Columns []string
	Records [][]string
}

// Status is a non-tabular result rendered as a message.
type Status struct {
	Message string
}

func (Rows) isResult()   {}
func (Status) isResult() {}

// Decode turns one proxy frame into a Result.
func Decode(messageType int, frame []byte) (Result, error) {
	if messageType != websocket.TextMessage {
		return nil, fmt.Errorf("%w: message type %d", ErrNotText, messageType)
	}

	doc, ok := payload.Parse(frame)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedFrame, truncate(frame, 64))
	}

	if doc.IsArray() {
		return decodeRows(doc.Array()), nil
	}

	if data, found := payload.Data(doc, true); found {
		return Status{Message: payload.Text(data)}, nil
	}
	return Status{Message: UnknownResponse}, nil
}

func decodeRows(elems []gjson.Result) Rows {
	if len(elems) == 0 {
		return Rows{}
	}

	columns := keysOf(elems[0])
	rows := Rows{
		Columns: columns,
		Records: make([][]string, 0, len(elems)),
	}

	for _, elem := range elems {
		fields := fieldsOf(elem)
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = payload.Text(fields[col])
		}
		rows.Records = append(rows.Records, record)
	}

	return rows
}

// keysOf lists an object's keys in document order, first occurrence only.
func keysOf(obj gjson.Result) []string {
	if !obj.IsObject() {
		return nil
	}
	var keys []string
	seen := make(map[string]bool)
	obj.ForEach(func(key, _ gjson.Result) bool {
		k := key.String()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
		return true
	})
	return keys
}

// fieldsOf indexes an object's values by key; later duplicates win.
func fieldsOf(obj gjson.Result) map[string]gjson.Result {
	fields := make(map[string]gjson.Result)
	if !obj.IsObject() {
		return fields
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = value
		return true
	})
	return fields
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
