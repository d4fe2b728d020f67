// ABOUTME: Executes console queries and encodes the reply frame
// ABOUTME: Row results keep column order in each JSON object; other statements report rows affected

package devstack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// rowKeywords start statements that return rows.
var rowKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"PRAGMA":  true,
	"EXPLAIN": true,
	"VALUES":  true,
}

// Execute runs one query and returns the frame to send back. It never fails:
// errors become {"error": msg, "data": "error: msg"}.
func (s *Store) Execute(ctx context.Context, query string) []byte {
	query = strings.TrimSpace(query)
	if query == "" {
		return errorReply(errors.New("empty query"))
	}

	if returnsRows(query) {
		reply, err := s.queryRows(ctx, query)
		if err != nil {
			s.logger.Debug("query failed", "error", err)
			return errorReply(err)
		}
		return reply
	}

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		s.logger.Debug("statement failed", "error", err)
		return errorReply(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errorReply(err)
	}
	return dataReply(fmt.Sprintf("%d rows affected", affected))
}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	if rowKeywords[strings.ToUpper(fields[0])] {
		return true
	}
	return strings.Contains(strings.ToUpper(query), " RETURNING ")
}

// queryRows encodes every row as an object whose keys follow the column order.
func (s *Store) queryRows(ctx context.Context, query string) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	keys := make([][]byte, len(columns))
	for i, col := range columns {
		keys[i], _ = json.Marshal(col)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	count := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		if count > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for i, v := range values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			enc, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encoding column %s: %w", columns[i], err)
			}
			buf.Write(keys[i])
			buf.WriteByte(':')
			buf.Write(enc)
		}
		buf.WriteByte('}')
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	buf.WriteByte(']')

	return buf.Bytes(), nil
}

func dataReply(data string) []byte {
	b, _ := sjson.SetBytes([]byte(`{}`), "data", data)
	return b
}

func errorReply(err error) []byte {
	b, _ := sjson.SetBytes([]byte(`{}`), "error", err.Error())
	b, _ = sjson.SetBytes(b, "data", "error: "+err.Error())
	return b
}
