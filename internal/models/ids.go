package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IDList is an ordered list of entity ids embedded in a record (child comments,
// community posts, members, voters). It is persisted as a JSON array.
type IDList []string

func NewID() string {
	return uuid.New().String()
}

func (l IDList) Contains(id string) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Without returns the list with every occurrence of id removed and whether anything changed.
func (l IDList) Without(id string) (IDList, bool) {
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out, len(out) != len(l)
}

// With appends id unless it is already present.
func (l IDList) With(id string) (IDList, bool) {
	if l.Contains(id) {
		return l, false
	}
	return append(l, id), true
}

// MarshalJSON keeps empty lists as [] instead of null.
func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l IDList) Value() (driver.Value, error) {
	b, err := l.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *IDList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("IDList: unsupported scan type %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return err
	}
	*l = ids
	return nil
}

func (IDList) GormDataType() string {
	return "text"
}
