package keycode

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Key is a device-defined symbolic key identifier.
type Key struct {
	Code uint16
	Name string
}

func (k Key) String() string {
	if k.Name != "" {
		return k.Name
	}
	return fmt.Sprintf("0x%02X", k.Code)
}

// Resolver maps raw numeric codes to keys and back.
type Resolver interface {
	// Lookup returns the key for a raw code, or false when the code is unknown.
	Lookup(code uint16) (Key, bool)
	// FromName returns the key for a symbolic name such as "KC_A".
	FromName(name string) (Key, bool)
}

// Table is a static Resolver backed by two maps.
type Table struct {
	byCode map[uint16]Key
	byName map[string]Key
}

// NewTable builds a Table. Later entries win when codes or names repeat.
func NewTable(keys ...Key) *Table {
	t := &Table{
		byCode: make(map[uint16]Key, len(keys)),
		byName: make(map[string]Key, len(keys)),
	}
	for _, k := range keys {
		t.byCode[k.Code] = k
		t.byName[k.Name] = k
	}
	return t
}

// Lookup implements Resolver.
func (t *Table) Lookup(code uint16) (Key, bool) {
	k, ok := t.byCode[code]
	return k, ok
}

// FromName implements Resolver. Names are matched case-insensitively.
func (t *Table) FromName(name string) (Key, bool) {
	k, ok := t.byName[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

// Keys returns all table entries ordered by code.
func (t *Table) Keys() []Key {
	out := make([]Key, 0, len(t.byCode))
	for _, k := range t.byCode {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

var (
	basicOnce  sync.Once
	basicTable *Table
)

// Basic returns the resolver for the basic HID keycode range (0x00-0xFF) used
// by macro key actions.
func Basic() *Table {
	basicOnce.Do(func() {
		basicTable = NewTable(basicKeys()...)
	})
	return basicTable
}
