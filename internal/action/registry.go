package action

import (
	"sort"
	"sync"

	"github.com/ObiWanKeoni/vial-gui/internal/keycode"
)

// Factory returns a fresh, empty action of one variant.
type Factory func() Action

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{}
)

func init() {
	Register(TagText, func() Action { return &Text{} })
	Register(TagTap, func() Action { return &Tap{} })
	Register(TagDown, func() Action { return &Down{} })
	Register(TagUp, func() Action { return &Up{} })
	Register(TagDelay, func() Action { return &Delay{} })
}

// Register stores a factory for a record tag, replacing any previous one.
func Register(tag string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[tag] = f
}

// New builds an empty action for tag. It returns false for unknown tags.
func New(tag string) (Action, bool) {
	regMu.RLock()
	f, ok := registry[tag]
	regMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// FromRecord builds and restores an action from a portable record.
// ok is false when the record has no registered tag.
func FromRecord(rec Record, keys keycode.Resolver) (act Action, ok bool, err error) {
	tag, ok := rec.Tag()
	if !ok {
		return nil, false, nil
	}
	act, ok = New(tag)
	if !ok {
		return nil, false, nil
	}
	if err := act.Restore(rec, keys); err != nil {
		return nil, true, err
	}
	return act, true, nil
}

// Tags lists the registered tags in sorted order.
func Tags() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
