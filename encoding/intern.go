package encoding

import "sync"

// internPool deduplicates property names so PropertyId equality is a plain
// string compare against a stable, process-wide interned value — mirroring
// the "stable interned string" name contract in the data model.
var (
	internMu   sync.Mutex
	internPool = make(map[string]string)
)

func intern(name string) string {
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := internPool[name]; ok {
		return existing
	}
	internPool[name] = name
	return name
}
