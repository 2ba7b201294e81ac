package intercept

import "sync"

// The process registry keeps interceptors in registration order so the
// chain it builds is deterministic.
var (
	mu       sync.RWMutex
	order    []string
	registry = map[string]Interceptor{}
)

// Register makes i available by name. Re-registering a name replaces the
// interceptor in place and keeps its position in the chain.
func Register(i Interceptor) {
	mu.Lock()
	defer mu.Unlock()
	name := i.Name()
	if _, ok := registry[name]; !ok {
		order = append(order, name)
	}
	registry[name] = i
}

func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := registry[name]; !ok {
		return
	}
	delete(registry, name)
	for idx, n := range order {
		if n == name {
			order = append(order[:idx], order[idx+1:]...)
			break
		}
	}
}

func Get(name string) (Interceptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	i, ok := registry[name]
	return i, ok
}

// Registered returns every registered interceptor as a Chain, in
// registration order. The chain is a snapshot.
func Registered() Chain {
	mu.RLock()
	defer mu.RUnlock()
	chain := make(Chain, 0, len(order))
	for _, name := range order {
		chain = append(chain, registry[name])
	}
	return chain
}
