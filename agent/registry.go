package agent

import (
	"slices"

	"github.com/casualjim/brainstorm/internal/registry"
)

// Global holds the agents of the running process by name.
var Global = registry.New[*Agent]()

func Add(agent *Agent) {
	Global.Add(agent.Name(), agent)
}

func Get(name string) (*Agent, bool) {
	return Global.Get(name)
}

func Del(name string) {
	Global.Del(name)
}

// Names returns the registered agent names in sorted order.
func Names() []string {
	names := make([]string, 0, Global.Len())
	Global.Range(func(name string, _ *Agent) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}
