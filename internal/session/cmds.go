package session

import "sort"

// Commands holds user-defined command definitions, keyed by unique name.
type Commands struct {
	byName map[string]string
}

// NewCommands returns an empty command registry.
func NewCommands() *Commands {
	return &Commands{byName: map[string]string{}}
}

// Set registers a command body under name, replacing any previous one.
func (c *Commands) Set(name, body string) {
	c.byName[name] = body
}

// Get returns the body registered under name.
func (c *Commands) Get(name string) (string, bool) {
	body, ok := c.byName[name]

	return body, ok
}

// Has reports whether name is registered.
func (c *Commands) Has(name string) bool {
	_, ok := c.byName[name]

	return ok
}

// Names returns all registered names in a fixed order.
func (c *Commands) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
