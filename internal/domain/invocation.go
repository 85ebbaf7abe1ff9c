package domain

import "fmt"

// Property is a single -Dkey=value system property passed to the build
type Property struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Arg renders the property as a command line argument
func (p Property) Arg() string {
	return fmt.Sprintf("-D%s=%s", p.Key, p.Value)
}

// BuildInvocation describes one run of the external build tool
type BuildInvocation struct {
	ID        string            // Unique id of this invocation
	Command   string            // Build command override, empty means configured default
	WorkDir   string            // Directory the build runs in
	Goals     []string          // Ordered goals/phases
	Options   []string          // Ordered CLI flags (-e, -fn, -X, -P...)
	Env       map[string]string // Environment overrides
	SysProps  []Property        // Ordered system properties
	LogFile   string            // Log file name relative to WorkDir
	AppendLog bool              // Append to an existing log instead of truncating it
}

// SetProperty sets a system property. A key set twice keeps its first position.
func (b *BuildInvocation) SetProperty(key, value string) {
	for i := range b.SysProps {
		if b.SysProps[i].Key == key {
			b.SysProps[i].Value = value
			return
		}
	}
	b.SysProps = append(b.SysProps, Property{Key: key, Value: value})
}

// Property returns the value of a system property
func (b BuildInvocation) Property(key string) (string, bool) {
	for _, p := range b.SysProps {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Args renders options, goals and properties in that order
func (b BuildInvocation) Args() []string {
	args := make([]string, 0, len(b.Options)+len(b.Goals)+len(b.SysProps))
	args = append(args, b.Options...)
	args = append(args, b.Goals...)
	for _, p := range b.SysProps {
		args = append(args, p.Arg())
	}
	return args
}

// Clone returns a deep copy so an executed invocation cannot be changed by later builder calls
func (b BuildInvocation) Clone() BuildInvocation {
	c := b
	c.Goals = append([]string(nil), b.Goals...)
	c.Options = append([]string(nil), b.Options...)
	c.SysProps = append([]Property(nil), b.SysProps...)
	if b.Env != nil {
		c.Env = make(map[string]string, len(b.Env))
		for k, v := range b.Env {
			c.Env[k] = v
		}
	}
	return c
}
