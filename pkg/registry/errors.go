package registry

import "fmt"

func errPluginNotFound(name string) error {
	return fmt.Errorf("registry: plugin %q not registered", name)
}

func errPluginPanic(name string, recovered interface{}) error {
	return fmt.Errorf("registry: plugin %q panicked: %v", name, recovered)
}
