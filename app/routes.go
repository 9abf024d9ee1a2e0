package app

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/kestrel/mux"
)

// RouteTable lists what the app serves.
type RouteTable struct {
	Routes  []mux.RouteInfo `yaml:"routes"`
	Sockets []mux.RouteInfo `yaml:"sockets,omitempty"`
	Mounts  []string        `yaml:"mounts,omitempty"`
}

// Routes returns the registered routes, socket routes and mount prefixes
// in registration order.
func (a *App) Routes() RouteTable {
	var t RouteTable
	for _, r := range a.router.Routes() {
		t.Routes = append(t.Routes, r.Info())
	}
	for _, r := range a.sockets.Routes() {
		t.Sockets = append(t.Sockets, r.Info())
	}
	for _, m := range a.mounts {
		t.Mounts = append(t.Mounts, m.prefix)
	}
	return t
}

// DumpRoutes writes the route table as YAML.
func (a *App) DumpRoutes(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(a.Routes()); err != nil {
		return err
	}
	return enc.Close()
}
