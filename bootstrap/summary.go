package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/mindease/component"
)

// InfrastructureInfo is one infrastructure line of the summary.
type InfrastructureInfo struct {
	Name    string
	Type    string
	Details string
	Port    int
}

// RouteInfo is one HTTP route line of the summary.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// ClientInfo is an outbound dependency such as the transcription backend.
type ClientInfo struct {
	Name   string
	Target string
	Type   string
}

// Summary collects and prints what the app started.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	infrastructure  []InfrastructureInfo
	routes          []RouteInfo
	clients         []ClientInfo
}

// NewSummary creates an empty summary.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{serviceName: serviceName, version: version}
}

func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// TrackInfrastructure adds an infrastructure line.
func (s *Summary) TrackInfrastructure(info InfrastructureInfo) {
	s.infrastructure = append(s.infrastructure, info)
}

// TrackRoute adds a route line.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// TrackClient adds an outbound client line.
func (s *Summary) TrackClient(name, target, clientType string) {
	s.clients = append(s.clients, ClientInfo{Name: name, Target: target, Type: clientType})
}

// Collect adds infrastructure from Describable components and routes from
// RouteProviders.
func (s *Summary) Collect(registry *component.Registry) {
	if registry == nil {
		return
	}
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			s.TrackInfrastructure(InfrastructureInfo{Name: desc.Name, Type: desc.Type, Details: desc.Details, Port: desc.Port})
		}
		if rp, ok := c.(component.RouteProvider); ok {
			for _, r := range rp.Routes() {
				s.TrackRoute(r.Method, r.Path, r.Handler)
			}
		}
	}
}

// Display writes the summary and a live health check to w.
func (s *Summary) Display(w io.Writer, registry *component.Registry) {
	fmt.Fprintf(w, "\n%s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	if len(s.infrastructure) > 0 {
		fmt.Fprintf(w, "\nInfrastructure\n")
		for i, inf := range s.infrastructure {
			details := inf.Details
			if inf.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, inf.Port)
			}
			fmt.Fprintf(w, "   %s [%s] %s: %s\n", treePrefix(i, len(s.infrastructure)), inf.Type, inf.Name, details)
		}
	}

	if len(s.clients) > 0 {
		fmt.Fprintf(w, "\nClients\n")
		for i, c := range s.clients {
			fmt.Fprintf(w, "   %s %s -> %s [%s]\n", treePrefix(i, len(s.clients)), c.Name, c.Target, c.Type)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s -> %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		if results := registry.HealthAll(context.Background()); len(results) > 0 {
			fmt.Fprintf(w, "\nHealth\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " (" + h.Message + ")"
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(results)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
			}
		}
	}
	fmt.Fprintln(w)
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
