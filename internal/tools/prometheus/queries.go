package prometheus

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/giantswarm/mcp-monitoring/internal/tools"
)

const (
	cpuUsageQuery     = `100 - (avg(irate(node_cpu_seconds_total{mode="idle"}[5m])) * 100)`
	memoryUsageQuery  = `(1 - (node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)) * 100`
	servicesUpQuery   = `up`
	firingAlertsQuery = `ALERTS{alertstate="firing"}`
)

// dashboardQueries back the dashboard overview resource
var dashboardQueries = []tools.NamedQuery{
	{Name: "cpu", Query: `avg(100 - (avg by(instance) (irate(node_cpu_seconds_total{mode="idle"}[5m])) * 100))`},
	{Name: "memory", Query: `avg((1 - (node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)) * 100)`},
	{Name: "disk", Query: `avg(100 - ((node_filesystem_avail_bytes{fstype!="tmpfs"} / node_filesystem_size_bytes) * 100))`},
	{Name: "alerts", Query: `count(ALERTS{alertstate="firing"})`},
}

// promQLString quotes s as a PromQL string literal
func promQLString(s string) string {
	return strconv.Quote(s)
}

func alertQuery(alertName string) string {
	return fmt.Sprintf("ALERTS{alertname=%s}", promQLString(alertName))
}

// serviceQueries back the performance analysis prompt. Pods are matched by
// name prefix, HTTP metrics by the service label.
func serviceQueries(service string) []tools.NamedQuery {
	podPrefix := promQLString(regexp.QuoteMeta(service) + ".*")
	svc := promQLString(service)

	return []tools.NamedQuery{
		{Name: "cpu", Query: fmt.Sprintf(`avg(rate(container_cpu_usage_seconds_total{pod=~%s}[5m])) * 100`, podPrefix)},
		{Name: "memory", Query: fmt.Sprintf(`avg(container_memory_working_set_bytes{pod=~%s}) / 1024 / 1024`, podPrefix)},
		{Name: "requests", Query: fmt.Sprintf(`sum(rate(http_requests_total{service=%s}[5m]))`, svc)},
		{Name: "errors", Query: fmt.Sprintf(`sum(rate(http_requests_total{service=%s,status=~"5.."}[5m]))`, svc)},
	}
}
