package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/chronoflow/internal/testutil"
)

func TestConfigBuild(t *testing.T) {
	testutil.AssertEqual(t, Config{}.Build() == nil, true)
	testutil.AssertEqual(t, Config{Enabled: true}.Build(), DefaultRegistry)
	testutil.AssertEqual(t, DefaultConfig().Build(), DefaultRegistry)

	reg := prometheus.NewRegistry()
	r := Config{Enabled: true, Registry: reg}.Build()
	testutil.AssertEqual(t, r != DefaultRegistry, true)

	r.TasksScheduled.WithLabelValues("pool").Inc()
	testutil.AssertEqual(t, promtest.ToFloat64(r.TasksScheduled.WithLabelValues("pool")), 1.0)

	n, err := promtest.GatherAndCount(reg, "chronoflow_tasks_scheduled_total")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)
}

func TestCustomNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := Config{Enabled: true, Registry: reg, Namespace: "myapp"}.Build()

	r.WorkerPoolSize.WithLabelValues("pool").Set(3)

	n, err := promtest.GatherAndCount(reg, "myapp_workerpool_size")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)
}
