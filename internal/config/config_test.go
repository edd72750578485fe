package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vnykmshr/chronoflow/internal/testutil"
	cferrors "github.com/vnykmshr/chronoflow/pkg/common/errors"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	testutil.AssertNoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(viper.New(), newFlags(t))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c, Default())
}

func TestLoadFlags(t *testing.T) {
	fs := newFlags(t,
		"--workers=3",
		"--poll-interval=5ms",
		"--size=10",
		"--seed=99",
		"--log-level=DEBUG",
		"--log-format=json",
		"--metrics-addr=:9090",
	)

	c, err := Load(viper.New(), fs)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c.Workers, 3)
	testutil.AssertEqual(t, c.PollInterval, 5*time.Millisecond)
	testutil.AssertEqual(t, c.Size, 10)
	testutil.AssertEqual(t, c.Seed, int64(99))
	testutil.AssertEqual(t, c.LogLevel, "debug")
	testutil.AssertEqual(t, c.LogFormat, "json")
	testutil.AssertEqual(t, c.MetricsAddr, ":9090")
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("CHRONOFLOW_WORKERS", "5")
	t.Setenv("CHRONOFLOW_POLL_INTERVAL", "20ms")

	c, err := Load(viper.New(), newFlags(t))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c.Workers, 5)
	testutil.AssertEqual(t, c.PollInterval, 20*time.Millisecond)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("CHRONOFLOW_WORKERS", "5")

	c, err := Load(viper.New(), newFlags(t, "--workers=2"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c.Workers, 2)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chronoflow.yaml")
	content := "workers: 6\nsize: 12\nlog-format: json\n"
	testutil.AssertNoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := Load(viper.New(), newFlags(t, "--config="+path, "--size=8"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c.Workers, 6)
	testutil.AssertEqual(t, c.Size, 8)
	testutil.AssertEqual(t, c.LogFormat, "json")
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(viper.New(), newFlags(t, "--config=/does/not/exist.yaml"))
	testutil.AssertError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Configuration)
	}{
		{"negative workers", func(c *Configuration) { c.Workers = -1 }},
		{"zero poll interval", func(c *Configuration) { c.PollInterval = 0 }},
		{"zero size", func(c *Configuration) { c.Size = 0 }},
		{"bad level", func(c *Configuration) { c.LogLevel = "loud" }},
		{"bad format", func(c *Configuration) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			testutil.AssertEqual(t, cferrors.IsValidationError(c.Validate()), true)
		})
	}
}

func TestPoolConfig(t *testing.T) {
	c := Default()
	c.Workers = 4

	pc := c.PoolConfig()
	testutil.AssertEqual(t, pc.WorkerCount, 4)
	testutil.AssertEqual(t, pc.PollInterval, c.PollInterval)
}
