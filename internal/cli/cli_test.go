package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/worker"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	require.NoError(t, setDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix("XINGMING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := decodeConfig(newTestViper(t))
	require.NoError(t, err)

	if diff := cmp.Diff(model.DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded defaults differ (-want +got):\n%s", diff)
	}
}

func TestDecodeConfig_Env(t *testing.T) {
	t.Setenv("XINGMING_SERVER_ADDR", ":9999")
	t.Setenv("XINGMING_HTTP_TIMEOUT", "5s")
	t.Setenv("XINGMING_DIAGNOSIS_DEFAULT_ELEMENT", "火")
	t.Setenv("XINGMING_CONCURRENCY_WORKERS", "8")

	cfg, err := decodeConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "火", cfg.Diagnosis.DefaultElement)
	assert.Equal(t, 8, cfg.Concurrency.Workers)
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path, false))

	err := writeDefaultConfig(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, writeDefaultConfig(path, true))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	if diff := cmp.Diff(model.DefaultConfig(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config file does not round-trip (-want +got):\n%s", diff)
	}
}

func TestDecodeConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`diagnosis:
  recommendations: 3
  palace_aliases:
    奴僕宮: 交友宮
data:
  dir: ~/tables
`), 0o644))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Diagnosis.Recommendations)
	assert.Equal(t, "疾厄宮", cfg.Diagnosis.DefaultPalace)
	assert.Equal(t, map[string]string{"奴僕宮": "交友宮"}, cfg.Diagnosis.PalaceAliases)
	assert.False(t, strings.HasPrefix(cfg.Data.Dir, "~"))
	assert.True(t, strings.HasSuffix(cfg.Data.Dir, "tables"))
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "rel", expandHome("rel"))
	assert.NotContains(t, expandHome("~/x"), "~")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRemedyCommand(t *testing.T) {
	out, err := execute(t, "remedy", "土")
	require.NoError(t, err)
	assert.Equal(t, "土 (strong) → 補木 (木剋土)\n", out)

	out, err = execute(t, "remedy", "earth", "--strength", "weak")
	require.NoError(t, err)
	assert.Equal(t, "土 (weak) → 補火 (火生土)\n", out)

	_, err = execute(t, "remedy", "air")
	assert.Error(t, err)
}

func TestLuckyCommand_MaxAboveTable(t *testing.T) {
	t.Cleanup(func() { luckyMax = 0 })

	_, err := execute(t, "lucky", "水", "--max", "5000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 81")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "xingming v"+Version+"\n", out)
}

func TestBatchReports(t *testing.T) {
	ok := &model.Report{Subject: "a.txt"}
	reports := batchReports([]*worker.ChartResult{
		{Source: "a.txt", Report: ok},
		{Source: "missing.txt", Error: errors.New("read chart: no such file")},
	})

	require.Len(t, reports, 2)
	assert.Same(t, ok, reports[0])
	assert.Equal(t, "missing.txt", reports[1].Subject)
	assert.Equal(t, "read chart: no such file", reports[1].DiagnosisError)
	assert.NotNil(t, reports[1].Recommendations)
}
