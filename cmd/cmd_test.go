package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwp-workflow/taskgen/core/grouping"
	"github.com/nwp-workflow/taskgen/core/hms"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGroupsCmd_Text(t *testing.T) {
	out, err := execute(t, "groups", "--fhrs", "0,3,6,9,12,15,18,21", "-n", "3", "-b", "9")
	require.NoError(t, err)
	assert.Equal(t,
		"f000-f003\tseg0\t0,3\n"+
			"f006-f009\tseg0\t6,9\n"+
			"f012-f021\tseg1\t12,15,18,21\n", out)
}

func TestGroupsCmd_RangeVars(t *testing.T) {
	out, err := execute(t, "groups", "--fhmax", "12", "--fhout", "3", "-n", "2", "-f", "vars")
	require.NoError(t, err)
	assert.Contains(t, out, `fhr_list="0,3,6 9,12"`)
	assert.Contains(t, out, `fhr_label="f000-f006 f009-f012"`)
	assert.Contains(t, out, `fhr3_next="009 015"`)
}

func TestGroupsCmd_ConfigurationError(t *testing.T) {
	_, err := execute(t, "groups", "--fhmax", "12", "--fhout", "3", "-n", "1", "-b", "6")
	assert.ErrorIs(t, err, grouping.ErrConfiguration)
}

func TestHMSCmd(t *testing.T) {
	out, err := execute(t, "hms", "00:15:00", "2.5")
	require.NoError(t, err)
	assert.Equal(t, "00:37:30\n", out)

	_, err = execute(t, "hms", "15 minutes", "2")
	assert.ErrorIs(t, err, hms.ErrInvalidDuration)

	_, err = execute(t, "hms", "00:15:00")
	assert.Error(t, err)
}

const cmdConfig = `run: gdas
forecast:
  fhmin: 0
  fhmax: 9
  fhout: 3
host:
  scheduler: slurm
  account: fv3-cpu
tasks:
  - name: atmos_prod
    component: atmos
    max_tasks: 2
    resources: {walltime: "00:10:00", ntasks: 4, tasks_per_node: 4}
ledger:
  backend: jsonl
  path: LEDGER
`

func TestGenerateAndHistoryCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	data := strings.Replace(cmdConfig, "LEDGER", filepath.Join(dir, "ledger.jsonl"), 1)
	require.NoError(t, os.WriteFile(cfgPath, []byte(data), 0o644))

	out, err := execute(t, "generate", "-c", cfgPath, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"fhr_label": "f000-f003 f006-f009"`)
	assert.Contains(t, out, `"name": "gdas_atmos_prod_#fhr_label#"`)

	out, err = execute(t, "history", "-c", cfgPath, "--task", "atmos_prod")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "gdas\tatmos_prod\tf000-f003 f006-f009")

	out, err = execute(t, "history", "-c", cfgPath, "-f", "csv")
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, rows, 3)
	assert.True(t, strings.HasSuffix(rows[2], ",gdas,atmos_prod,1,0,6,9,2"))

	out, err = execute(t, "history", "-c", cfgPath, "--task", "wavepostsbs")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestGenerateCmd_BadFormat(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Replace(cmdConfig, "LEDGER", filepath.Join(dir, "l.jsonl"), 1)), 0o644))
	_, err := execute(t, "generate", "-c", cfgPath, "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}
