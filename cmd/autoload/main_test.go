package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/HerbHall/snmpautoload/internal/config"
	"github.com/HerbHall/snmpautoload/internal/testutil"
	"github.com/HerbHall/snmpautoload/pkg/models"
)

func sampleDetails() *models.AutoloadDetails {
	return &models.AutoloadDetails{
		Resources: []models.Resource{
			{Model: "GenericChassis", Name: "Chassis 0", RelativeAddress: "CH0", UniqueID: "id-0"},
		},
		Attributes: []models.Attribute{
			{RelativeAddress: "CH0", Name: "Serial Number", Value: "FOC1"},
		},
	}
}

func TestRender(t *testing.T) {
	for _, format := range []string{config.FormatJSON, config.FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, render(&buf, format, sampleDetails()))

			var got models.AutoloadDetails
			if format == config.FormatJSON {
				require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
			} else {
				require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
			}
			assert.Equal(t, *sampleDetails(), got)
		})
	}

	assert.Error(t, render(&bytes.Buffer{}, "xml", sampleDetails()))
}

func TestRun_Replay(t *testing.T) {
	dir := t.TempDir()
	capture := filepath.Join(dir, "switch.snmprec")
	dev := testutil.NewDevice("Cisco IOS Software, Version 15.2(7)E3", "1.3.6.1.4.1.9.1.1208").
		AddEntities(testutil.NewEntity(1, 0, testutil.ClassChassis, 1, testutil.WithModel("WS-C2960X", "FOC9"))).
		AddInterfaces(testutil.Interface{Index: 10101, Name: "Gi1/0/1", Descr: "GigabitEthernet1/0/1", Type: testutil.IfTypeEthernet, MTU: 1500})
	require.NoError(t, os.WriteFile(capture, []byte(dev.Snmprec()), 0o600))

	cfg := config.DefaultConfig()
	cfg.SNMP.ReplayFile = capture
	cfg.Output.MetricsFile = filepath.Join(dir, "autoload.prom")

	// Redirect stdout so the rendered details stay out of the test log.
	stdout := os.Stdout
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	require.NoError(t, err)
	os.Stdout = devNull
	t.Cleanup(func() {
		os.Stdout = stdout
		_ = devNull.Close()
	})

	require.NoError(t, run(context.Background(), cfg, zaptest.NewLogger(t)))

	raw, err := os.ReadFile(cfg.Output.MetricsFile)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), `autoload_runs_total{result="success"} 1`), string(raw))
}

func TestRun_MissingCapture(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.SNMP.ReplayFile = filepath.Join(t.TempDir(), "missing.snmprec")
	assert.Error(t, run(context.Background(), cfg, zaptest.NewLogger(t)))
}
