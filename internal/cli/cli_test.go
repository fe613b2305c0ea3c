package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/portflow/pkg/domain"
	"github.com/aretw0/portflow/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineYAML = `name: pipeline
processors:
  - id: src
    class: source
    metadata:
      value: 7
  - id: pass
    class: passthrough
  - id: snk
    class: sink
connections:
  - from: src/out
    to: pass/in
  - from: pass/out
    to: snk/in
`

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefinition_RequiresSource(t *testing.T) {
	_, err := LoadDefinition(context.Background(), Options{})
	assert.Error(t, err)
}

func TestRunValidate(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunValidate(ctx, &out, Options{File: writeDefinition(t, pipelineYAML)}))
	assert.Contains(t, out.String(), `Network "pipeline" is valid!`)
	assert.Contains(t, out.String(), "3 processors, 2 connections")

	broken := pipelineYAML + "  - from: snk/out\n    to: src/in\n"
	out.Reset()
	err := RunValidate(ctx, &out, Options{File: writeDefinition(t, broken)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "problem(s)")
	assert.Contains(t, out.String(), "  - ")

	out.Reset()
	err = RunValidate(ctx, &out, Options{File: writeDefinition(t, pipelineYAML+"colour: red\n")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.Contains(t, out.String(), "colour")
}

func TestRunGraph(t *testing.T) {
	ctx := context.Background()
	opts := Options{File: writeDefinition(t, pipelineYAML)}

	var out bytes.Buffer
	require.NoError(t, RunGraph(ctx, &out, opts, false))
	assert.Contains(t, out.String(), "graph LR")
	assert.Contains(t, out.String(), "src")
	assert.Contains(t, out.String(), "snk")

	out.Reset()
	require.NoError(t, RunGraph(ctx, &out, opts, true))
	assert.Contains(t, out.String(), "classDef valid")
}

func TestRunInspect(t *testing.T) {
	ctx := context.Background()
	opts := Options{File: writeDefinition(t, pipelineYAML)}

	var out bytes.Buffer
	require.NoError(t, RunInspect(ctx, &out, opts, nil))
	for _, id := range []string{"src", "pass", "snk"} {
		assert.Contains(t, out.String(), id)
	}

	out.Reset()
	upper := func(s string) (string, error) { return "rendered:" + s, nil }
	require.NoError(t, RunInspect(ctx, &out, opts, upper))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("rendered:")))
}

func TestRunCheck(t *testing.T) {
	ctx := context.Background()
	opts := Options{File: writeDefinition(t, pipelineYAML)}

	var out bytes.Buffer
	require.NoError(t, RunCheck(ctx, &out, opts, "src/out", "snk/in"))
	assert.Contains(t, out.String(), "acyclic")

	out.Reset()
	err := RunCheck(ctx, &out, opts, "pass/out", "pass/in")
	assert.ErrorIs(t, err, domain.ErrCircularConnection)
	assert.Contains(t, out.String(), "would create a cycle")

	assert.ErrorIs(t, RunCheck(ctx, &out, opts, "bogus", "pass/in"), domain.ErrInvalidPortRef)
}

func TestRunEvaluate(t *testing.T) {
	var out bytes.Buffer
	opts := Options{File: writeDefinition(t, pipelineYAML), Debug: true}
	require.NoError(t, RunEvaluate(context.Background(), &out, opts))
	assert.Equal(t, "1. src\n2. pass\n3. snk\n", out.String())
}

func TestStoreCommands_File(t *testing.T) {
	ctx := context.Background()
	opts := Options{Store: StoreFile, StoreDir: t.TempDir()}
	path := writeDefinition(t, pipelineYAML)

	var out bytes.Buffer
	require.NoError(t, RunStoreList(ctx, &out, opts))
	assert.Equal(t, "No networks stored.\n", out.String())

	out.Reset()
	require.NoError(t, RunStoreImport(ctx, &out, opts, path, ""))
	assert.Contains(t, out.String(), `Imported "pipeline"`)

	out.Reset()
	require.NoError(t, RunStoreImport(ctx, &out, opts, path, "copy"))

	out.Reset()
	require.NoError(t, RunStoreList(ctx, &out, opts))
	assert.Equal(t, "copy\npipeline\n", out.String())

	// Commands read stored networks through --network.
	out.Reset()
	opts.Network = "copy"
	require.NoError(t, RunEvaluate(ctx, &out, opts))
	assert.Contains(t, out.String(), "3. snk")

	out.Reset()
	require.NoError(t, RunStoreExport(ctx, &out, opts, "copy", schema.FormatJSON))
	def, err := schema.Parse(out.Bytes(), schema.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, def.Processors, 3)

	out.Reset()
	require.NoError(t, RunStoreDelete(ctx, &out, opts, "copy"))
	_, err = LoadDefinition(ctx, opts)
	assert.ErrorIs(t, err, domain.ErrNetworkNotFound)
}

func TestStoreCommands_SQLite(t *testing.T) {
	ctx := context.Background()
	opts := Options{Store: StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "db", "networks.db")}

	var out bytes.Buffer
	require.NoError(t, RunStoreImport(ctx, &out, opts, writeDefinition(t, pipelineYAML), ""))

	out.Reset()
	require.NoError(t, RunStoreList(ctx, &out, opts))
	assert.Equal(t, "pipeline\n", out.String())

	opts.Network = "pipeline"
	def, err := LoadDefinition(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 7, def.Processor("src").Metadata["value"])
}

func TestOpenBackend(t *testing.T) {
	_, err := OpenBackend(Options{Store: "tape"})
	assert.Error(t, err)

	_, err = OpenBackend(Options{Store: StoreRedis})
	assert.Error(t, err, "redis needs an address")

	mem, err := OpenBackend(Options{Store: StoreMemory})
	require.NoError(t, err)
	assert.Nil(t, mem.Locker)
	assert.NoError(t, mem.Close())
}

func TestOpenBackend_Middleware(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	opts := Options{StoreDir: dir, Redact: []string{"^token$"}, EncryptionKey: key}

	path := writeDefinition(t, strings.Replace(pipelineYAML, "value: 7", "value: 7\n      token: abc", 1))

	var out bytes.Buffer
	require.NoError(t, RunStoreImport(ctx, &out, opts, path, ""))

	raw, err := os.ReadFile(filepath.Join(dir, "pipeline.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abc")
	assert.Contains(t, string(raw), "__encrypted__")

	def, err := LoadDefinition(ctx, Options{StoreDir: dir, Network: "pipeline", EncryptionKey: key})
	require.NoError(t, err)
	assert.Equal(t, "***", def.Processor("src").Metadata["token"])
	assert.EqualValues(t, 7, def.Processor("src").Metadata["value"])

	_, err = OpenBackend(Options{Redact: []string{"("}})
	assert.Error(t, err)
	_, err = OpenBackend(Options{EncryptionKey: "not base64!"})
	assert.Error(t, err)
	_, err = OpenBackend(Options{EncryptionKey: base64.StdEncoding.EncodeToString([]byte("short"))})
	assert.Error(t, err)
}

func TestOpenBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	opts := Options{Store: StoreRedis, RedisAddr: mr.Addr()}

	var out bytes.Buffer
	require.NoError(t, RunStoreImport(ctx, &out, opts, writeDefinition(t, pipelineYAML), ""))

	out.Reset()
	require.NoError(t, RunStoreList(ctx, &out, opts))
	assert.Equal(t, "pipeline\n", out.String())

	backend, err := OpenBackend(opts)
	require.NoError(t, err)
	defer backend.Close()
	require.NotNil(t, backend.Locker)

	unlock, err := backend.Locker.Lock(ctx, "pipeline", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("portflow:lock:pipeline"))
	require.NoError(t, unlock(ctx))
}
