package protocolyaml

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"remote-tools/pkg/protocol"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const beepYAML = `
beep:
  desc: Test buzzer
  type: IR
  link:
    - https://example.com/beep
  note: For tests only.
  args:
    - name: freq
      type: uint16_t
      desc: Frequency in Hz
      example: 440
    - name: duration
      type: uint16_t
      desc: Duration in ms
      default: 100
      schema:
        Range: [1, 5000]
`

func requireParseErr(t *testing.T, in string, wants ...string) {
	t.Helper()
	_, err := Parse([]byte(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrInvalidDefinition), "got %v", err)
	for _, w := range wants {
		assert.Contains(t, err.Error(), w)
	}
}

func TestParse(t *testing.T) {
	defs, err := Parse([]byte(beepYAML))
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "beep", def.Name)
	assert.Equal(t, "Test buzzer", def.Desc)
	assert.Equal(t, protocol.CategoryIR, def.Type)
	assert.Equal(t, []string{"https://example.com/beep"}, def.Links)
	assert.Equal(t, "For tests only.", def.Note)

	require.Len(t, def.Args, 2)
	assert.Equal(t, "freq", def.Args[0].Name)
	assert.Equal(t, "440", def.Args[0].Example)
	assert.False(t, def.Args[0].HasDefault)
	assert.Equal(t, protocol.ArgType{Scalar: protocol.TypeUint16}, def.Args[1].Type)
	assert.True(t, def.Args[1].HasDefault)
	assert.Equal(t, 100, def.Args[1].Default)
	assert.Equal(t, []protocol.ConstraintSpec{{Name: "Range", Args: []any{1, 5000}}}, def.Args[1].Schema)
}

func TestParsePreservesOrder(t *testing.T) {
	in := `
zeta:
  desc: z
  type: RF
  args:
    - {name: b, type: string, desc: b, schema: {binary_string: ~, Length: {args: [1], max: 8}}}
alpha:
  desc: a
  type: IR/RF
  args:
    - {name: a, type: "int32_t[]", desc: a}
`
	defs, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "zeta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)

	schema := defs[0].Args[0].Schema
	require.Len(t, schema, 2)
	assert.Equal(t, protocol.ConstraintSpec{Name: "binary_string"}, schema[0])
	assert.Equal(t, "Length", schema[1].Name)
	assert.Equal(t, []any{1}, schema[1].Args)
	assert.Equal(t, map[string]any{"max": 8}, schema[1].Kwargs)

	assert.Equal(t, protocol.ArgType{Scalar: protocol.TypeInt32, Array: true}, defs[1].Args[0].Type)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		wants []string
	}{
		{"empty document", "", []string{"phase=parse", "empty YAML"}},
		{"invalid yaml", "beep: [", []string{"invalid YAML"}},
		{"root sequence", "- beep", []string{"expected a mapping of protocol names"}},
		{"protocol not a mapping", "beep: 1", []string{"path=protocols.beep", "expected mapping"}},
		{"non string name", "1: {desc: x, type: IR, args: []}", []string{"keys must be strings"}},
		{"duplicate protocol", "beep: {desc: x, type: IR, args: []}\nbeep: {desc: x, type: IR, args: []}", []string{"path=protocols.beep", "duplicate key"}},
		{"unknown protocol field", "beep: {desc: x, type: IR, args: [], color: red}", []string{"path=protocols.beep.color", "unknown field"}},
		{"missing type", "beep: {desc: x, args: []}", []string{"missing required field 'type'"}},
		{"args not a list", "beep: {desc: x, type: IR, args: {}}", []string{"path=protocols.beep.args", "expected sequence of arguments"}},
		{"link not a list", "beep: {desc: x, type: IR, link: https://x.y, args: []}", []string{"path=protocols.beep.link"}},
		{"null desc", "beep: {desc: ~, type: IR, args: []}", []string{"path=protocols.beep.desc", "expected a string, got null"}},
		{"unknown arg field", "beep: {desc: x, type: IR, args: [{name: a, type: int, desc: a, min: 1}]}", []string{"path=protocols.beep.args[0].min"}},
		{"missing arg desc", "beep: {desc: x, type: IR, args: [{name: a, type: int}]}", []string{"path=protocols.beep.args[0]", "missing required field 'desc'"}},
		{"unknown arg type", "beep: {desc: x, type: IR, args: [{name: a, type: short, desc: a}]}", []string{"path=protocols.beep.args[0].type", `unknown type "short"`}},
		{"scalar constraint params", "beep: {desc: x, type: IR, args: [{name: a, type: int, desc: a, schema: {Range: 5}}]}", []string{"path=protocols.beep.args[0].schema.Range", "expected null, sequence or mapping"}},
		{"scalar positional block", "beep: {desc: x, type: IR, args: [{name: a, type: int, desc: a, schema: {Range: {args: 5}}}]}", []string{"schema.Range.args", "expected sequence"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireParseErr(t, tt.in, tt.wants...)
		})
	}
}

func TestBuildRejectsInvalidCatalogs(t *testing.T) {
	t.Run("bad default", func(t *testing.T) {
		_, err := Build([]byte(strings.Replace(beepYAML, "default: 100", "default: 1.5", 1)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, protocol.ErrInvalidDefinition))
		assert.Contains(t, err.Error(), "phase=compile path=protocols.beep.args[1].default")
	})

	t.Run("unknown constraint", func(t *testing.T) {
		_, err := Build([]byte(strings.Replace(beepYAML, "Range:", "Regex:", 1)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phase=raw path=protocols.beep.args[1].schema.Regex")
	})

	t.Run("no protocols", func(t *testing.T) {
		_, err := Build([]byte("{}"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog declares no protocols")
	})

	t.Run("duplicate across documents", func(t *testing.T) {
		other := strings.Replace(beepYAML, "beep:", "BEEP:", 1)
		_, err := BuildMany([]byte(beepYAML), []byte(other))
		require.Error(t, err)
		assert.True(t, errors.Is(err, protocol.ErrInvalidDefinition))
		assert.Contains(t, err.Error(), `protocol "BEEP" is already defined as "beep"`)
	})
}

func TestBuildMany(t *testing.T) {
	other := strings.Replace(beepYAML, "beep:", "chirp:", 1)
	reg, err := BuildMany([]byte(beepYAML), []byte(other))
	require.NoError(t, err)
	assert.Equal(t, []string{"beep", "chirp"}, reg.ValidProtocols())

	cmd, err := reg.ValidateSendCommand("chirp:880")
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(880), uint64(100)}, cmd.Args)
}

func TestBuildFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "beep.yml")
	require.NoError(t, os.WriteFile(path, []byte(beepYAML), 0o644))

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	reg, err := New(WithLogger(logger)).BuildFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, buf.String(), `"message":"catalog compiled"`)
	assert.Contains(t, buf.String(), path)

	_, err = New().BuildFiles(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("- nope"), 0o644))
	_, err = New().BuildFiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad+": phase=parse")
}

func exampleArgs(t *testing.T, def protocol.ProtocolDefinition) []string {
	t.Helper()
	var out []string
	for _, a := range def.Args {
		if a.Example == "" {
			require.True(t, a.HasDefault, "%s.%s: required argument without example", def.Name, a.Name)
			break
		}
		out = append(out, a.Example)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)
	require.NotZero(t, reg.Len())

	for _, name := range reg.ValidProtocols() {
		t.Run(name, func(t *testing.T) {
			def, err := reg.Definition(name)
			require.NoError(t, err)
			examples := exampleArgs(t, def)

			raw := make([]any, len(examples))
			for i, e := range examples {
				raw[i] = e
			}
			cmd, err := reg.ValidateCommand(protocol.RawCommand{Protocol: name, Args: raw})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Protocol)
			assert.Len(t, cmd.Args, len(def.Args))

			text := name + ":" + strings.Join(examples, ":")
			again, err := reg.ValidateSendCommand(text)
			require.NoError(t, err)
			assert.Equal(t, cmd, again)

			sig, err := reg.Signature(name)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(sig, name+":<"), sig)
		})
	}
}

func TestDefaultCatalogCommands(t *testing.T) {
	reg, err := LoadDefault()
	require.NoError(t, err)

	tests := []struct {
		text string
		want []any
	}{
		{"nec:0x04:0x08", []any{uint64(4), uint64(8), uint64(1)}},
		{"sony:0xA90:15", []any{uint64(0xA90), uint64(15)}},
		{"raw:1000,-500,1000:0", []any{[]any{int64(1000), int64(-500), int64(1000)}, uint64(0), 50.0}},
		{"rc_switch_type_a:11001:01000:on", []any{"11001", "01000", true, uint64(1)}},
		{"aeha:0x8008:0x01,0x02", []any{uint64(0x8008), []any{uint64(1), uint64(2)}, uint64(38000)}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, err := reg.ValidateSendCommand(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}

	failures := []struct {
		text string
		is   error
		arg  string
	}{
		{"sony:0xA90:13", protocol.ErrArgumentConstraint, "nbits"},
		{"rc5:32:1", protocol.ErrArgumentConstraint, "address"},
		{"raw:1000,500", protocol.ErrArgumentConstraint, "code"},
		{"rc_switch_raw:0102", protocol.ErrArgumentConstraint, "code"},
		{"midea:1,2,3", protocol.ErrArgumentConstraint, "code"},
		{"nec:0x10000:1", protocol.ErrArgumentType, "address"},
		{"rc_switch_type_b:1:1:maybe", protocol.ErrArgumentType, "state"},
	}
	for _, tt := range failures {
		t.Run(tt.text, func(t *testing.T) {
			_, err := reg.ValidateSendCommand(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			var cerr *protocol.CommandError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.arg, cerr.Argument)
		})
	}

	_, err = reg.ValidateSendCommand("lg:0x20DF10EF:30")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<nbits>: LG codes are either 28 or 32 bits long")
}

func TestInitialize(t *testing.T) {
	first, err := Initialize()
	require.NoError(t, err)
	second, err := Initialize()
	require.NoError(t, err)
	assert.Same(t, first, second)

	cmd, err := protocol.ValidateSendCommand("NEC:0x04:0x08:2")
	require.NoError(t, err)
	assert.Equal(t, protocol.Command{Protocol: "nec", Args: []any{uint64(4), uint64(8), uint64(2)}}, cmd)

	sig, err := protocol.GetProtoSignature("nec")
	require.NoError(t, err)
	assert.Equal(t, "nec:<uint16 address>:<uint16 command>:<uint16 command_repeats?=1>", sig)

	names, err := protocol.ValidProtocols()
	require.NoError(t, err)
	assert.Equal(t, "nec", names[0])
}
