package igc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixExtensions_Format(t *testing.T) {
	record := FixExtensions{ExtensionDefinition{
		Count: 3,
		Extensions: []Extension{
			NewExtension("FXA", 36, 38),
			NewExtension("ENL", 39, 41),
			NewExtension("TAS", 42, 46),
		},
	}}

	line, err := record.Format()
	require.NoError(t, err)
	assert.Equal(t, "I033638FXA3941ENL4246TAS", line)
}

func TestParseFixExtensions(t *testing.T) {
	rec, err := ParseFixExtensions("I033638FXA3941ENL4246TAS")
	require.NoError(t, err)

	assert.Equal(t, 3, rec.Count)
	assert.Equal(t, []Extension{
		{Mnemonic: "FXA", Start: 36, End: 38},
		{Mnemonic: "ENL", Start: 39, End: 41},
		{Mnemonic: "TAS", Start: 42, End: 46},
	}, rec.Extensions)

	ext, ok := rec.Lookup("ENL")
	require.True(t, ok)
	assert.Equal(t, 39, ext.Start)
	_, ok = rec.Lookup("GSP")
	assert.False(t, ok)
}

func TestExtensionLines_RoundTrip(t *testing.T) {
	lines := []string{
		"I033638FXA3941ENL4246TAS",
		"I00",
		"I013638FXA",
		"J010812HDT",
		"J020810WDI1113WSP",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			rec, err := ParseLine(line)
			require.NoError(t, err)

			var out string
			switch r := rec.(type) {
			case *FixExtensions:
				out, err = r.Format()
			case *DataExtensions:
				out, err = r.Format()
			default:
				t.Fatalf("unexpected record %T", rec)
			}
			require.NoError(t, err)
			assert.Equal(t, line, out)
		})
	}
}

func TestDecodeExtensions_CountWidths(t *testing.T) {
	def, err := DecodeExtensions("23638FXA3941ENL", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, def.Count)
	assert.Len(t, def.Extensions, 2)

	body, err := def.Encode(1)
	require.NoError(t, err)
	assert.Equal(t, "23638FXA3941ENL", body)

	body, err = def.Encode(2)
	require.NoError(t, err)
	assert.Equal(t, "023638FXA3941ENL", body)

	_, err = DecodeExtensions("023638FXA", 3)
	assert.Error(t, err)
}

func TestDecodeExtensions_Failures(t *testing.T) {
	testCases := []struct {
		name string
		line string
		kind ErrorKind
	}{
		{"count not digits", "IA13638FXA", MalformedNumericField},
		{"missing count", "I0", LineTooShort},
		{"fewer entries than count", "I033638FXA3941ENL", LineTooShort},
		{"entry cut short", "I013638FX", LineTooShort},
		{"start not digits", "I01X638FXA", MalformedNumericField},
		{"end not digits", "I0136 8FXA", MalformedNumericField},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFixExtensions(tc.line)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tc.kind, perr.Kind)
			assert.Equal(t, tc.line, perr.Line)
		})
	}
}

func TestExtensionDefinition_EncodeRejectsUnrepresentable(t *testing.T) {
	testCases := []struct {
		name string
		def  ExtensionDefinition
	}{
		{"column over two digits", ExtensionDefinition{Count: 1, Extensions: []Extension{{"FXA", 98, 100}}}},
		{"negative column", ExtensionDefinition{Count: 1, Extensions: []Extension{{"FXA", -1, 3}}}},
		{"short mnemonic", ExtensionDefinition{Count: 1, Extensions: []Extension{{"FX", 36, 38}}}},
		{"long mnemonic", ExtensionDefinition{Count: 1, Extensions: []Extension{{"FXAA", 36, 38}}}},
		{"count mismatch", ExtensionDefinition{Count: 2, Extensions: []Extension{{"FXA", 36, 38}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.def.Format('I')
			assert.Error(t, err)
		})
	}

	_, err := ExtensionDefinition{}.Format('B')
	assert.Error(t, err)

	ten := ExtensionDefinition{Count: 10, Extensions: make([]Extension, 10)}
	for i := range ten.Extensions {
		ten.Extensions[i] = NewExtension("AAA", 36+i, 36+i)
	}
	_, err = ten.Encode(1)
	assert.Error(t, err)
}

func TestExtension_Value(t *testing.T) {
	line := "B1101355206343N00006198WA0058700558301"
	v, ok := NewExtension("FXA", 36, 38).Value(line)
	require.True(t, ok)
	assert.Equal(t, "301", v)

	_, ok = NewExtension("ENL", 39, 41).Value(line)
	assert.False(t, ok)

	_, ok = NewExtension("BAD", 0, 2).Value(line)
	assert.False(t, ok)
}

func TestExtensionCountWidth(t *testing.T) {
	assert.Equal(t, 2, ExtensionCountWidth('I'))
	assert.Equal(t, 2, ExtensionCountWidth('J'))
	assert.Equal(t, 0, ExtensionCountWidth('C'))
}
