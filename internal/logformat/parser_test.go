package logformat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() string {
	var w Writer
	h := ObjectHeader{Name: "Cube", ID: "_1"}
	w.BeginObject(h)
	w.Track("Position", "0.000~(0.000, 0.000, 0.000)\n1.000~(1.000, 0.000, 0.000)\n")
	w.Track("Lifetime", "0.000~true\n")
	w.EndObject(h)

	k := ObjectHeader{Name: "Main_Camera", ID: "_2", Key: true}
	w.BeginObject(k)
	w.Track("Camera", "0.000~60.000~0.300~1000.000\n")
	w.EndObject(k)
	return w.String()
}

func TestWriter_Layout(t *testing.T) {
	var w Writer
	h := ObjectHeader{Name: "Cube", ID: "_7"}
	w.BeginObject(h)
	w.Track("Position", "0.000~(0.000, 0.000, 0.000)\n")
	w.EndObject(h)

	expected := "OBJ_START~Cube_7\n" +
		"\tTRK_START~Position\n" +
		"\t\t0.000~(0.000, 0.000, 0.000)\n" +
		"\tTRK_END~Position\n" +
		"OBJ_END~Cube_7\n"
	assert.Equal(t, expected, w.String())
}

func TestParse_RoundTrip(t *testing.T) {
	records, err := Parse(buildSample())
	require.NoError(t, err)
	require.Len(t, records, 2)

	cube := records[0]
	assert.Equal(t, "Cube", cube.Name)
	assert.Equal(t, "_1", cube.ID)
	assert.False(t, cube.Key)
	assert.Equal(t, []string{"Position", "Lifetime"}, cube.Order)
	assert.Equal(t, "0.000~(0.000, 0.000, 0.000)\n1.000~(1.000, 0.000, 0.000)\n", cube.Tracks["Position"])
	assert.Equal(t, "0.000~true\n", cube.Tracks["Lifetime"])

	cam := records[1]
	assert.Equal(t, "Main_Camera", cam.Name, "подчеркивание внутри имени сохраняется")
	assert.Equal(t, "_2", cam.ID)
	assert.True(t, cam.Key)
}

func TestParse_IgnoresBlankLinesAndCR(t *testing.T) {
	text := "\r\nOBJ_START~A_1\r\n\tTRK_START~Lifetime\r\n\t\t0.000~true\r\n\n\tTRK_END~Lifetime\r\nOBJ_END~A_1\r\n\n"
	records, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "0.000~true\n", records[0].Tracks["Lifetime"])
}

func TestParse_Empty(t *testing.T) {
	records, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"missing OBJ_END":      "OBJ_START~A_1\n\tTRK_START~Lifetime\n\t\t0~true\n\tTRK_END~Lifetime\n",
		"missing TRK_END":      "OBJ_START~A_1\n\tTRK_START~Lifetime\n\t\t0~true\n",
		"track end mismatch":   "OBJ_START~A_1\n\tTRK_START~Lifetime\n\t\t0~true\n\tTRK_END~Position\nOBJ_END~A_1\n",
		"object end mismatch":  "OBJ_START~A_1\nOBJ_END~B_2\n",
		"nested object":        "OBJ_START~A_1\nOBJ_START~B_2\n",
		"data outside track":   "OBJ_START~A_1\n0~true\nOBJ_END~A_1\n",
		"data outside object":  "0~true\n",
		"unknown directive":    "HEADER~v2\n",
		"duplicate track":      "OBJ_START~A_1\n\tTRK_START~L\n\t\t0~true\n\tTRK_END~L\n\tTRK_START~L\n\t\t0~true\n\tTRK_END~L\nOBJ_END~A_1\n",
		"empty track":          "OBJ_START~A_1\n\tTRK_START~L\n\tTRK_END~L\nOBJ_END~A_1\n",
		"bad key flag":         "OBJ_START~A_1~maybe\nOBJ_END~A_1\n",
		"object without name":  "OBJ_START\n",
		"track start in track": "OBJ_START~A_1\n\tTRK_START~L\n\tTRK_START~P\n",
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			require.Error(t, err)

			var pe *ParseError
			assert.True(t, errors.As(err, &pe), "ожидалась *ParseError, получено %T", err)
			assert.Greater(t, pe.Line, 0)
		})
	}
}

func TestParse_ErrorLineNumber(t *testing.T) {
	text := "OBJ_START~A_1\n\tTRK_START~L\n\t\t0~true\n\tTRK_END~X\n"
	_, err := Parse(text)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
}

func TestSplitFullName(t *testing.T) {
	cases := []struct {
		in, name, id string
	}{
		{"Cube_3", "Cube", "_3"},
		{"Main_Camera_12", "Main_Camera", "_12"},
		{"Main_Camera", "Main_Camera", ""},
		{"Plain", "Plain", ""},
		{"Trailing_", "Trailing_", ""},
	}
	for _, c := range cases {
		name, id := SplitFullName(c.in)
		assert.Equal(t, c.name, name, c.in)
		assert.Equal(t, c.id, id, c.in)
	}
}
