package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestUnpack_FindsIXBRLInstanceByPattern(t *testing.T) {
	data := buildZip(t, map[string]string{
		"tifrs-fr1-ci-2330-2024Q3.html": "<html><body>ix</body></html>",
		"tifrs-fr1-ci-2330-2024Q3_cal.xml": "<root/>",
		"tifrs-fr1-ci-2330-2024Q3_pre.xml": "<root/>",
		"tifrs-fr1-ci-2330-2024Q3_lab.xml": "<root/>",
	})

	pkg, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, "tifrs-fr1-ci-2330-2024Q3.html", pkg.InstancePath)
	assert.Len(t, pkg.CalcPaths, 1)
	assert.Len(t, pkg.PresPaths, 1)
	assert.Len(t, pkg.LabelPaths, 1)
	assert.True(t, pkg.IsIXBRL())
}

func TestUnpack_FallsBackToXBRLRootXML(t *testing.T) {
	data := buildZip(t, map[string]string{
		"instance.xml": "<xbrli:xbrl xmlns:xbrli=\"x\"></xbrli:xbrl>",
	})

	pkg, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, "instance.xml", pkg.InstancePath)
}

func TestUnpack_FallsBackToLargestHTML(t *testing.T) {
	data := buildZip(t, map[string]string{
		"small.htm": "<html>a</html>",
		"large.htm": "<html>" + string(make([]byte, 500)) + "</html>",
	})

	pkg, err := Unpack(data)
	require.NoError(t, err)
	assert.Equal(t, "large.htm", pkg.InstancePath)
}

func TestUnpack_NoInstanceFails(t *testing.T) {
	data := buildZip(t, map[string]string{
		"readme.txt": "nothing useful",
	})

	_, err := Unpack(data)
	require.Error(t, err)
}

func TestUnpack_MalformedZipFails(t *testing.T) {
	_, err := Unpack([]byte("not a zip"))
	require.Error(t, err)
}
