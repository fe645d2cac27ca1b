// Package archive implements C3: XBRL ZIP unpacking and instance-file
// detection (spec.md §4.3).
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/novis10813/mops-financial-api/internal/apperrors"
)

// Package is the unpacked contents of an XBRL ZIP: every file by
// name, plus the detected instance path and classified linkbase paths.
type Package struct {
	Files        map[string][]byte
	InstancePath string
	CalcPaths    []string
	PresPaths    []string
	LabelPaths   []string
}

var iXBRLInstancePattern = regexp.MustCompile(`^tifrs-fr.*-ci-.*\.htm[l]?$`)

// Unpack reads zipBytes and locates the instance file per spec.md
// §4.3's priority order, classifying auxiliary linkbase files by
// filename suffix.
func Unpack(zipBytes []byte) (*Package, error) {
	reader, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
	if err != nil {
		return nil, apperrors.New(apperrors.KindMalformedPackage, "archive.Unpack", err)
	}

	pkg := &Package{Files: make(map[string][]byte, len(reader.File))}

	var largestHTML string
	var largestHTMLSize int64
	var xmlWithXBRLRoot string

	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, apperrors.New(apperrors.KindMalformedPackage, "archive.Unpack", err)
		}
		pkg.Files[f.Name] = data

		base := path.Base(f.Name)
		lower := strings.ToLower(base)

		switch {
		case strings.HasSuffix(lower, "_cal.xml"):
			pkg.CalcPaths = append(pkg.CalcPaths, f.Name)
		case strings.HasSuffix(lower, "_pre.xml"):
			pkg.PresPaths = append(pkg.PresPaths, f.Name)
		case strings.HasSuffix(lower, "_lab.xml"):
			pkg.LabelPaths = append(pkg.LabelPaths, f.Name)
		}

		if iXBRLInstancePattern.MatchString(lower) {
			pkg.InstancePath = f.Name
		}
		if strings.HasSuffix(lower, ".xml") && xmlWithXBRLRoot == "" && bytes.Contains(data, []byte("<xbrli:xbrl")) {
			xmlWithXBRLRoot = f.Name
		}
		if (strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html")) && f.FileInfo().Size() > largestHTMLSize {
			largestHTML = f.Name
			largestHTMLSize = f.FileInfo().Size()
		}
	}

	if pkg.InstancePath == "" {
		pkg.InstancePath = xmlWithXBRLRoot
	}
	if pkg.InstancePath == "" {
		pkg.InstancePath = largestHTML
	}
	if pkg.InstancePath == "" {
		return nil, apperrors.New(apperrors.KindMalformedPackage, "archive.Unpack", fmt.Errorf("no instance file located among %d files", len(pkg.Files)))
	}

	return pkg, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Instance returns the bytes of the detected instance file.
func (p *Package) Instance() []byte {
	return p.Files[p.InstancePath]
}

// IsIXBRL reports whether the instance file looks like inline XBRL
// (HTML root) as opposed to a plain XBRL instance document.
func (p *Package) IsIXBRL() bool {
	data := p.Instance()
	trimmed := bytes.TrimSpace(data)
	return bytes.HasPrefix(bytes.ToLower(trimmed), []byte("<!doctype html")) ||
		bytes.Contains(bytes.ToLower(data[:min(len(data), 2048)]), []byte("<html"))
}
