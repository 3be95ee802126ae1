package signature

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/TimothyStiles/gsearch/gserrors"
	"github.com/TimothyStiles/gsearch/manifest"
)

// manifestEntryName is the fixed path a .zip signature archive's manifest
// lives at, per spec.md §6.
const manifestEntryName = "SOURMASH-MANIFEST.csv"

// Load reads every Signature stored at path, transparently handling the
// three container forms spec.md §6 names: plain JSON (.sig), gzipped JSON
// (.sig.gz), and zip archives of individual entries plus a manifest CSV
// (.zip).
func Load(path string, ignoreMD5Sum bool) ([]*Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	switch {
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path, data, ignoreMD5Sum)
	case strings.HasSuffix(path, ".gz"):
		return loadGzip(path, data, ignoreMD5Sum)
	default:
		sigs, err := Unmarshal(data, ignoreMD5Sum)
		if err != nil {
			return nil, wrapPathError(path, err)
		}
		return sigs, nil
	}
}

func loadGzip(path string, data []byte, ignoreMD5Sum bool) ([]*Signature, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	sigs, err := Unmarshal(raw, ignoreMD5Sum)
	if err != nil {
		return nil, wrapPathError(path, err)
	}
	return sigs, nil
}

func loadZip(path string, data []byte, ignoreMD5Sum bool) ([]*Signature, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &gserrors.IOError{Path: path, Err: err}
	}
	var out []*Signature
	for _, f := range zr.File {
		if f.Name == manifestEntryName || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, &gserrors.IOError{Path: path, Err: err}
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &gserrors.IOError{Path: path, Err: err}
		}
		sigs, err := Unmarshal(raw, ignoreMD5Sum)
		if err != nil {
			return nil, wrapPathError(path, err)
		}
		out = append(out, sigs...)
	}
	return out, nil
}

func wrapPathError(path string, err error) error {
	if fe, ok := err.(*gserrors.FormatError); ok {
		fe.Detail = path + ": " + fe.Detail
		return fe
	}
	return err
}

// Save writes sigs to path as a plain (.sig) or gzipped (.sig.gz)
// signature file, depending on path's suffix, using write-to-temp +
// atomic rename so a crash mid-write never leaves a half-written file
// (spec.md §5 "Scoped acquisition").
func Save(path string, sigs []*Signature) error {
	data, err := Marshal(sigs)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return &gserrors.IOError{Path: path, Err: err}
		}
		if err := zw.Close(); err != nil {
			return &gserrors.IOError{Path: path, Err: err}
		}
		data = buf.Bytes()
	}
	return atomicWriteFile(path, data)
}

// SaveZip writes sigs to path as a zip archive, one entry per signature
// plus a manifest CSV built from rows, per spec.md §6.
func SaveZip(path string, sigs []*Signature, rows []manifest.Row) error {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, s := range sigs {
		data, err := Marshal([]*Signature{s})
		if err != nil {
			return err
		}
		entryName := s.filename
		if entryName == "" {
			entryName = "signature" + itoaZip(i) + ".sig"
		}
		w, err := zw.Create(entryName)
		if err != nil {
			return &gserrors.IOError{Path: path, Err: err}
		}
		if _, err := w.Write(data); err != nil {
			return &gserrors.IOError{Path: path, Err: err}
		}
	}
	mw, err := zw.Create(manifestEntryName)
	if err != nil {
		return &gserrors.IOError{Path: path, Err: err}
	}
	if err := manifest.WriteCSV(mw, rows); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return &gserrors.IOError{Path: path, Err: err}
	}
	return atomicWriteFile(path, buf.Bytes())
}

func atomicWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &gserrors.IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &gserrors.IOError{Path: path, Err: err}
	}
	return nil
}

func itoaZip(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
