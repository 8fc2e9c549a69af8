package fileio

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/camelcase"
	"github.com/igorsobreira/titlecase"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/leocov-dev/mrbulk/core"
)

type BundleFormat string

const (
	FormatZip    BundleFormat = "zip"
	FormatTarZst BundleFormat = "tar.zst"
	FormatTarXz  BundleFormat = "tar.xz"
)

const ManifestName = "bundle.toml"

func ParseBundleFormat(s string) (BundleFormat, error) {
	switch BundleFormat(strings.TrimPrefix(strings.ToLower(s), ".")) {
	case FormatZip:
		return FormatZip, nil
	case FormatTarZst:
		return FormatTarZst, nil
	case FormatTarXz:
		return FormatTarXz, nil
	}
	return "", fmt.Errorf("unknown bundle format %q, must be one of zip, tar.zst or tar.xz", s)
}

func (f BundleFormat) Extension() string {
	return "." + string(f)
}

// BundleDisplayName derives a human readable name from a label such as a directory name
func BundleDisplayName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" || label == "." {
		return "mrbulk bundle"
	}
	return titlecase.Title(strings.ReplaceAll(strings.ReplaceAll(strings.Join(camelcase.Split(label), " "), " - ", " "), " _ ", " "))
}

func BundleFileName(displayName string, format BundleFormat) string {
	slug := core.SlugifyName(displayName)
	if slug == "" {
		slug = "mrbulk-bundle"
	}
	return slug + format.Extension()
}

type BundleManifest struct {
	Name    string               `toml:"name"`
	Format  string               `toml:"format"`
	Created time.Time            `toml:"created"`
	Files   []BundleManifestFile `toml:"files"`
}

type BundleManifestFile struct {
	Filename  string            `toml:"filename"`
	PackageID string            `toml:"package-id"`
	Title     string            `toml:"title"`
	VersionID string            `toml:"version-id"`
	Version   string            `toml:"version"`
	Size      int64             `toml:"size"`
	Hashes    map[string]string `toml:"hashes"`
}

// Bundler writes bundles into Dir
type Bundler struct {
	Dir    string
	Format BundleFormat
	now    func() time.Time
}

func NewBundler(dir string, format BundleFormat) *Bundler {
	return &Bundler{Dir: dir, Format: format, now: time.Now}
}

func (b *Bundler) NewBundle(label string) (core.Bundle, error) {
	name := BundleDisplayName(label)
	path := filepath.Join(b.Dir, BundleFileName(name, b.Format))
	partPath := path + ".part"

	f, err := CreateFile(partPath)
	if err != nil {
		return nil, err
	}

	w, err := newArchiveWriter(b.Format, f)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(partPath)
		return nil, err
	}

	now := b.now()
	logrus.WithFields(logrus.Fields{"path": path, "format": b.Format}).Debug("creating bundle")
	return &archiveBundle{
		path:     path,
		partPath: partPath,
		file:     f,
		w:        w,
		now:      now,
		names:    make(map[string]bool),
		manifest: BundleManifest{Name: name, Format: string(b.Format), Created: now.UTC().Truncate(time.Second)},
	}, nil
}

type archiveBundle struct {
	path     string
	partPath string
	file     *os.File
	w        archiveWriter
	now      time.Time
	names    map[string]bool
	manifest BundleManifest
}

func (b *archiveBundle) Add(item core.BundleItem, r io.Reader) (int64, error) {
	if err := ValidateFilename(item.Filename); err != nil {
		return 0, err
	}
	if item.Filename == ManifestName || b.names[item.Filename] {
		return 0, fmt.Errorf("bundle already contains %s", item.Filename)
	}

	// tar headers need the size up front, so the artifact is spooled to disk first
	spool, err := os.CreateTemp("", "mrbulk-spool-*")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	hashes, err := core.NewHashSet(core.ManifestHashes...)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(io.MultiWriter(spool, hashes), r)
	if err != nil {
		return n, err
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return n, err
	}
	if err := b.w.WriteFile(item.Filename, n, b.now, spool); err != nil {
		return n, err
	}

	sums := hashes.Sums()
	delete(sums, "length-bytes")
	b.names[item.Filename] = true
	b.manifest.Files = append(b.manifest.Files, BundleManifestFile{
		Filename:  item.Filename,
		PackageID: item.PackageID,
		Title:     item.Title,
		VersionID: item.VersionID,
		Version:   item.VersionNumber,
		Size:      n,
		Hashes:    sums,
	})
	return n, nil
}

func (b *archiveBundle) Close() (string, error) {
	data, err := toml.Marshal(b.manifest)
	if err != nil {
		_ = b.Abort()
		return "", err
	}
	if err := b.w.WriteFile(ManifestName, int64(len(data)), b.now, strings.NewReader(string(data))); err != nil {
		_ = b.Abort()
		return "", err
	}
	if err := b.w.Close(); err != nil {
		_ = b.file.Close()
		_ = os.Remove(b.partPath)
		return "", err
	}
	if err := b.file.Close(); err != nil {
		_ = os.Remove(b.partPath)
		return "", err
	}
	if err := os.Rename(b.partPath, b.path); err != nil {
		return "", err
	}
	return b.path, nil
}

func (b *archiveBundle) Abort() error {
	_ = b.w.Close()
	_ = b.file.Close()
	return os.Remove(b.partPath)
}

type archiveWriter interface {
	WriteFile(name string, size int64, modified time.Time, r io.Reader) error
	Close() error
}

func newArchiveWriter(format BundleFormat, w io.Writer) (archiveWriter, error) {
	switch format {
	case FormatZip:
		return &zipArchive{zw: zip.NewWriter(w)}, nil
	case FormatTarZst:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return &tarArchive{tw: tar.NewWriter(enc), compressor: enc}, nil
	case FormatTarXz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return &tarArchive{tw: tar.NewWriter(xw), compressor: xw}, nil
	}
	return nil, fmt.Errorf("unknown bundle format %q", format)
}

type zipArchive struct {
	zw *zip.Writer
}

func (a *zipArchive) WriteFile(name string, _ int64, modified time.Time, r io.Reader) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func (a *zipArchive) Close() error {
	return a.zw.Close()
}

type tarArchive struct {
	tw         *tar.Writer
	compressor io.WriteCloser
}

func (a *tarArchive) WriteFile(name string, size int64, modified time.Time, r io.Reader) error {
	err := a.tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  modified,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(a.tw, r)
	return err
}

func (a *tarArchive) Close() error {
	if err := a.tw.Close(); err != nil {
		_ = a.compressor.Close()
		return err
	}
	return a.compressor.Close()
}
