package ingest

import (
	"archive/tar"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"

	ci "github.com/Protryon/lib-rs-mirror-sub000"
)

// gzipMagic is the two leading bytes every valid tarball stream must start
// with ("must return a gzip-starting byte stream").
var gzipMagic = [2]byte{0x1f, 0x8b}

// TarballContents is everything the ingestion pipeline recovers directly
// from a tarball, before combining it with the upstream mirror's Record and
// any collaborator-supplied README fallback.
type TarballContents struct {
	Manifest         []byte // raw Cargo.toml bytes
	Readme           []byte // raw readme bytes found in the tarball, if any
	ReadmeName       string
	Languages        ci.LanguageLines
	LibraryPath      string
	HasBuildScript   bool
	HasCodeOfConduct bool
	CompressedSize   int64
	DecompressedSize int64
}

// languageExtensions maps a source file extension to the display language
// name used in the line-count-by-language breakdown.
var languageExtensions = map[string]string{
	".rs":   "Rust",
	".toml": "TOML",
	".md":   "Markdown",
	".c":    "C",
	".h":    "C",
	".cpp":  "C++",
	".py":   "Python",
	".sh":   "Shell",
	".yml":  "YAML",
	".yaml": "YAML",
}

// ExtractTarball validates the gzip magic, decompresses, and walks the tar
// stream once, extracting the manifest, a candidate readme, and the
// language/size breakdown.
//
// A tarball failing the magic check or failing to decompress is reported as
// ci.ErrCorrupt: the core reports the response as invalid.
func ExtractTarball(r io.Reader) (*TarballContents, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	magic, err := br.Peek(2)
	if err != nil || magic[0] != gzipMagic[0] || magic[1] != gzipMagic[1] {
		return nil, &ci.Error{Kind: ci.ErrCorrupt, Op: "ExtractTarball", Message: "tarball does not start with gzip magic"}
	}

	var compressedCounter countingReader
	compressedCounter.r = br

	gz, err := gzip.NewReader(&compressedCounter)
	if err != nil {
		return nil, &ci.Error{Kind: ci.ErrCorrupt, Op: "ExtractTarball", Message: "gzip header invalid", Inner: err}
	}
	defer gz.Close()

	out := &TarballContents{Languages: make(ci.LanguageLines)}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ci.Error{Kind: ci.ErrCorrupt, Op: "ExtractTarball", Message: "malformed tar stream", Inner: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		// Entries are rooted under "<name>-<version>/"; strip that prefix
		// for pattern matching.
		rel := hdr.Name
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			rel = rel[i+1:]
		}

		out.DecompressedSize += hdr.Size

		var content []byte // set when a case below reads the whole entry
		switch {
		case rel == "Cargo.toml":
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("ingest: read Cargo.toml: %w", err)
			}
			out.Manifest = b
			content = b
		case rel == "build.rs":
			out.HasBuildScript = true
		case rel == "src/lib.rs":
			out.LibraryPath = rel
		case strings.HasPrefix(strings.ToUpper(rel), "CODE_OF_CONDUCT"):
			out.HasCodeOfConduct = true
		case strings.HasPrefix(strings.ToUpper(rel), "README") && out.Readme == nil:
			b, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("ingest: read readme: %w", err)
			}
			out.Readme = b
			out.ReadmeName = rel
			content = b
		}

		if lang, ok := languageExtensions[path.Ext(rel)]; ok {
			if content != nil {
				out.Languages[lang] += bytes.Count(content, []byte{'\n'})
			} else {
				out.Languages[lang] += int(countLines(tr, hdr.Size))
			}
		}
	}
	out.CompressedSize = compressedCounter.n
	return out, nil
}

func countLines(r io.Reader, size int64) int64 {
	if size == 0 {
		return 0
	}
	var n int64
	buf := make([]byte, 32*1024)
	for {
		c, err := r.Read(buf)
		n += int64(bytes.Count(buf[:c], []byte{'\n'}))
		if err != nil {
			break
		}
	}
	return n
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
