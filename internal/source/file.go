package source

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads a file from disk and splits it into lines.
// Content must be valid UTF-8; the bytes are kept as-is (no BOM or CRLF
// normalization) so that writing the lines back is lossless.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := validateUTF8(content); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return newFile(path, content, 0), nil
}

// FromBytes builds a virtual file (stdin, test, or formatter output).
func FromBytes(name string, content []byte) *File {
	return newFile(name, content, FileVirtual)
}

func newFile(path string, content []byte, flags FileFlags) *File {
	if bytes.HasPrefix(content, utf8BOM) {
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		flags |= FileHasCRLF
	}
	return &File{
		Path:    normalizePath(path),
		Content: content,
		Lines:   SplitLines(string(content)),
		Flags:   flags,
	}
}

// Write replaces the file on disk with lines, keeping its permission bits.
// The write is not atomic: a failure midway can leave the file truncated.
func Write(path string, lines []string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), mode.Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func validateUTF8(content []byte) error {
	_, _, err := transform.Bytes(encoding.UTF8Validator, content)
	return err
}
