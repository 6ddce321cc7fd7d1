// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package staging relays uploaded files through a directory before they are
handed to storage as a stream.

The directory is only a relay buffer, never the system of record. Every staged
file carries a unique, request-scoped name so concurrent uploads that report the
same client file name never share a path.

Lifecycle:

	Stage -> Open -> (consumer reads the stream) -> Cleanup

Callers must defer [File.Cleanup] as soon as [Area.Stage] returns successfully.
Cleanup is idempotent and tolerates a file that is already gone.

The filesystem is an [afero.Fs] so tests can run on an in-memory backend.
*/
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/taibuivan/animeab/pkg/slug"
	"github.com/taibuivan/animeab/pkg/uuid"
)

// fallbackName is used when nothing usable survives sanitising.
const fallbackName = "upload"

// # Upload

// Upload is a raw file payload received from a client.
type Upload struct {
	// Name is the file name reported by the client. It is untrusted.
	Name string
	// Size is the reported payload length in bytes.
	Size int64
	// Content streams the payload. It is read once.
	Content io.Reader
}

// IsEmpty reports whether the upload carries no bytes.
func (upload *Upload) IsEmpty() bool {
	return upload.Size <= 0
}

// Close releases the underlying content when it holds a resource (e.g. a multipart part).
// It is safe to call on a nil upload.
func (upload *Upload) Close() error {
	if upload == nil {
		return nil
	}
	if closer, ok := upload.Content.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// # Area

// Area is a directory that holds staged uploads.
type Area struct {
	fs  afero.Fs
	dir string
}

// NewArea prepares dir on the given filesystem and returns a staging [Area].
func NewArea(filesystem afero.Fs, dir string) (*Area, error) {
	if exists, err := afero.DirExists(filesystem, dir); err == nil && exists {
		return &Area{fs: filesystem, dir: dir}, nil
	}
	if err := filesystem.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: failed to prepare %s: %w", dir, err)
	}
	return &Area{fs: filesystem, dir: dir}, nil
}

// NewOsArea is [NewArea] on the operating system filesystem.
func NewOsArea(dir string) (*Area, error) {
	return NewArea(afero.NewOsFs(), dir)
}

// Dir returns the staging directory.
func (area *Area) Dir() string {
	return area.dir
}

// Stage writes the upload to a uniquely named file inside the area.
//
// If writing fails the partial file is removed before the error is returned,
// so a failed Stage never leaves anything behind.
func (area *Area) Stage(upload *Upload) (*File, error) {
	if upload == nil || upload.Content == nil {
		return nil, errors.New("staging: no upload content")
	}

	name := SafeName(upload.Name)
	stagedPath := filepath.Join(area.dir, uuid.New()+"-"+name)

	target, err := area.fs.OpenFile(stagedPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("staging: failed to create %s: %w", name, err)
	}

	written, copyErr := io.Copy(target, upload.Content)
	closeErr := target.Close()

	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = area.fs.Remove(stagedPath)
		return nil, fmt.Errorf("staging: failed to write %s: %w", name, err)
	}

	return &File{area: area, path: stagedPath, name: name, size: written}, nil
}

// # File

// File is an upload that has been written to the staging area.
type File struct {
	area *Area
	path string
	name string
	size int64
}

// Name returns the sanitised client file name. This is the name storage should record.
func (file *File) Name() string { return file.name }

// Path returns the location of the staged bytes.
func (file *File) Path() string { return file.path }

// Size returns the number of bytes that were staged.
func (file *File) Size() int64 { return file.size }

// Open returns a read handle on the staged bytes. The caller closes it.
func (file *File) Open() (afero.File, error) {
	handle, err := file.area.fs.Open(file.path)
	if err != nil {
		return nil, fmt.Errorf("staging: failed to open %s: %w", file.name, err)
	}
	return handle, nil
}

// Cleanup removes the staged bytes. Removing an already removed file is not an error.
func (file *File) Cleanup() error {
	if err := file.area.fs.Remove(file.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("staging: failed to remove %s: %w", file.name, err)
	}
	return nil
}

// # Naming

// SafeName reduces an untrusted client file name to a single, URL-safe path segment.
//
// Directory parts are dropped, the stem is slugged and the extension lowercased:
//
//	SafeName("../../Naruto Cover.JPG") // "naruto-cover.jpg"
func SafeName(clientName string) string {
	base := path.Base(strings.ReplaceAll(clientName, `\`, "/"))
	extension := strings.ToLower(path.Ext(base))
	stem := slug.From(strings.TrimSuffix(base, path.Ext(base)))

	extension = slug.From(strings.TrimPrefix(extension, "."))
	if stem == "" {
		stem = fallbackName
	}
	if extension == "" {
		return stem
	}
	return stem + "." + extension
}
