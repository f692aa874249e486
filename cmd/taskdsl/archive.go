package main

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sghaida/taskdsl/schema"
)

// archiveName is the package written by --jar, relative to the output root.
const archiveName = "dist/taskdsl.zip"

// archive packages the source tree and the persisted structure into a zip
// at target. Source entries keep their path relative to srcRoot; the
// structure is stored at schema.FileName.
func archive(target, srcRoot, structurePath string) (err error) {
	if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create dist dir: %w", err)
	}
	zipFile, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create ZIP file: %w", err)
	}
	zw := zip.NewWriter(zipFile)
	defer func() {
		if cerr := zw.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if cerr := zipFile.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	err = filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		return addZipFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		return fmt.Errorf("failed to archive sources: %w", err)
	}
	return addZipFile(zw, structurePath, schema.FileName)
}

func addZipFile(zw *zip.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to get file info: %w", err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create file header: %w", err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create ZIP entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}
