package testcase

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	appErr "gavel/pkg/errors"
	"gavel/pkg/utils/logger"
)

// ImportPack extracts a .tar.zst test case archive into the repository root,
// producing the one-folder-per-case layout Discover expects. Entries that
// would escape the root are rejected.
func (r *Repository) ImportPack(ctx context.Context, archivePath string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return appErr.Wrapf(err, appErr.PackInvalid, "open pack %s: %v", archivePath, err)
	}
	defer file.Close()

	zstdReader, err := zstd.NewReader(file)
	if err != nil {
		return appErr.Wrapf(err, appErr.PackInvalid, "create zstd reader failed")
	}
	defer zstdReader.Close()

	if err := os.MkdirAll(r.root, 0755); err != nil {
		return appErr.Wrapf(err, appErr.PackExtractFailed, "create test case directory failed")
	}

	extracted := 0
	tr := tar.NewReader(zstdReader)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return appErr.Wrapf(err, appErr.PackInvalid, "read tar entry failed")
		}
		if hdr.Name == "" {
			continue
		}
		cleanName := filepath.Clean(hdr.Name)
		if strings.HasPrefix(cleanName, "..") || filepath.IsAbs(cleanName) {
			return appErr.Newf(appErr.PackUnsafePath, "invalid tar entry path %q", hdr.Name)
		}
		target := filepath.Join(r.root, cleanName)
		if !strings.HasPrefix(target, filepath.Clean(r.root)+string(filepath.Separator)) {
			return appErr.Newf(appErr.PackUnsafePath, "tar entry %q escapes destination", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return appErr.Wrapf(err, appErr.PackExtractFailed, "create dir failed")
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return appErr.Wrapf(err, appErr.PackExtractFailed, "create parent dir failed")
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, fs.FileMode(hdr.Mode))
			if err != nil {
				return appErr.Wrapf(err, appErr.PackExtractFailed, "create file failed")
			}
			if _, err := io.Copy(out, tr); err != nil {
				_ = out.Close()
				return appErr.Wrapf(err, appErr.PackExtractFailed, "write file failed")
			}
			_ = out.Close()
			extracted++
		default:
			// skip other types
		}
	}

	logger.Info(ctx, "test case pack imported",
		zap.String("pack", archivePath),
		zap.String("root", r.root),
		zap.Int("files", extracted))

	return nil
}
