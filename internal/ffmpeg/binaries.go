// Package ffmpeg locates the ffprobe binary probing depends on. Resolution
// order: explicit env override, the system PATH, a previously installed
// copy in the user cache, then a downloaded release bundle.
package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath string
)

// FFprobePath returns an ffprobe binary path, installing one on first use
// when none is available. The result is cached for the process lifetime.
func FFprobePath() (string, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = ensure()
	})
	return ensurePath, ensureErr
}

func ensure() (string, error) {
	if path := os.Getenv("SPARKPACK_FFPROBE_PATH"); path != "" {
		return path, nil
	}
	if found, err := exec.LookPath("ffprobe"); err == nil {
		return found, nil
	}

	assetName, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	installDir := filepath.Join(
		cacheDir,
		"sparkpack",
		"ffprobe",
		releaseVersion,
		runtime.GOOS,
		runtime.GOARCH,
	)
	dest := filepath.Join(installDir, "ffprobe"+executableSuffix())

	if binaryExists(dest) {
		return dest, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", fmt.Errorf("create ffprobe cache dir: %w", err)
	}

	if err := downloadAndExtract(assetName, dest); err != nil {
		return "", err
	}
	if !binaryExists(dest) {
		return "", errors.New("ffprobe not found after extraction")
	}
	if runtime.GOOS != "windows" {
		if err := os.Chmod(dest, 0o755); err != nil {
			return "", fmt.Errorf("chmod ffprobe: %w", err)
		}
	}

	return dest, nil
}

func assetForPlatform(goos, goarch string) (string, error) {
	switch {
	case goos == "linux" && goarch == "amd64":
		return "ffmpeg-" + releaseVersion + "-linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return "ffmpeg-" + releaseVersion + "-linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return "ffmpeg-" + releaseVersion + "-macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return "ffmpeg-" + releaseVersion + "-win-64.zip", nil
	default:
		return "", fmt.Errorf("no prebuilt ffprobe for platform %s/%s", goos, goarch)
	}
}

func downloadAndExtract(assetName, dest string) error {
	url := fmt.Sprintf("%s/v%s/%s", releaseBaseURL, releaseVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffprobe bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffprobe bundle: unexpected status %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp("", "sparkpack-ffprobe-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractFFprobe(archivePath, dest); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

// extractFFprobe pulls only the ffprobe entry of a release bundle. The
// bundles ship ffmpeg alongside it, which nothing here needs.
func extractFFprobe(archivePath, dest string) error {
	zipReader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffprobe archive: %w", err)
	}
	defer func() { _ = zipReader.Close() }()

	for _, file := range zipReader.File {
		if !isFFprobeBinary(filepath.Base(file.Name)) {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return fmt.Errorf("open archive entry: %w", err)
		}
		defer func() { _ = reader.Close() }()

		out, err := os.Create(dest)
		if err != nil {
			return fmt.Errorf("create ffprobe binary: %w", err)
		}
		defer func() { _ = out.Close() }()

		if _, err := io.Copy(out, reader); err != nil {
			return fmt.Errorf("write ffprobe binary: %w", err)
		}
		return nil
	}

	return errors.New("archive does not contain ffprobe")
}

func binaryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func isFFprobeBinary(name string) bool {
	name = strings.ToLower(name)
	return name == "ffprobe" || name == "ffprobe.exe"
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
