package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// RootMarker is the virtual volume prefix Rockbox writes into the
// playback log. Paths in the log are device paths, not filesystem paths.
const RootMarker = "/<HDD0>/"

// Layout describes where spindle reads and writes on a mounted player drive.
type Layout struct {
	Drive string
}

// NewLayout returns a Layout rooted at the given drive mount point.
func NewLayout(drive string) Layout {
	return Layout{Drive: drive}
}

// FindLog returns the path of the playback log on the drive. Rockbox
// keeps it under .rockbox/, but some builds write it to the drive root,
// so that location is accepted as a fallback.
func (l Layout) FindLog() (string, error) {
	primary := filepath.Join(l.Drive, ".rockbox", "playback.log")
	if _, err := os.Stat(primary); err == nil {
		return primary, nil
	}

	alt := filepath.Join(l.Drive, "playback.log")
	if _, err := os.Stat(alt); err == nil {
		return alt, nil
	}

	return "", fmt.Errorf("no playback log found on drive %s", l.Drive)
}

// MusicDir returns the music library directory on the drive.
func (l Layout) MusicDir() string {
	return filepath.Join(l.Drive, "Music")
}

// PlaylistDir returns the playlist directory on the drive.
func (l Layout) PlaylistDir() string {
	return filepath.Join(l.Drive, "Playlists")
}

// MetricsPath returns where the metrics snapshot is written on the drive.
func (l Layout) MetricsPath() string {
	return filepath.Join(l.Drive, ".rockbox", "user_metrics.json")
}

// DevicePath translates a local file path on the mounted drive into the
// device path form used in the playback log. The inverse of LocalPath.
func (l Layout) DevicePath(localPath string) (string, error) {
	rel, err := filepath.Rel(l.Drive, localPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is not on drive %s", localPath, l.Drive)
	}
	return RootMarker + filepath.ToSlash(rel), nil
}

// LocalPath translates a device path from the log into a real
// filesystem path on the mounted drive. The device-root marker is
// stripped and separators are normalized for the host OS.
func (l Layout) LocalPath(devicePath string) string {
	rel := strings.TrimPrefix(devicePath, RootMarker)
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(l.Drive, filepath.FromSlash(rel))
}
