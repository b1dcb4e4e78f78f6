package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis/v2"
	flac "github.com/go-flac/go-flac/v2"
)

// Tags holds the identity fields read from an audio file. Empty fields
// mean the file did not carry that tag.
type Tags struct {
	Artist string
	Album  string
	Title  string
}

func (t Tags) empty() bool {
	return t.Artist == "" && t.Album == "" && t.Title == ""
}

// TagReader reads embedded tags from a local audio file.
type TagReader interface {
	ReadTags(localPath string) (Tags, error)
}

// FileTagReader reads tags with a generic reader first and falls back
// to container-native fields for formats the generic pass misses.
type FileTagReader struct{}

// ReadTags implements TagReader.
func (FileTagReader) ReadTags(localPath string) (Tags, error) {
	tags, err := readGeneric(localPath)
	if err == nil && !tags.empty() {
		return tags, nil
	}

	// The generic reader found nothing; try the container's own fields.
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".flac":
		return readFLAC(localPath)
	case ".mp3":
		return readID3(localPath)
	}

	if err != nil {
		return Tags{}, err
	}
	return Tags{}, fmt.Errorf("no tags in %s", localPath)
}

func readGeneric(localPath string) (Tags, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}, err
	}

	return Tags{Artist: m.Artist(), Album: m.Album(), Title: m.Title()}, nil
}

func readFLAC(localPath string) (Tags, error) {
	f, err := flac.ParseFile(localPath)
	if err != nil {
		return Tags{}, err
	}
	defer f.Close()

	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			continue
		}
		tags := Tags{
			Artist: firstComment(cmt, flacvorbis.FIELD_ARTIST),
			Album:  firstComment(cmt, flacvorbis.FIELD_ALBUM),
			Title:  firstComment(cmt, flacvorbis.FIELD_TITLE),
		}
		if !tags.empty() {
			return tags, nil
		}
	}

	return Tags{}, fmt.Errorf("no vorbis comments in %s", localPath)
}

func firstComment(cmt *flacvorbis.MetaDataBlockVorbisComment, field string) string {
	values, err := cmt.Get(field)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}

func readID3(localPath string) (Tags, error) {
	t, err := id3v2.Open(localPath, id3v2.Options{Parse: true})
	if err != nil {
		return Tags{}, err
	}
	defer t.Close()

	tags := Tags{Artist: t.Artist(), Album: t.Album(), Title: t.Title()}
	if tags.empty() {
		return Tags{}, fmt.Errorf("no ID3 frames in %s", localPath)
	}
	return tags, nil
}
