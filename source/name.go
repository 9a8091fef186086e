package source

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	gameDataFile   = "gamedata.yaml"
	tanksPrefix    = "tanks."
	propertiesDir  = "properties/"
	overrideSuffix = ".csv"
)

type fileKind int

const (
	ignoredFile fileKind = iota
	gameData
	classificationFile
	propertyFile
)

// A file is a data file recognised by its name.
type file struct {
	name        string
	kind        fileKind
	fileVersion int
	// fileID and author name property files only.
	fileID string
	author string
}

// classify recognises a data file by its object key. It returns an error for
// names that follow a convention but carry a malformed file version.
func classify(key string) (file, error) {
	f := file{name: key}
	switch {
	case key == gameDataFile:
		f.kind = gameData
		return f, nil

	case strings.HasPrefix(key, tanksPrefix) && strings.HasSuffix(key, overrideSuffix) && !strings.Contains(key, "/"):
		n, err := parseFileVersion(strings.TrimSuffix(strings.TrimPrefix(key, tanksPrefix), overrideSuffix))
		if err != nil {
			return f, err
		}
		f.kind, f.fileVersion = classificationFile, n
		return f, nil

	case strings.HasPrefix(key, propertiesDir) && strings.HasSuffix(key, overrideSuffix):
		base := strings.TrimSuffix(path.Base(key), overrideSuffix)
		if path.Dir(key)+"/" != propertiesDir {
			return f, nil
		}
		// <FileID>.<Author>.<N>: the file id may itself contain dots.
		parts := strings.Split(base, ".")
		if len(parts) < 3 {
			return f, errors.New("property file name must be <FileID>.<Author>.<N>.csv")
		}
		n, err := parseFileVersion(parts[len(parts)-1])
		if err != nil {
			return f, err
		}
		f.author = parts[len(parts)-2]
		f.fileID = strings.Join(parts[:len(parts)-2], ".")
		if f.fileID == "" || f.author == "" {
			return f, errors.New("property file name must be <FileID>.<Author>.<N>.csv")
		}
		f.kind, f.fileVersion = propertyFile, n
		return f, nil
	}
	return f, nil
}

// parseFileVersion parses the file version embedded in an override file name.
// File version 0 is reserved for live game data.
func parseFileVersion(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("file version suffix %q is not a number", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("file version %d is reserved; override files start at 1", n)
	}
	return n, nil
}
