package actors

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Open returns the flat file for db inside the mind's directory, or false if it does not exist yet.
func Open(mind, db string) (*os.File, bool) {
	if err := os.MkdirAll(directory(mind), 0777); err != nil {
		LogCLI(err.Error(), 1)
		return nil, false
	}
	name := filepath.Join(directory(mind), db+".dat")
	_, err := os.Stat(name)
	if os.IsNotExist(err) {
		return nil, false
	}
	file, err := os.Open(name)
	if err != nil {
		LogCLI(err.Error(), 1)
		return nil, false
	}
	return file, true
}

// Write replaces the flat file for db with b. The file is written next to the old one and renamed over it.
func Write(mind, db string, b []byte) error {
	if err := os.MkdirAll(directory(mind), 0777); err != nil {
		return fmt.Errorf("create %s: %w", directory(mind), err)
	}
	name := filepath.Join(directory(mind), db+".dat")
	f, err := os.Create(name + ".tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	_, err = io.Copy(f, bytes.NewReader(b))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(name+".tmp", name)
}

func directory(mind string) string {
	dir := MakeOrGetConfig().GetString("rootDir")
	dir = dir + MakeOrGetConfig().GetString("flatFileDir")
	dir = dir + mind + "/"
	return dir
}
