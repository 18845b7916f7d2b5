package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Folders is the directory triad the file pipeline moves work through.
type Folders struct {
	Unprocessed string
	Processed   string
	Results     string
}

// SetupFolders ensures the unprocessed/processed/results subdirectories
// exist under base. Creation is idempotent.
func SetupFolders(base string) (Folders, error) {
	f := Folders{
		Unprocessed: filepath.Join(base, "unprocessed"),
		Processed:   filepath.Join(base, "processed"),
		Results:     filepath.Join(base, "results"),
	}

	for _, dir := range []string{f.Unprocessed, f.Processed, f.Results} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Folders{}, fmt.Errorf("create folder %s: %w", dir, err)
		}
	}
	return f, nil
}

// PickOldestPending returns the pending file with the earliest modification
// time in folder. An empty folder is not an error: ok is false and there is
// nothing to do. Ties are left to the order the directory listing happens to
// produce.
func PickOldestPending(folder string) (path string, ok bool, err error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return "", false, fmt.Errorf("list folder %s: %w", folder, err)
	}

	type candidate struct {
		path    string
		modTime int64
	}

	var files []candidate
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return "", false, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, candidate{
			path:    filepath.Join(folder, e.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	if len(files) == 0 {
		return "", false, nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime < files[j].modTime
	})
	return files[0].path, true, nil
}

// Archive moves file into destFolder under its original base name, creating
// the folder if absent. The move is a rename and assumes both paths live on
// the same filesystem.
func Archive(file, destFolder string) error {
	if err := os.MkdirAll(destFolder, 0755); err != nil {
		return fmt.Errorf("create folder %s: %w", destFolder, err)
	}

	dest := filepath.Join(destFolder, filepath.Base(file))
	if err := os.Rename(file, dest); err != nil {
		return fmt.Errorf("archive %s to %s: %w", file, dest, err)
	}
	return nil
}
