package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"propostas/internal/config"
)

var (
	// ErrNoInput is returned when the inbox holds no table file.
	ErrNoInput = errors.New("no input file in inbox")
	// ErrMultipleInputs is returned when the inbox holds more than one table file.
	ErrMultipleInputs = errors.New("more than one input file in inbox")
)

// inputExtensions are the table files picked up from the inbox.
var inputExtensions = map[string]bool{".xlsx": true, ".xls": true, ".csv": true}

const tempOutputPrefix = "relatorio_propostas_TEMP_"

// Workspace is the working directory of the desktop flow: files dropped in
// the inbox are processed into the output file, then moved to processed.
type Workspace struct {
	Root       string
	Inbox      string
	Processed  string
	Backup     string
	Uploads    string
	OutputName string
}

// FileInfo describes a file in one of the workspace folders.
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// New lays a workspace out under root using the configured folder names.
func New(root string, data config.DataConfig) *Workspace {
	return &Workspace{
		Root:       root,
		Inbox:      filepath.Join(root, data.InboxDir),
		Processed:  filepath.Join(root, data.ProcessedDir),
		Backup:     filepath.Join(root, data.BackupDir),
		Uploads:    filepath.Join(root, data.UploadDir),
		OutputName: data.OutputName,
	}
}

// FromConfig resolves the data directory from cfg and creates every folder.
func FromConfig(cfg *config.AppConfig) (*Workspace, error) {
	root, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}
	return New(root, cfg.Data), nil
}

// Ensure creates the workspace folders.
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.Root, w.Inbox, w.Processed, w.Backup, w.Uploads} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// OutputPath is the main output file.
func (w *Workspace) OutputPath() string {
	return filepath.Join(w.Root, w.OutputName)
}

// FindInput returns the single table file waiting in the inbox.
func (w *Workspace) FindInput() (string, error) {
	files, err := listFiles(w.Inbox, func(name string) bool {
		return inputExtensions[strings.ToLower(filepath.Ext(name))]
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoInput
		}
		return "", err
	}

	switch len(files) {
	case 0:
		return "", ErrNoInput
	case 1:
		return files[0].Path, nil
	default:
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name
		}
		return "", fmt.Errorf("%w: %s", ErrMultipleInputs, strings.Join(names, ", "))
	}
}

// BackupOutput moves an existing file at path into the backup folder,
// replacing the previous backup of the same name. It returns the backup path,
// or "" when there was nothing to back up.
func (w *Workspace) BackupOutput(path string) (string, error) {
	if !fileExists(path) {
		return "", nil
	}
	dst := filepath.Join(w.Backup, filepath.Base(path))
	if err := moveFile(path, dst); err != nil {
		return "", fmt.Errorf("backup %s: %w", filepath.Base(path), err)
	}
	return dst, nil
}

// MarkProcessed moves an input file into the processed folder.
func (w *Workspace) MarkProcessed(path string) (string, error) {
	dst := filepath.Join(w.Processed, filepath.Base(path))
	if err := moveFile(path, dst); err != nil {
		return "", fmt.Errorf("move %s to processed: %w", filepath.Base(path), err)
	}
	return dst, nil
}

// TempOutputPath names a timestamped output used when the main output is
// locked by another program.
func (w *Workspace) TempOutputPath(now time.Time) string {
	return filepath.Join(w.Root, tempOutputPrefix+now.Format("20060102_150405")+".xlsx")
}

// CleanTempOutputs removes earlier temporary outputs and returns their names.
func (w *Workspace) CleanTempOutputs() ([]string, error) {
	files, err := listFiles(w.Root, func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		return strings.HasPrefix(name, tempOutputPrefix) && (ext == ".xlsx" || ext == ".csv")
	})
	if err != nil {
		return nil, err
	}

	var removed []string
	var errs []error
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, f.Name)
	}
	return removed, errors.Join(errs...)
}

// ListProcessed lists the processed folder.
func (w *Workspace) ListProcessed() ([]FileInfo, error) {
	files, err := listFiles(w.Processed, nil)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return files, err
}

// ClearProcessed deletes every file in the processed folder.
func (w *Workspace) ClearProcessed() (int, error) {
	files, err := w.ListProcessed()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// listFiles returns regular files in dir accepted by keep, sorted by name.
func listFiles(dir string, keep func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if keep != nil && !keep(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
