package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/storagekit/pkg/storage"
)

var _ storage.Service = (*Service)(nil)

// PromptKind tells a Prompter what the user is asked to pick.
type PromptKind int

// Prompt kinds.
const (
	PromptOpenFile PromptKind = iota
	PromptSaveFile
	PromptFolder
)

func (k PromptKind) String() string {
	switch k {
	case PromptOpenFile:
		return "open file"
	case PromptSaveFile:
		return "save file"
	case PromptFolder:
		return "folder"
	default:
		return fmt.Sprintf("PromptKind(%d)", int(k))
	}
}

// Prompter asks the user for a path. ok is false when the user cancelled.
type Prompter interface {
	Prompt(ctx context.Context, kind PromptKind, settings storage.DialogSettings) (path string, ok bool, err error)
}

// ServiceOption is a functional option for NewService.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	appDataPath string
	tempPath    string
}

// WithAppDataPath overrides the app-data directory.
func WithAppDataPath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.appDataPath = path
	}
}

// WithTempPath overrides the temp directory.
func WithTempPath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.tempPath = path
	}
}

// Service provides the per-application folders of the local machine and
// file pickers driven by a Prompter.
type Service struct {
	appData  *Folder
	temp     *Folder
	prompter Prompter
}

// NewService resolves (and creates) the app-data and temp folders for
// appName. By default app data lives under the user config directory and
// temp files under the system temp directory.
func NewService(appName string, prompter Prompter, opts ...ServiceOption) (*Service, error) {
	if appName == "" {
		return nil, errors.New("local: app name is required")
	}
	o := &serviceOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.appDataPath == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("local: resolve user config dir: %w", err)
		}
		o.appDataPath = filepath.Join(base, appName)
	}
	if o.tempPath == "" {
		o.tempPath = filepath.Join(os.TempDir(), appName)
	}

	appData, err := NewFolder(o.appDataPath)
	if err != nil {
		return nil, fmt.Errorf("local: app data folder: %w", err)
	}
	temp, err := NewFolder(o.tempPath)
	if err != nil {
		return nil, fmt.Errorf("local: temp folder: %w", err)
	}
	return &Service{appData: appData, temp: temp, prompter: prompter}, nil
}

// AppDataFolder returns the application data folder.
func (s *Service) AppDataFolder() storage.Folder { return s.appData }

// TempFolder returns the application temp folder.
func (s *Service) TempFolder() storage.Folder { return s.temp }

// RequestFileOpen asks for an existing file accepted by settings.
func (s *Service) RequestFileOpen(ctx context.Context, settings storage.DialogSettings) (storage.File, error) {
	const op = "request file open"
	path, ok, err := s.prompt(ctx, op, PromptOpenFile, settings)
	if err != nil || !ok {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, storage.AccessError(op, path, "", err)
	}
	if info.IsDir() {
		return nil, storage.AccessError(op, path, "is a folder", nil)
	}
	if !settings.Accepts(path) {
		return nil, storage.AccessError(op, path, "file type is not one of the shown types", nil)
	}
	return &File{path: path}, nil
}

// RequestFileSave asks for a file location and creates the file there if
// it does not exist. A name without extension gets the first shown type.
func (s *Service) RequestFileSave(ctx context.Context, settings storage.DialogSettings) (storage.File, error) {
	const op = "request file save"
	path, ok, err := s.prompt(ctx, op, PromptSaveFile, settings)
	if err != nil || !ok {
		return nil, err
	}
	if storage.Extension(path) == "" && len(settings.ShownFileTypes) > 0 && settings.ShownFileTypes[0] != "*" {
		path += "." + strings.TrimPrefix(settings.ShownFileTypes[0], ".")
	}
	if !settings.Accepts(path) {
		return nil, storage.AccessError(op, path, "file type is not one of the shown types", nil)
	}
	f, err := NewFile(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// RequestFolder asks for an existing folder.
func (s *Service) RequestFolder(ctx context.Context, settings storage.DialogSettings) (storage.Folder, error) {
	const op = "request folder"
	path, ok, err := s.prompt(ctx, op, PromptFolder, settings)
	if err != nil || !ok {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, storage.AccessError(op, path, "", err)
	}
	if !info.IsDir() {
		return nil, storage.AccessError(op, path, "is a file", nil)
	}
	return &Folder{path: path}, nil
}

// prompt runs the prompter and normalises its result. Cancellation, either
// by the user or through ctx, yields ok == false with a nil error.
func (s *Service) prompt(ctx context.Context, op string, kind PromptKind, settings storage.DialogSettings) (string, bool, error) {
	if s.prompter == nil {
		return "", false, storage.AccessError(op, "", "no prompter configured", nil)
	}
	if ctx.Err() != nil {
		return "", false, nil
	}
	path, ok, err := s.prompter.Prompt(ctx, kind, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", false, nil
		}
		return "", false, storage.AccessError(op, "", "", err)
	}
	if !ok || path == "" {
		return "", false, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, storage.AccessError(op, path, "", err)
	}
	return abs, true, nil
}
