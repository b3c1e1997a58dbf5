package rescue

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/gridstore/internal/yml"
	"github.com/viant/gridstore/model/entry"
)

// Writer persists individual entries. The lifecycle engine calls it after
// each accepted mutation, while holding its lock.
type Writer interface {
	PutHostRuntime(ctx context.Context, host *entry.HostRuntime) error
	DeleteHostRuntime(ctx context.Context, hostName string) error
	PutContext(ctx context.Context, c *entry.Context) error
	// DeleteContext removes the context together with its task and check
	// point folders.
	DeleteContext(ctx context.Context, contextID string) error
	PutTask(ctx context.Context, task *entry.Task) error
	// DeleteTask removes the task together with its check point folder.
	DeleteTask(ctx context.Context, key entry.TaskKey) error
	PutCheckPoint(ctx context.Context, cp *entry.CheckPoint) error
	DeleteCheckPoint(ctx context.Context, cp *entry.CheckPoint) error
}

// Snapshot is an afs backed Writer. Blobs are written before the record that
// references them; a folder left without a record is skipped by the Loader.
type Snapshot struct {
	*options
	layout Layout
}

var _ Writer = (*Snapshot)(nil)

// New creates a Snapshot rooted at baseURL, creating the folder layout when
// missing.
func New(ctx context.Context, baseURL string, opts ...Option) (*Snapshot, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rescue base URL cannot be empty")
	}
	ret := &Snapshot{
		options: newOptions(opts),
		layout:  Layout{BaseURL: url.Normalize(baseURL, file.Scheme)},
	}
	if ret.reset {
		if err := ret.Reset(ctx); err != nil {
			return nil, err
		}
		ret.logger.Info("rescue directory reset", "url", ret.layout.BaseURL)
	}
	for _, folder := range ret.layout.Folders() {
		if err := ret.ensureFolder(ctx, folder); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// BaseURL returns the normalized rescue location.
func (s *Snapshot) BaseURL() string { return s.layout.BaseURL }

// Empty reports whether no entry folder exists under the base URL.
func (s *Snapshot) Empty(ctx context.Context) (bool, error) {
	for _, folder := range s.layout.Folders() {
		entries, err := listFolders(ctx, s.fs, folder)
		if err != nil {
			return false, err
		}
		if len(entries) > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Reset removes every persisted entry.
func (s *Snapshot) Reset(ctx context.Context) error {
	for _, folder := range s.layout.Folders() {
		if err := s.remove(ctx, folder); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshot) PutHostRuntime(ctx context.Context, host *entry.HostRuntime) error {
	return s.putRecord(ctx, s.layout.HostRuntimeURL(host.HostName), newHostRuntimeRecord(host))
}

func (s *Snapshot) DeleteHostRuntime(ctx context.Context, hostName string) error {
	return s.remove(ctx, s.layout.HostRuntimeURL(hostName))
}

func (s *Snapshot) PutContext(ctx context.Context, c *entry.Context) error {
	location := s.layout.ContextURL(c.ContextID)
	if err := s.putBlob(ctx, location, PayloadFile, c.Payload); err != nil {
		return err
	}
	return s.putRecord(ctx, location, newContextRecord(c))
}

func (s *Snapshot) DeleteContext(ctx context.Context, contextID string) error {
	for _, location := range []string{
		s.layout.ContextCheckPointsURL(contextID),
		s.layout.ContextTasksURL(contextID),
		s.layout.ContextURL(contextID),
	} {
		if err := s.remove(ctx, location); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshot) PutTask(ctx context.Context, task *entry.Task) error {
	location := s.layout.TaskURL(task.Key())
	if err := s.putBlob(ctx, location, DescriptorFile, task.Descriptor); err != nil {
		return err
	}
	if err := s.putBlob(ctx, location, ResolvedDescriptorFile, task.ResolvedDescriptor); err != nil {
		return err
	}
	return s.putRecord(ctx, location, newTaskRecord(task))
}

func (s *Snapshot) DeleteTask(ctx context.Context, key entry.TaskKey) error {
	if err := s.remove(ctx, s.layout.TaskCheckPointsURL(key)); err != nil {
		return err
	}
	return s.remove(ctx, s.layout.TaskURL(key))
}

func (s *Snapshot) PutCheckPoint(ctx context.Context, cp *entry.CheckPoint) error {
	location := s.layout.CheckPointURL(cp)
	if err := s.putBlob(ctx, location, PayloadFile, cp.Payload); err != nil {
		return err
	}
	return s.putRecord(ctx, location, newCheckPointRecord(cp))
}

func (s *Snapshot) DeleteCheckPoint(ctx context.Context, cp *entry.CheckPoint) error {
	return s.remove(ctx, s.layout.CheckPointURL(cp))
}

// Dump writes every entry of image to writer in dependency order.
func Dump(ctx context.Context, writer Writer, image *Image) error {
	for _, host := range image.HostRuntimes {
		if err := writer.PutHostRuntime(ctx, host); err != nil {
			return err
		}
	}
	for _, c := range image.Contexts {
		if err := writer.PutContext(ctx, c); err != nil {
			return err
		}
	}
	for _, task := range image.Tasks {
		if err := writer.PutTask(ctx, task); err != nil {
			return err
		}
	}
	for _, cp := range image.CheckPoints {
		if err := writer.PutCheckPoint(ctx, cp); err != nil {
			return err
		}
	}
	return nil
}

func (s *Snapshot) putRecord(ctx context.Context, location string, record interface{}) error {
	data, err := yml.Encode(record)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", location, err)
	}
	return s.upload(ctx, url.Join(location, RecordFile), data)
}

// putBlob writes a payload next to its record; a nil payload removes a
// previously written one.
func (s *Snapshot) putBlob(ctx context.Context, location, name string, data []byte) error {
	blobURL := url.Join(location, name)
	if data == nil {
		return s.remove(ctx, blobURL)
	}
	return s.upload(ctx, blobURL, data)
}

func (s *Snapshot) upload(ctx context.Context, destURL string, data []byte) error {
	if err := s.fs.Upload(ctx, destURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", destURL, err)
	}
	return nil
}

func (s *Snapshot) remove(ctx context.Context, location string) error {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}

func (s *Snapshot) ensureFolder(ctx context.Context, location string) error {
	exists, _ := s.fs.Exists(ctx, location)
	if exists {
		return nil
	}
	if err := s.fs.Create(ctx, location, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create %s: %w", location, err)
	}
	return nil
}
