package rescue

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/gridstore/model/entry"
	"github.com/viant/gridstore/service/dao"
)

// Image holds every entry read from a rescue directory, in dependency order.
type Image struct {
	HostRuntimes []*entry.HostRuntime
	Contexts     []*entry.Context
	Tasks        []*entry.Task
	CheckPoints  []*entry.CheckPoint
}

// Loader reads a rescue directory.
type Loader struct {
	*options
	layout Layout
}

// NewLoader creates a loader for baseURL.
func NewLoader(baseURL string, opts ...Option) *Loader {
	return &Loader{
		options: newOptions(opts),
		layout:  Layout{BaseURL: url.Normalize(baseURL, file.Scheme)},
	}
}

// Load walks host runtimes, contexts, tasks and check points. A folder
// without a record file is an interrupted write and is skipped; a record that
// cannot be parsed fails the load with a *dao.CorruptionError.
func (l *Loader) Load(ctx context.Context) (*Image, error) {
	exists, err := l.fs.Exists(ctx, l.layout.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check rescue directory %s: %w", l.layout.BaseURL, err)
	}
	if !exists {
		return nil, dao.NewError(dao.ErrNotFound, "rescue directory", l.layout.BaseURL, "")
	}
	image := &Image{}
	if image.HostRuntimes, err = l.loadHostRuntimes(ctx); err != nil {
		return nil, err
	}
	if image.Contexts, err = l.loadContexts(ctx); err != nil {
		return nil, err
	}
	if image.Tasks, err = l.loadTasks(ctx); err != nil {
		return nil, err
	}
	if image.CheckPoints, err = l.loadCheckPoints(ctx); err != nil {
		return nil, err
	}
	l.logger.Info("rescue loaded",
		"url", l.layout.BaseURL,
		"hostRuntimes", len(image.HostRuntimes),
		"contexts", len(image.Contexts),
		"tasks", len(image.Tasks),
		"checkPoints", len(image.CheckPoints))
	return image, nil
}

func (l *Loader) loadHostRuntimes(ctx context.Context) ([]*entry.HostRuntime, error) {
	folders, err := l.folders(ctx, url.Join(l.layout.BaseURL, HostRuntimesFolder))
	if err != nil {
		return nil, err
	}
	var result []*entry.HostRuntime
	for _, folder := range folders {
		record := &HostRuntimeRecord{}
		ok, err := l.readRecord(ctx, folder.URL(), KindHostRuntime, hostRuntimeFields, record)
		if err != nil || !ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		if err := l.matchFolder(folder.URL(), "hostName", record.HostName, folder.Name()); err != nil {
			return nil, err
		}
		result = append(result, record.HostRuntime())
	}
	return result, nil
}

func (l *Loader) loadContexts(ctx context.Context) ([]*entry.Context, error) {
	folders, err := l.folders(ctx, url.Join(l.layout.BaseURL, ContextsFolder))
	if err != nil {
		return nil, err
	}
	var result []*entry.Context
	for _, folder := range folders {
		record := &ContextRecord{}
		ok, err := l.readRecord(ctx, folder.URL(), KindContext, contextFields, record)
		if err != nil || !ok {
			if err != nil {
				return nil, err
			}
			continue
		}
		if err := l.matchFolder(folder.URL(), "contextId", record.ContextID, folder.Name()); err != nil {
			return nil, err
		}
		var payload []byte
		if record.HasPayload {
			payload = l.readBlob(ctx, folder.URL(), PayloadFile)
		}
		result = append(result, record.Context(payload))
	}
	return result, nil
}

func (l *Loader) loadTasks(ctx context.Context) ([]*entry.Task, error) {
	contextFolders, err := l.folders(ctx, url.Join(l.layout.BaseURL, TasksFolder))
	if err != nil {
		return nil, err
	}
	var result []*entry.Task
	for _, contextFolder := range contextFolders {
		folders, err := l.folders(ctx, contextFolder.URL())
		if err != nil {
			return nil, err
		}
		for _, folder := range folders {
			record := &TaskRecord{}
			ok, err := l.readRecord(ctx, folder.URL(), KindTask, taskFields, record)
			if err != nil || !ok {
				if err != nil {
					return nil, err
				}
				continue
			}
			if err := l.matchFolder(folder.URL(), "contextId", record.ContextID, contextFolder.Name()); err != nil {
				return nil, err
			}
			if err := l.matchFolder(folder.URL(), "taskId", record.TaskID, folder.Name()); err != nil {
				return nil, err
			}
			task, err := record.Task(l.readBlob(ctx, folder.URL(), DescriptorFile), l.readBlob(ctx, folder.URL(), ResolvedDescriptorFile))
			if err != nil {
				return nil, &dao.CorruptionError{Path: l.relative(url.Join(folder.URL(), RecordFile)), Err: err}
			}
			result = append(result, task)
		}
	}
	return result, nil
}

func (l *Loader) loadCheckPoints(ctx context.Context) ([]*entry.CheckPoint, error) {
	var result []*entry.CheckPoint
	err := l.walk(ctx, url.Join(l.layout.BaseURL, CheckPointsFolder), 4, func(folder string, names []string) error {
		record := &CheckPointRecord{}
		ok, err := l.readRecord(ctx, folder, KindCheckPoint, checkPointFields, record)
		if err != nil || !ok {
			return err
		}
		fields := []string{"contextId", "taskId", "name", "id"}
		values := []string{record.ContextID, record.TaskID, record.Name, record.ID}
		for i := range fields {
			if err := l.matchFolder(folder, fields[i], values[i], names[i]); err != nil {
				return err
			}
		}
		var payload []byte
		if record.HasPayload {
			payload = l.readBlob(ctx, folder, PayloadFile)
		}
		result = append(result, record.CheckPoint(payload))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

// walk visits every folder depth levels below location, passing the folder
// names along the way.
func (l *Loader) walk(ctx context.Context, location string, depth int, visit func(folder string, names []string) error) error {
	var walk func(location string, names []string) error
	walk = func(location string, names []string) error {
		if len(names) == depth {
			return visit(location, names)
		}
		folders, err := l.folders(ctx, location)
		if err != nil {
			return err
		}
		for _, folder := range folders {
			if err := walk(folder.URL(), append(append([]string{}, names...), folder.Name())); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(location, nil)
}

// folders lists the sub folders of location; a missing location has none.
func (l *Loader) folders(ctx context.Context, location string) ([]storage.Object, error) {
	return listFolders(ctx, l.fs, location)
}

func listFolders(ctx context.Context, fs afs.Service, location string) ([]storage.Object, error) {
	exists, err := fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil, nil
	}
	objects, err := fs.List(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", location, err)
	}
	self := strings.TrimSuffix(location, "/")
	var result []storage.Object
	for i, object := range objects {
		if !object.IsDir() {
			continue
		}
		if strings.TrimSuffix(object.URL(), "/") == self || (i == 0 && object.Name() == path.Base(self)) {
			continue
		}
		result = append(result, object)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

// readRecord decodes the record file of folder into target. It reports false
// when the folder holds no record file.
func (l *Loader) readRecord(ctx context.Context, folder, kind string, required []string, target interface{}) (bool, error) {
	recordURL := url.Join(folder, RecordFile)
	exists, err := l.fs.Exists(ctx, recordURL)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", recordURL, err)
	}
	if !exists {
		l.logger.Warn("rescue entry without record skipped", "path", l.relative(folder))
		return false, nil
	}
	data, err := l.fs.DownloadWithURL(ctx, recordURL)
	if err != nil {
		return false, &dao.CorruptionError{Path: l.relative(recordURL), Err: err}
	}
	field, err := decodeRecord(data, kind, required, target)
	if err != nil {
		return false, &dao.CorruptionError{Path: l.relative(recordURL), Err: err}
	}
	if field != "" {
		return false, &dao.CorruptionError{Path: l.relative(recordURL), Field: field}
	}
	return true, nil
}

// readBlob returns the content of a blob file, or nil when it is missing or
// unreadable.
func (l *Loader) readBlob(ctx context.Context, folder, name string) []byte {
	blobURL := url.Join(folder, name)
	if exists, _ := l.fs.Exists(ctx, blobURL); !exists {
		return nil
	}
	data, err := l.fs.DownloadWithURL(ctx, blobURL)
	if err != nil {
		l.logger.Warn("rescue blob unreadable", "path", l.relative(blobURL), "error", err)
		return nil
	}
	return data
}

func (l *Loader) matchFolder(folder, field, value, name string) error {
	if value == name {
		return nil
	}
	return &dao.CorruptionError{
		Path: l.relative(url.Join(folder, RecordFile)),
		Err:  fmt.Errorf("%s %q does not match folder %q", field, value, name),
	}
}

func (l *Loader) relative(location string) string {
	return strings.TrimPrefix(strings.TrimPrefix(location, l.layout.BaseURL), "/")
}
