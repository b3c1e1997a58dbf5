package gridstore

import (
	"context"
	"fmt"

	"github.com/viant/gridstore/service/engine"
	"github.com/viant/gridstore/service/registry"
	"github.com/viant/gridstore/service/rescue"
)

// Rescue rebuilds a service from the rescue directory at URL. The returned
// service keeps persisting into the same directory. A corrupt record fails
// the whole recovery with a *dao.CorruptionError.
func Rescue(ctx context.Context, URL string, options ...Option) (*Service, error) {
	ret := newService(options)
	ret.config.Rescue.URL = URL
	loader := rescue.NewLoader(URL, ret.rescueOptions(false)...)
	image, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to rescue %s: %w", URL, err)
	}
	if err = ret.init(ctx, false); err != nil {
		return nil, err
	}
	if ret.engine, err = engine.Restore(ctx, image, ret.engineOptions()...); err != nil {
		return nil, fmt.Errorf("failed to rescue %s: %w", URL, err)
	}
	ret.registry = registry.New(ret.engine)
	return ret, nil
}
